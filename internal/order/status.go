package order

// Status is a stage of the order lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

// allowedTransitions is the vendor-side table. The server enforces it; the
// client only uses it to decide which actions to offer.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// progressSteps is the happy path shown on the order tracking view.
var progressSteps = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// NextStatuses returns the statuses a vendor may move an order to.
// Unknown statuses have none.
func NextStatuses(current Status) []Status {
	next := allowedTransitions[current]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
// Delivered is not terminal: it can still be refunded.
func IsTerminal(s Status) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// BuyerCanCancel reports whether the buyer may cancel. This is narrower
// than the vendor table: only a confirmed order that has not started
// processing.
func BuyerCanCancel(s Status) bool {
	return s == StatusConfirmed
}

// ProgressSteps returns the tracking steps.
func ProgressSteps() []Status {
	out := make([]Status, len(progressSteps))
	copy(out, progressSteps)
	return out
}

// ProgressIndex returns the position of s on the tracking steps, or -1 for
// cancelled, refunded and unknown statuses, which have no track.
func ProgressIndex(s Status) int {
	for i, step := range progressSteps {
		if step == s {
			return i
		}
	}
	return -1
}
