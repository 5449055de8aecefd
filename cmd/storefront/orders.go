package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	handler "github.com/vasiliy-maslov/storefront/internal/handler/http"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/review"
	"github.com/vasiliy-maslov/storefront/internal/transport"
)

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := newFlags("checkout")
	method := fs.String("method", string(checkout.MethodCashOnDelivery), "cash_on_delivery or card")
	addressID := fs.String("address", "", "saved address id (default: resolved automatically)")
	newAddress := fs.Bool("new-address", false, "ship to the address given by the -ship-* flags")
	shipping := addressFlags(fs, "ship-")
	billing := addressFlags(fs, "bill-")
	separateBilling := fs.Bool("separate-billing", false, "bill to the address given by the -bill-* flags")
	notes := fs.String("notes", "", "delivery notes")
	wait := fs.Bool("wait", false, "card only: serve the payment return pages and wait for the buyer")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	sel := a.s.Resolver.Resolve(ctx)
	switch {
	case *newAddress:
		sel.UseNew()
		draft := shipping()
		draft.IsDefault = sel.Draft.IsDefault
		sel.Draft = draft
	case *addressID != "":
		id, err := uuid.FromString(*addressID)
		if err != nil {
			return usagef("invalid address id %q", *addressID)
		}
		if err := sel.Choose(id); err != nil {
			return err
		}
	case sel.Mode == address.ModeNew:
		sel.Draft = shipping()
		sel.Draft.IsDefault = len(sel.Saved) == 0
	}

	in := checkout.Input{
		Shipping:       sel,
		UseSameAddress: !*separateBilling,
		Method:         checkout.PaymentMethod(*method),
		Notes:          *notes,
	}
	if *separateBilling {
		b := billing()
		in.Billing = &b
	}

	res, err := a.s.Checkout.Submit(ctx, in)
	if err != nil {
		return err
	}

	if res.Kind == checkout.ResultPlaced {
		a.s.Notifier.Success("Order placed successfully!")
		fmt.Printf("Order %s placed, total %s\n", res.Order.OrderNumber, res.Order.Total.StringFixed(2))
		fmt.Println(res.NextPath)
		return nil
	}

	fmt.Printf("Complete the payment at:\n%s\n", res.RedirectURL)
	if !*wait {
		return nil
	}
	out, err := servePaymentReturn(ctx, a, true)
	if err != nil || out == nil {
		return err
	}
	return printJSON(out)
}

func runServe(ctx context.Context, a *app, _ []string) error {
	_, err := servePaymentReturn(ctx, a, false)
	return err
}

// servePaymentReturn runs the payment return server until ctx is done or,
// with once set, until the first outcome arrives.
func servePaymentReturn(ctx context.Context, a *app, once bool) (*checkout.Outcome, error) {
	outcomes := make(chan checkout.Outcome, 1)
	router := transport.NewRouter(handler.NewPaymentHandler(a.s.Payments, outcomes))
	srv := transport.NewServer(a.cfg.Callback.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Callback.Addr).Msg("Starting payment return server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var (
		result *checkout.Outcome
		err    error
	)
loop:
	for {
		select {
		case out := <-outcomes:
			log.Info().Str("kind", string(out.Kind)).Str("order_number", out.OrderNumber).Msg("Payment return received")
			if !once {
				continue
			}
			result = &out
			break loop
		case err = <-errCh:
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	log.Info().Msg("Shutting down payment return server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("Shutdown failed")
	}
	log.Info().Msg("Payment return server stopped")

	if err != nil {
		return nil, fmt.Errorf("payment return server: %w", err)
	}
	return result, nil
}

func printOrder(o *order.Order) {
	fmt.Printf("%s  %s  %-10s %-8s %10s  %d units\n", o.ID, o.OrderNumber, o.Status, o.PaymentStatus, o.Total.StringFixed(2), o.UnitCount())
}

func runOrders(ctx context.Context, a *app, args []string) error {
	svc := a.s.Orders
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	if sub == "list" {
		orders, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for i := range orders {
			printOrder(&orders[i])
		}
		return nil
	}

	id, err := argID(args, 0, "order id")
	if err != nil {
		return err
	}
	o, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}

	switch sub {
	case "get":
		return printJSON(o)
	case "cancel":
		cancelled, err := svc.Cancel(ctx, o)
		if err != nil {
			return err
		}
		a.s.Notifier.Success("Order cancelled")
		printOrder(cancelled)
		return nil
	case "track":
		printTracker(o)
		return nil
	default:
		return usagef("unknown orders command %q", sub)
	}
}

// printTracker draws the fulfilment progress bar.
func printTracker(o *order.Order) {
	printOrder(o)
	idx := order.ProgressIndex(o.Status)
	if idx < 0 {
		fmt.Printf("Order is %s\n", o.Status)
		return
	}
	steps := order.ProgressSteps()
	parts := make([]string, len(steps))
	for i, s := range steps {
		if i <= idx {
			parts[i] = "[x] " + s.String()
		} else {
			parts[i] = "[ ] " + s.String()
		}
	}
	fmt.Println(strings.Join(parts, " -> "))
	if order.BuyerCanCancel(o.Status) {
		fmt.Println("This order can still be cancelled.")
	}
}

func runVendorOrders(ctx context.Context, a *app, args []string) error {
	board := a.s.Board
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	if _, err := board.Load(ctx); err != nil {
		return err
	}

	switch sub {
	case "list":
		fs := newFlags("vendor-orders list")
		status := fs.String("status", "", "only orders in this status")
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		if *status != "" && !order.Status(*status).Valid() {
			return usagef("unknown status %q", *status)
		}
		for _, o := range board.FilterByStatus(order.Status(*status)) {
			printOrder(&o)
			if next := board.Actions(o); len(next) > 0 {
				fmt.Printf("    next: %v\n", next)
			}
		}
		return nil
	case "counts":
		counts := board.CountByStatus()
		for _, s := range order.Statuses {
			fmt.Printf("%-10s %d\n", s, counts[s])
		}
		return nil
	case "advance":
		id, err := argID(args, 0, "order id")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return usagef("missing status")
		}
		next := order.Status(args[1])
		if !next.Valid() {
			return usagef("unknown status %q", args[1])
		}
		if err := board.Advance(ctx, id, next); err != nil {
			return err
		}
		a.s.Notifier.Success("Order status updated")
		fmt.Printf("%s -> %s\n", id, next)
		return nil
	default:
		return usagef("unknown vendor-orders command %q", sub)
	}
}

func reviewFormFlags(fs *flag.FlagSet) (rating *int, title, comment *string) {
	return fs.Int("rating", 0, "1 to 5 stars"), fs.String("title", "", "review title"), fs.String("comment", "", "review text")
}

func runReview(ctx context.Context, a *app, args []string) error {
	svc := a.s.Reviews
	if len(args) == 0 {
		return usagef("missing review command")
	}
	sub, args := args[0], args[1:]
	id, err := argID(args, 0, "id")
	if err != nil {
		return err
	}
	args = args[1:]

	switch sub {
	case "check":
		e, err := svc.Compose(ctx, id)
		if err != nil {
			return err
		}
		return printEligibility(e)
	case "submit":
		fs := newFlags("review submit")
		orderID := fs.String("order", "", "order to review from, when several qualify")
		rating, title, comment := reviewFormFlags(fs)
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		e, err := svc.Compose(ctx, id)
		if err != nil {
			return err
		}
		if *orderID != "" {
			oid, err := uuid.FromString(*orderID)
			if err != nil || !e.Select(oid) {
				return usagef("order %q is not eligible for this review", *orderID)
			}
		}
		r, err := svc.Submit(ctx, e, review.Form{Rating: *rating, Title: *title, Comment: *comment})
		if err != nil {
			return err
		}
		a.s.Notifier.Success("Review submitted")
		return printJSON(r)
	case "list":
		fs := newFlags("review list")
		page := fs.Int("page", review.DefaultPage, "page number")
		limit := fs.Int("limit", review.DefaultLimit, "page size")
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		p, err := svc.List(ctx, id, *page, *limit)
		if err != nil {
			return err
		}
		return printJSON(p)
	case "stats":
		st, err := svc.Stats(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(st)
	case "helpful":
		if err := svc.MarkHelpful(ctx, id); err != nil {
			return err
		}
		fmt.Println("Marked as helpful")
		return nil
	case "update":
		fs := newFlags("review update")
		rating, title, comment := reviewFormFlags(fs)
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		var req review.UpdateRequest
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "rating":
				req.Rating = rating
			case "title":
				req.Title = title
			case "comment":
				req.Comment = comment
			}
		})
		return svc.Update(ctx, id, req)
	case "delete":
		return svc.Delete(ctx, id)
	default:
		return usagef("unknown review command %q", sub)
	}
}

func printEligibility(e review.Eligibility) error {
	switch e.Mode {
	case review.ModeBlocked:
		fmt.Fprintln(os.Stderr, e.Message)
		if e.ExistingReviewID != nil {
			fmt.Printf("Your review: %s\n", e.ExistingReviewID)
		}
	case review.ModeAuto:
		fmt.Printf("You can review this product from order %s\n", e.Orders[0].OrderNumber)
	case review.ModeChoose:
		fmt.Println("Choose the order to review from with -order:")
		for _, o := range e.Orders {
			fmt.Printf("  %s  %s\n", o.ID, o.OrderNumber)
		}
	}
	return nil
}
