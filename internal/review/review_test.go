package review_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/review"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type MockReviewAPI struct {
	mock.Mock
}

func (m *MockReviewAPI) CanReview(ctx context.Context, productID uuid.UUID) (*review.CanReview, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.CanReview), args.Error(1)
}

func (m *MockReviewAPI) CreateReview(ctx context.Context, req review.CreateRequest) (*review.Review, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewAPI) ListProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (*review.Page, error) {
	args := m.Called(ctx, productID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Page), args.Error(1)
}

func (m *MockReviewAPI) ProductRatingStats(ctx context.Context, productID uuid.UUID) (*review.Stats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Stats), args.Error(1)
}

func (m *MockReviewAPI) UpdateReview(ctx context.Context, id uuid.UUID, req review.UpdateRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *MockReviewAPI) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewAPI) MarkReviewHelpful(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type stubOrders []order.Order

func (s stubOrders) List(context.Context) ([]order.Order, error) { return s, nil }

func orderWith(status order.Status, productIDs ...uuid.UUID) order.Order {
	o := order.Order{ID: uuid.Must(uuid.NewV4()), Status: status}
	for _, p := range productIDs {
		o.Items = append(o.Items, order.Item{ProductID: p, Quantity: 1})
	}
	return o
}

func TestEvaluate(t *testing.T) {
	product := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())

	deliveredA := orderWith(order.StatusDelivered, product)
	deliveredB := orderWith(order.StatusDelivered, other, product)

	tests := []struct {
		name       string
		orders     []order.Order
		wantMode   review.Mode
		wantOrders int
		wantAuto   *uuid.UUID
	}{
		{name: "no_orders", orders: nil, wantMode: review.ModeBlocked},
		{name: "shipped_only", orders: []order.Order{orderWith(order.StatusShipped, product)}, wantMode: review.ModeBlocked},
		{name: "delivered_other_product", orders: []order.Order{orderWith(order.StatusDelivered, other)}, wantMode: review.ModeBlocked},
		{name: "one_delivered", orders: []order.Order{deliveredA, orderWith(order.StatusPending, product)}, wantMode: review.ModeAuto, wantOrders: 1, wantAuto: &deliveredA.ID},
		{name: "two_delivered", orders: []order.Order{deliveredA, deliveredB}, wantMode: review.ModeChoose, wantOrders: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := review.Evaluate(tt.orders, product)

			assert.Equal(t, tt.wantMode, e.Mode)
			assert.Len(t, e.Orders, tt.wantOrders)
			if tt.wantAuto != nil {
				require.NotNil(t, e.Selected)
				assert.Equal(t, *tt.wantAuto, *e.Selected)
			} else {
				assert.Nil(t, e.Selected)
			}
			if tt.wantMode == review.ModeBlocked {
				assert.NotEmpty(t, e.Message)
			}
		})
	}
}

func TestService_ComposeAndSubmit(t *testing.T) {
	product := uuid.Must(uuid.NewV4())
	a := orderWith(order.StatusDelivered, product)
	b := orderWith(order.StatusDelivered, product)

	api := new(MockReviewAPI)
	api.On("CanReview", mock.Anything, product).Return(&review.CanReview{CanReview: true}, nil).Once()
	svc := review.NewService(api, stubOrders{a, b})

	e, err := svc.Compose(context.Background(), product)
	require.NoError(t, err)
	require.Equal(t, review.ModeChoose, e.Mode)

	_, err = svc.Submit(context.Background(), e, review.Form{Rating: 5})
	assert.ErrorIs(t, err, review.ErrNoOrderSelected)

	require.True(t, e.Select(b.ID))
	assert.False(t, e.Select(uuid.Must(uuid.NewV4())))

	title := "Great mug"
	want := review.CreateRequest{ProductID: product, OrderID: b.ID, Rating: 5, Title: &title}
	api.On("CreateReview", mock.Anything, want).Return(&review.Review{ID: uuid.Must(uuid.NewV4()), ProductID: product, Rating: 5}, nil).Once()

	r, err := svc.Submit(context.Background(), e, review.Form{Rating: 5, Title: "  Great mug "})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	api.AssertExpectations(t)
}

func TestService_ComposeBlockedByServer(t *testing.T) {
	product := uuid.Must(uuid.NewV4())
	existing := uuid.Must(uuid.NewV4())

	api := new(MockReviewAPI)
	api.On("CanReview", mock.Anything, product).
		Return(&review.CanReview{CanReview: false, Reason: "You have already reviewed this product", ExistingReviewID: &existing}, nil).
		Once()
	svc := review.NewService(api, stubOrders{orderWith(order.StatusDelivered, product)})

	e, err := svc.Compose(context.Background(), product)
	require.NoError(t, err)

	assert.Equal(t, review.ModeBlocked, e.Mode)
	assert.Equal(t, "You have already reviewed this product", e.Message)
	assert.Equal(t, &existing, e.ExistingReviewID)

	_, err = svc.Submit(context.Background(), e, review.Form{Rating: 4})
	assert.ErrorIs(t, err, review.ErrNotEligible)
	api.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestService_SubmitValidation(t *testing.T) {
	product := uuid.Must(uuid.NewV4())
	e := review.Evaluate([]order.Order{orderWith(order.StatusDelivered, product)}, product)
	api := new(MockReviewAPI)
	svc := review.NewService(api, stubOrders{})

	tests := []struct {
		name      string
		form      review.Form
		wantErrIs error
		wantField string
	}{
		{name: "missing_rating", form: review.Form{}, wantErrIs: review.ErrRatingRequired},
		{name: "rating_too_high", form: review.Form{Rating: 6}, wantField: "rating"},
		{name: "rating_negative", form: review.Form{Rating: -1}, wantField: "rating"},
		{name: "title_too_long", form: review.Form{Rating: 3, Title: strings.Repeat("t", 201)}, wantField: "title"},
		{name: "comment_too_long", form: review.Form{Rating: 3, Comment: strings.Repeat("c", 2001)}, wantField: "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), e, tt.form)
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tt.wantField), verr.Error())
		})
	}
	api.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestService_MarkHelpfulIsNotDeduplicated(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	api := new(MockReviewAPI)
	api.On("MarkReviewHelpful", mock.Anything, id).Return(nil).Twice()
	svc := review.NewService(api, stubOrders{})

	require.NoError(t, svc.MarkHelpful(context.Background(), id))
	require.NoError(t, svc.MarkHelpful(context.Background(), id))
	api.AssertNumberOfCalls(t, "MarkReviewHelpful", 2)
}

func TestService_ListDefaultsAndUpdate(t *testing.T) {
	product := uuid.Must(uuid.NewV4())
	api := new(MockReviewAPI)
	api.On("ListProductReviews", mock.Anything, product, 1, 10).Return(&review.Page{Page: 1, Limit: 10}, nil).Once()
	svc := review.NewService(api, stubOrders{})

	p, err := svc.List(context.Background(), product, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit)

	assert.ErrorIs(t, svc.Update(context.Background(), uuid.Must(uuid.NewV4()), review.UpdateRequest{}), review.ErrNothingToUpdate)

	id := uuid.Must(uuid.NewV4())
	rating := 2
	api.On("UpdateReview", mock.Anything, id, review.UpdateRequest{Rating: &rating}).Return(errors.New("review not found")).Once()
	err = svc.Update(context.Background(), id, review.UpdateRequest{Rating: &rating})
	assert.EqualError(t, err, "review: update "+id.String()+": review not found")
	api.AssertExpectations(t)
}
