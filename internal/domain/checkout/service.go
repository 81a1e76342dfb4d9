package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/product"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// UnavailableItemsError blocks order placement while the cart still holds
// lines the catalog cannot fulfil. The report tells the caller which lines to
// remove or adjust.
type UnavailableItemsError struct {
	Report Report
}

func (e *UnavailableItemsError) Error() string {
	return "cart contains unavailable items"
}

// FormError carries field-level validation messages for an incomplete
// shipping/payment form.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	return "invalid checkout form"
}

const (
	submitAttempts = 3
	submitBackoff  = 200 * time.Millisecond
)

// Service drives checkout: it fetches a fresh product snapshot for the
// cart, reconciles, and places orders with server-side recomputed totals.
type Service struct {
	products product.Repository
	orders   order.Repository
	shipping ShippingPolicy
	now      func() time.Time
	newID    func() string
}

// NewService creates a checkout Service with the required collaborators.
func NewService(products product.Repository, orders order.Repository, shipping ShippingPolicy) *Service {
	return &Service{
		products: products,
		orders:   orders,
		shipping: shipping,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// ValidateCart fetches the authoritative products for the cart's ids in one
// batch and reconciles the cart against them. An empty cart yields an empty
// report without touching the catalog. The snapshot is fetched per call:
// reports must not be cached across attempts.
func (s *Service) ValidateCart(ctx context.Context, items []cart.Item) (Report, error) {
	if len(items) == 0 {
		return Report{}, nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return Report{}, errors.Wrap(err, "get products")
	}

	return Validate(items, products), nil
}

// PlaceOrder re-validates the cart against a fresh product snapshot, rejects
// while availability issues remain, then assembles and persists the order.
// Totals are recomputed here from corrected values; anything the client
// claims about prices or totals is ignored. Returns the persisted order; the
// caller clears the cart on success.
func (s *Service) PlaceOrder(ctx context.Context, items []cart.Item, form Form) (*order.Order, error) {
	flow, err := NewFlow(len(items))
	if err != nil {
		return nil, err
	}
	if fields := form.Validate(); len(fields) > 0 {
		return nil, &FormError{Fields: fields}
	}
	if err := flow.Advance(StepPayment); err != nil {
		return nil, err
	}

	rep, err := s.ValidateCart(ctx, items)
	if err != nil {
		return nil, err
	}
	if !rep.CanProceed() {
		return nil, &UnavailableItemsError{Report: rep}
	}

	o := BuildOrder(s.newID(), items, rep, form, s.shipping, s.now())
	if len(o.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.submit(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	if err := flow.Advance(StepConfirmed); err != nil {
		return nil, err
	}
	return o, nil
}

// submit persists the order with a bounded retry. The order id is generated
// once before the first attempt and Repository.Create is idempotent on it, so
// a retry after an ambiguous failure cannot double-charge.
func (s *Service) submit(ctx context.Context, o *order.Order) error {
	var lastErr error
	for attempt := 0; attempt < submitAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(submitBackoff << (attempt - 1)):
			}
		}
		if lastErr = s.orders.Create(ctx, o); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
