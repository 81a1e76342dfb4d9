package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	// PaymentOnline is a prepaid online payment. Orders paid online are
	// recorded as already paid; no gateway integration happens here.
	PaymentOnline PaymentMethod = "Online"
	// PaymentCOD is cash on delivery.
	PaymentCOD PaymentMethod = "COD"
)

// PaymentStatus tracks whether the order has been paid for.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// Status is the fulfilment state of an order. Orders are created as
// StatusPlaced; later states belong to fulfilment tooling outside this
// service.
type Status string

const (
	StatusPlaced Status = "Placed"
)

// Address is the shipping destination.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// Item is a flattened order line: the effective (server-corrected) unit
// price and quantity at the moment the order was placed, with the
// customization selections reduced to group/option label pairs.
type Item struct {
	ProductID      string            `json:"productId"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unitPrice"`
	LineTotal      decimal.Decimal   `json:"lineTotal"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

// Order is the persisted result of a successful checkout. Subtotal, shipping
// and total are always recomputed server-side from corrected values; totals
// submitted by a client are never trusted.
type Order struct {
	ID            string
	CustomerName  string
	Email         string
	Phone         string
	Items         []Item
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        Status
	Address       Address
	Notes         string
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders. Create must be
// idempotent on the order id so a retried submission cannot create a
// duplicate order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
}
