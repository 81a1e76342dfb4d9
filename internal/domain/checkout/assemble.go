package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/order"
)

// Shipping pricing. Orders at or above the threshold ship free; everything
// else pays the flat fee. Values are rupees.
var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(2000)
	DefaultShippingFee           = decimal.NewFromInt(100)
)

// ShippingPolicy computes the shipping cost for an order subtotal.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultShippingPolicy returns the storefront's standard shipping pricing.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: DefaultFreeShippingThreshold,
		FlatFee:       DefaultShippingFee,
	}
}

// Cost returns the shipping cost for the given subtotal.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// Form is the completed shipping and payment form collected on the details
// step.
type Form struct {
	CustomerName  string
	Email         string
	Phone         string
	Address       order.Address
	PaymentMethod order.PaymentMethod
	Notes         string
}

// Validate checks the form fields and returns field-level messages keyed by
// field name. An empty map means the form is valid.
func (f Form) Validate() map[string]string {
	problems := make(map[string]string)
	if f.CustomerName == "" {
		problems["customerName"] = "Name is required"
	}
	if f.Email == "" {
		problems["email"] = "Email is required"
	}
	if f.Phone == "" {
		problems["phone"] = "Phone number is required"
	}
	if f.Address.Line1 == "" {
		problems["address.line1"] = "Address is required"
	}
	if f.Address.City == "" {
		problems["address.city"] = "City is required"
	}
	if f.Address.State == "" {
		problems["address.state"] = "State is required"
	}
	if f.Address.PostalCode == "" {
		problems["address.postalCode"] = "Postal code is required"
	}
	switch f.PaymentMethod {
	case order.PaymentOnline, order.PaymentCOD:
	default:
		problems["paymentMethod"] = "Payment method must be Online or COD"
	}
	return problems
}

// BuildOrder assembles an order from the cart, its validation report, and the
// completed form. Lines the report marks unavailable are excluded; for the
// rest, corrected price and quantity take precedence over the cart's stale
// values. Subtotal, shipping and total are computed here from authoritative
// data, never taken from the client.
func BuildOrder(id string, items []cart.Item, rep Report, form Form, shipping ShippingPolicy, now time.Time) *order.Order {
	orderItems := make([]order.Item, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		res, ok := rep.ByCartItemID(item.CartItemID)
		if !ok || !res.IsAvailable {
			continue
		}

		unitPrice := cart.UnitPrice(res.EffectivePrice(item), item.Customizations)
		quantity := res.EffectiveQuantity(item)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		subtotal = subtotal.Add(lineTotal)

		orderItems = append(orderItems, order.Item{
			ProductID:      item.ProductID,
			Name:           res.ProductName,
			Quantity:       quantity,
			UnitPrice:      unitPrice,
			LineTotal:      lineTotal,
			Customizations: flattenSelections(item),
		})
	}

	shippingCost := shipping.Cost(subtotal)

	paymentStatus := order.PaymentPending
	if form.PaymentMethod == order.PaymentOnline {
		paymentStatus = order.PaymentPaid
	}

	return &order.Order{
		ID:            id,
		CustomerName:  form.CustomerName,
		Email:         form.Email,
		Phone:         form.Phone,
		Items:         orderItems,
		Subtotal:      subtotal,
		ShippingCost:  shippingCost,
		Total:         subtotal.Add(shippingCost),
		PaymentMethod: form.PaymentMethod,
		PaymentStatus: paymentStatus,
		Status:        order.StatusPlaced,
		Address:       form.Address,
		Notes:         form.Notes,
		CreatedAt:     now,
	}
}

// flattenSelections reduces a line's customization groups to title → selected
// option label.
func flattenSelections(item cart.Item) map[string]string {
	if len(item.Customizations) == 0 {
		return nil
	}
	sel := make(map[string]string, len(item.Customizations))
	for _, g := range item.Customizations {
		for _, o := range g.Options {
			sel[g.Title] = o.Label
		}
	}
	return sel
}
