package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/order"
	"github.com/freshkart/storefront/internal/domain/product"
)

func validForm() Form {
	return Form{
		CustomerName: "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "+91 98765 43210",
		Address: order.Address{
			Line1:      "14 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
		},
		PaymentMethod: order.PaymentCOD,
	}
}

func TestShippingPolicy_Threshold(t *testing.T) {
	p := DefaultShippingPolicy()

	assert.True(t, p.Cost(dec("2000")).IsZero(), "exactly at threshold ships free")
	assert.True(t, dec("100").Equal(p.Cost(dec("1999.99"))))
	assert.True(t, p.Cost(dec("5000")).IsZero())
	assert.True(t, dec("100").Equal(p.Cost(dec("0"))))
}

func TestBuildOrder_RecomputesTotals(t *testing.T) {
	items := []cart.Item{line("P1", "100", 2)}
	rep := Validate(items, []product.Product{inStockProduct("P1", "100", 50)})

	o := BuildOrder("ord-1", items, rep, validForm(), DefaultShippingPolicy(), time.Now())

	require.Len(t, o.Items, 1)
	assert.True(t, dec("200").Equal(o.Subtotal))
	assert.True(t, dec("100").Equal(o.ShippingCost))
	assert.True(t, dec("300").Equal(o.Total))
	assert.Equal(t, order.StatusPlaced, o.Status)
}

func TestBuildOrder_UsesCorrectedPrice(t *testing.T) {
	// Price drifted 100 → 120; the order must bill the current price.
	items := []cart.Item{line("P1", "100", 2)}
	rep := Validate(items, []product.Product{inStockProduct("P1", "120", 50)})

	o := BuildOrder("ord-1", items, rep, validForm(), DefaultShippingPolicy(), time.Now())

	require.Len(t, o.Items, 1)
	assert.True(t, dec("120").Equal(o.Items[0].UnitPrice))
	assert.True(t, dec("240").Equal(o.Subtotal))
}

func TestBuildOrder_UsesCorrectedQuantity(t *testing.T) {
	items := []cart.Item{line("P1", "100", 5)}
	rep := Validate(items, []product.Product{inStockProduct("P1", "100", 1)})

	o := BuildOrder("ord-1", items, rep, validForm(), DefaultShippingPolicy(), time.Now())

	require.Len(t, o.Items, 1)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.True(t, dec("100").Equal(o.Subtotal))
}

func TestBuildOrder_ExcludesUnavailableLines(t *testing.T) {
	items := []cart.Item{
		line("P1", "100", 2),
		line("P2", "50", 1), // deleted from the catalog
	}
	rep := Validate(items, []product.Product{inStockProduct("P1", "100", 50)})

	o := BuildOrder("ord-1", items, rep, validForm(), DefaultShippingPolicy(), time.Now())

	require.Len(t, o.Items, 1)
	assert.Equal(t, "P1", o.Items[0].ProductID)
}

func TestBuildOrder_CustomizationsPriced(t *testing.T) {
	item := line("P1", "100", 2)
	item.Customizations = []product.CustomizationGroup{
		{Title: "Size", Options: []product.Option{{Label: "1kg", AdditionalPrice: dec("40")}}},
	}

	p := inStockProduct("P1", "100", 50)
	p.Customizations = []product.CustomizationGroup{
		{Title: "Size", Options: []product.Option{{Label: "1kg", AdditionalPrice: dec("40")}}},
	}

	o := BuildOrder("ord-1", []cart.Item{item}, Validate([]cart.Item{item}, []product.Product{p}),
		validForm(), DefaultShippingPolicy(), time.Now())

	require.Len(t, o.Items, 1)
	assert.True(t, dec("140").Equal(o.Items[0].UnitPrice))
	assert.True(t, dec("280").Equal(o.Subtotal))
	assert.Equal(t, map[string]string{"Size": "1kg"}, o.Items[0].Customizations)
}

func TestBuildOrder_FreeShippingAboveThreshold(t *testing.T) {
	items := []cart.Item{line("P1", "1000", 2)}
	rep := Validate(items, []product.Product{inStockProduct("P1", "1000", 50)})

	o := BuildOrder("ord-1", items, rep, validForm(), DefaultShippingPolicy(), time.Now())

	assert.True(t, dec("2000").Equal(o.Subtotal))
	assert.True(t, o.ShippingCost.IsZero())
	assert.True(t, dec("2000").Equal(o.Total))
}

func TestBuildOrder_PaymentStatus(t *testing.T) {
	items := []cart.Item{line("P1", "100", 1)}
	rep := Validate(items, []product.Product{inStockProduct("P1", "100", 50)})

	cod := validForm()
	o := BuildOrder("ord-1", items, rep, cod, DefaultShippingPolicy(), time.Now())
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)

	online := validForm()
	online.PaymentMethod = order.PaymentOnline
	o = BuildOrder("ord-2", items, rep, online, DefaultShippingPolicy(), time.Now())
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

func TestForm_Validate(t *testing.T) {
	assert.Empty(t, validForm().Validate())

	f := validForm()
	f.Email = ""
	f.Address.PostalCode = ""
	problems := f.Validate()
	assert.Contains(t, problems, "email")
	assert.Contains(t, problems, "address.postalCode")

	f = validForm()
	f.PaymentMethod = "Cheque"
	assert.Contains(t, f.Validate(), "paymentMethod")
}

func TestFlow_Transitions(t *testing.T) {
	_, err := NewFlow(0)
	assert.ErrorIs(t, err, ErrEmptyCart)

	f, err := NewFlow(2)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, f.Step())

	require.NoError(t, f.Advance(StepPayment))
	require.NoError(t, f.Advance(StepDetails)) // back button
	require.NoError(t, f.Advance(StepPayment))
	require.NoError(t, f.Advance(StepConfirmed))

	// Confirmed is terminal.
	err = f.Advance(StepPayment)
	var tErr *InvalidTransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, StepConfirmed, tErr.From)

	// Details cannot jump straight to confirmed.
	f2, _ := NewFlow(1)
	assert.Error(t, f2.Advance(StepConfirmed))
}
