//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func validOrder() orderRequest {
	return orderRequest{
		CustomerName: "Asha Rao",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		Address: addressRequest{
			Line1:      "14 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
		},
		PaymentMethod: "COD",
	}
}

// uniqueUser returns a fresh user id so tests do not share cart state.
func uniqueUser(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestCart_AddUpdateRemove(t *testing.T) {
	token := sessionToken(t, uniqueUser("cart"), "")

	// Add a plain line.
	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "toor-dal-1kg",
		Quantity:  2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", resp.StatusCode)
	}
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.TotalItems != 2 {
		t.Fatalf("cart after add: items=%d totalItems=%d", len(cart.Items), cart.TotalItems)
	}
	if cart.Items[0].CartItemID != "toor-dal-1kg" {
		t.Errorf("uncustomized line keeps the product id: got %q", cart.Items[0].CartItemID)
	}
	if cart.TotalPrice != "358" {
		t.Errorf("totalPrice: got %q, want %q", cart.TotalPrice, "358")
	}

	// Same product again merges into the line.
	resp = doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "toor-dal-1kg",
		Quantity:  1,
	})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("cart after merge: items=%d qty=%d", len(cart.Items), cart.Items[0].Quantity)
	}

	// Quantity zero removes the line.
	resp = doRequest(t, http.MethodPatch, "/api/cart/items/toor-dal-1kg", token, map[string]int{"quantity": 0})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 0 {
		t.Fatalf("cart after zero-quantity update: items=%d", len(cart.Items))
	}
}

func TestCart_CustomizedLinePricing(t *testing.T) {
	token := sessionToken(t, uniqueUser("custom"), "")

	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID:      "cold-pressed-groundnut-oil",
		Quantity:       1,
		Customizations: []selection{{Title: "Size", Option: "2 L"}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	// 380 base + 350 for the 2 L size.
	if cart.Items[0].UnitPrice != "730" {
		t.Errorf("unitPrice: got %q, want %q", cart.Items[0].UnitPrice, "730")
	}
	if cart.Items[0].CartItemID == "cold-pressed-groundnut-oil" {
		t.Error("customized line must get a derived cart item id")
	}
}

func TestCart_PersistsAcrossRequests(t *testing.T) {
	token := sessionToken(t, uniqueUser("persist"), "")

	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "fresh-paneer-500g",
		Quantity:  1,
	})
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/cart", token, nil)
	defer resp.Body.Close()

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "fresh-paneer-500g" {
		t.Fatalf("cart did not survive the round trip: %+v", cart)
	}
}

func TestFavourites_RoundTrip(t *testing.T) {
	token := sessionToken(t, uniqueUser("fav"), "")

	resp := doRequest(t, http.MethodPut, "/api/favourites", token,
		map[string][]string{"ids": {"alphonso-mango", "kashmiri-saffron-1g"}})
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/favourites", token, nil)
	defer resp.Body.Close()

	got := decodeJSON[map[string][]string](t, resp)
	if len(got["ids"]) != 2 || got["ids"][0] != "alphonso-mango" {
		t.Fatalf("favourites round trip: %v", got)
	}
}

func TestCheckoutValidate_OutOfStockBlocks(t *testing.T) {
	token := sessionToken(t, uniqueUser("oos"), "")

	// Jaggery is seeded with zero stock.
	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "organic-jaggery-1kg",
		Quantity:  1,
	})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/checkout/validate", token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	report := decodeJSON[validationReport](t, resp)
	if !report.HasIssues || report.CanProceed {
		t.Fatalf("out of stock line must block: %+v", report)
	}
	if len(report.Results) != 1 || report.Results[0].IsAvailable {
		t.Fatalf("expected one unavailable result: %+v", report.Results)
	}
}

func TestCheckoutValidate_QuantityCorrection(t *testing.T) {
	token := sessionToken(t, uniqueUser("qty"), "")

	// Saffron caps orders at 2.
	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "kashmiri-saffron-1g",
		Quantity:  5,
	})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/checkout/validate", token, nil)
	defer resp.Body.Close()

	report := decodeJSON[validationReport](t, resp)
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
	res := report.Results[0]
	if res.CorrectedQuantity == nil || *res.CorrectedQuantity != 2 {
		t.Fatalf("correctedQuantity: got %v, want 2", res.CorrectedQuantity)
	}
	if !report.CanProceed {
		t.Error("quantity corrections alone must not block checkout")
	}
}

func TestPlaceOrder_FullFlow(t *testing.T) {
	token := sessionToken(t, uniqueUser("order"), "")

	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "basmati-rice-5kg",
		Quantity:  2,
	})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/orders", token, validOrder())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if order.ID == "" {
		t.Fatal("order id is empty")
	}
	if order.Subtotal != "1298" {
		t.Errorf("subtotal: got %q, want %q", order.Subtotal, "1298")
	}
	if order.ShippingCost != "100" {
		t.Errorf("shippingCost: got %q, want %q", order.ShippingCost, "100")
	}
	if order.Total != "1398" {
		t.Errorf("total: got %q, want %q", order.Total, "1398")
	}
	if order.PaymentStatus != "Pending" {
		t.Errorf("paymentStatus: got %q, want Pending for COD", order.PaymentStatus)
	}
	if order.Status != "Placed" {
		t.Errorf("status: got %q, want Placed", order.Status)
	}

	// Cart is cleared once the order is durable.
	resp = doRequest(t, http.MethodGet, "/api/cart", token, nil)
	defer resp.Body.Close()
	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 0 {
		t.Fatalf("cart not cleared after order: %d items", len(cart.Items))
	}
}

func TestPlaceOrder_FreeShippingAndOnlinePayment(t *testing.T) {
	token := sessionToken(t, uniqueUser("ship"), "")

	// Two bags of rice clear the free shipping threshold.
	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "basmati-rice-5kg",
		Quantity:  4,
	})
	resp.Body.Close()

	req := validOrder()
	req.PaymentMethod = "Online"
	resp = doRequest(t, http.MethodPost, "/api/orders", token, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	if order.ShippingCost != "0" {
		t.Errorf("shippingCost: got %q, want %q", order.ShippingCost, "0")
	}
	if order.PaymentStatus != "Paid" {
		t.Errorf("paymentStatus: got %q, want Paid for online payment", order.PaymentStatus)
	}
}

func TestPlaceOrder_InvalidForm(t *testing.T) {
	token := sessionToken(t, uniqueUser("form"), "")

	resp := doRequest(t, http.MethodPost, "/api/cart", token, addToCartRequest{
		ProductID: "toor-dal-1kg",
		Quantity:  1,
	})
	resp.Body.Close()

	req := validOrder()
	req.Email = ""
	resp = doRequest(t, http.MethodPost, "/api/orders", token, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[map[string]any](t, resp)
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %v", body)
	}
	if _, ok := fields["email"]; !ok {
		t.Errorf("expected email field error, got %v", fields)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	token := sessionToken(t, uniqueUser("empty"), "")

	resp := doRequest(t, http.MethodPost, "/api/orders", token, validOrder())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
