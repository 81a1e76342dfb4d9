package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/checkout"
	"github.com/freshkart/storefront/internal/domain/order"
)

type validationResultPayload struct {
	CartItemID        string           `json:"cartItemId"`
	ProductID         string           `json:"productId"`
	ProductName       string           `json:"productName,omitempty"`
	Issues            []string         `json:"issues,omitempty"`
	CorrectedPrice    *decimal.Decimal `json:"correctedPrice,omitempty"`
	CorrectedQuantity *int             `json:"correctedQuantity,omitempty"`
	IsAvailable       bool             `json:"isAvailable"`
}

type validationReportPayload struct {
	Results    []validationResultPayload `json:"results"`
	HasIssues  bool                      `json:"hasIssues"`
	CanProceed bool                      `json:"canProceed"`
}

func toReportPayload(rep checkout.Report) validationReportPayload {
	out := validationReportPayload{
		Results:    make([]validationResultPayload, 0, len(rep.Results)),
		HasIssues:  rep.HasIssues,
		CanProceed: rep.CanProceed(),
	}
	for _, r := range rep.Results {
		out.Results = append(out.Results, validationResultPayload{
			CartItemID:        r.CartItemID,
			ProductID:         r.ProductID,
			ProductName:       r.ProductName,
			Issues:            r.Issues,
			CorrectedPrice:    r.CorrectedPrice,
			CorrectedQuantity: r.CorrectedQuantity,
			IsAvailable:       r.IsAvailable,
		})
	}
	return out
}

type placeOrderRequest struct {
	CustomerName  string        `json:"customerName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       order.Address `json:"address"`
	PaymentMethod string        `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
}

func (req placeOrderRequest) toForm() checkout.Form {
	return checkout.Form{
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	}
}

type orderPayload struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Items         []order.Item    `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shippingCost"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Status        string          `json:"status"`
	Address       order.Address   `json:"address"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func toOrderPayload(o *order.Order) orderPayload {
	return orderPayload{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		Email:         o.Email,
		Phone:         o.Phone,
		Items:         o.Items,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        string(o.Status),
		Address:       o.Address,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
	}
}

// validateCheckout reconciles the stored cart against a fresh catalog
// snapshot. The report is never cached: every call reads the catalog again.
func (h *Handler) validateCheckout(w http.ResponseWriter, r *http.Request) {
	items, err := cart.NewStore(h.userStorage(r)).Items(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	rep, err := h.checkout.ValidateCart(r.Context(), items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to validate cart")
		return
	}
	respondJSON(w, http.StatusOK, toReportPayload(rep))
}

// placeOrder runs the full checkout: form validation, cart re-validation,
// order assembly with recomputed totals, persistence, and finally clearing
// the stored cart. Unavailable items surface as 409 with the report so the
// client can show what to fix.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid order body")
		return
	}

	store := cart.NewStore(h.userStorage(r))
	items, err := store.Items(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), items, req.toForm())
	if err != nil {
		var (
			formErr        *checkout.FormError
			unavailableErr *checkout.UnavailableItemsError
		)
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &formErr):
			respondJSON(w, http.StatusBadRequest, struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}{Error: "invalid checkout form", Fields: formErr.Fields})
		case errors.As(err, &unavailableErr):
			respondJSON(w, http.StatusConflict, struct {
				Error  string                  `json:"error"`
				Report validationReportPayload `json:"report"`
			}{Error: "cart contains unavailable items", Report: toReportPayload(unavailableErr.Report)})
		default:
			respondError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	// The order is durable at this point. A failed cart clear must not undo
	// the confirmation; the stale cart is corrected on the next read.
	_ = store.Clear(r.Context())

	respondJSON(w, http.StatusCreated, toOrderPayload(o))
}
