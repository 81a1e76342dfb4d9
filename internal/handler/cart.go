package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/product"
)

// selection names one chosen option within a customization group.
type selection struct {
	Title  string `json:"title"`
	Option string `json:"option"`
}

type addToCartRequest struct {
	ProductID      string      `json:"productId"`
	Quantity       int         `json:"quantity"`
	Customizations []selection `json:"customizations,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemPayload struct {
	CartItemID     string                       `json:"cartItemId"`
	ProductID      string                       `json:"productId"`
	BasePrice      decimal.Decimal              `json:"basePrice"`
	UnitPrice      decimal.Decimal              `json:"unitPrice"`
	Quantity       int                          `json:"quantity"`
	Customizations []product.CustomizationGroup `json:"customizations,omitempty"`
}

type cartPayload struct {
	Items      []cartItemPayload `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

func toCartPayload(items []cart.Item) cartPayload {
	out := cartPayload{
		Items:      make([]cartItemPayload, 0, len(items)),
		TotalItems: cart.TotalItems(items),
		TotalPrice: cart.TotalPrice(items),
	}
	for _, it := range items {
		out.Items = append(out.Items, cartItemPayload{
			CartItemID:     it.CartItemID,
			ProductID:      it.ProductID,
			BasePrice:      it.BasePrice,
			UnitPrice:      it.UnitPrice(),
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
		})
	}
	return out
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := cart.NewStore(h.userStorage(r)).Items(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, toCartPayload(items))
}

// addToCart resolves the requested product and customization selections
// against the catalog, snapshots the current prices into the line, and merges
// it into the cart. The client never supplies prices.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	groups, err := resolveSelections(p, req.Customizations)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := cart.NewStore(h.userStorage(r))
	item := cart.Item{
		ProductID:      p.ID,
		BasePrice:      p.Price,
		Quantity:       req.Quantity,
		Customizations: groups,
	}
	if err := store.Add(r.Context(), item); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	h.respondCart(w, r, store)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart body")
		return
	}

	store := cart.NewStore(h.userStorage(r))
	if err := store.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	h.respondCart(w, r, store)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	store := cart.NewStore(h.userStorage(r))
	if err := store.Remove(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	h.respondCart(w, r, store)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := cart.NewStore(h.userStorage(r)).Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, toCartPayload(nil))
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	items, err := store.Items(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, toCartPayload(items))
}

// resolveSelections maps the requested (group, option) pairs onto the
// product's customization groups, carrying the catalog's current additional
// prices into the line snapshot.
func resolveSelections(p *product.Product, sels []selection) ([]product.CustomizationGroup, error) {
	if len(sels) == 0 {
		return nil, nil
	}
	groups := make([]product.CustomizationGroup, 0, len(sels))
	for _, s := range sels {
		opt, ok := p.FindOption(s.Title, s.Option)
		if !ok {
			return nil, errors.Errorf("unknown customization %s: %s", s.Title, s.Option)
		}
		groups = append(groups, product.CustomizationGroup{
			Title:   s.Title,
			Options: []product.Option{opt},
		})
	}
	return groups, nil
}
