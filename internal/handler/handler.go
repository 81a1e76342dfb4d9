// Package handler exposes the storefront over HTTP: catalog reads, per-user
// cart and favourites, checkout validation, and order placement.
package handler

import (
	"net/http"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/checkout"
	"github.com/freshkart/storefront/internal/domain/product"
	"github.com/freshkart/storefront/internal/session"
)

// StateStore hands out the per-user storage scope backing carts and
// favourites.
type StateStore interface {
	Scope(userID string) cart.Storage
}

// Handler serves the storefront API.
type Handler struct {
	products product.Repository
	checkout *checkout.Service
	state    StateStore
	sessions *session.Verifier
}

// New constructs a Handler with the required collaborators.
func New(
	products product.Repository,
	checkoutSvc *checkout.Service,
	state StateStore,
	sessions *session.Verifier,
) *Handler {
	return &Handler{
		products: products,
		checkout: checkoutSvc,
		state:    state,
		sessions: sessions,
	}
}

// Routes registers every API route on the mux. Catalog reads are public;
// cart, favourites and checkout need a session; admin product writes also
// need the admin role.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.Handle("PUT /api/admin/products/{id}", h.requireRole(session.RoleAdmin, h.updateProduct))

	mux.Handle("GET /api/cart", h.requireSession(h.getCart))
	mux.Handle("POST /api/cart", h.requireSession(h.addToCart))
	mux.Handle("DELETE /api/cart", h.requireSession(h.clearCart))
	mux.Handle("PATCH /api/cart/items/{id}", h.requireSession(h.updateCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", h.requireSession(h.removeCartItem))

	mux.Handle("GET /api/favourites", h.requireSession(h.listFavourites))
	mux.Handle("PUT /api/favourites", h.requireSession(h.replaceFavourites))

	mux.Handle("POST /api/checkout/validate", h.requireSession(h.validateCheckout))
	mux.Handle("POST /api/orders", h.requireSession(h.placeOrder))
}

// requireSession authenticates the request and stores the session on the
// context. Anonymous requests get 401.
func (h *Handler) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		s, err := h.sessions.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}

// requireRole is requireSession plus a role check; wrong roles get 403.
func (h *Handler) requireRole(role string, next http.HandlerFunc) http.Handler {
	return h.requireSession(func(w http.ResponseWriter, r *http.Request) {
		if s := session.FromContext(r.Context()); s == nil || s.Role != role {
			respondError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userStorage returns the authenticated user's storage scope. It must only
// be called inside requireSession.
func (h *Handler) userStorage(r *http.Request) cart.Storage {
	return h.state.Scope(session.FromContext(r.Context()).UserID)
}
