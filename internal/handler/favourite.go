package handler

import (
	"net/http"

	"github.com/freshkart/storefront/internal/domain/cart"
)

type favouritesPayload struct {
	IDs []string `json:"ids"`
}

func (h *Handler) listFavourites(w http.ResponseWriter, r *http.Request) {
	ids, err := cart.NewFavourites(h.userStorage(r)).List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load favourites")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, favouritesPayload{IDs: ids})
}

// replaceFavourites overwrites the whole list, mirroring how the web client
// writes its local copy back in one piece.
func (h *Handler) replaceFavourites(w http.ResponseWriter, r *http.Request) {
	var req favouritesPayload
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid favourites body")
		return
	}

	favs := cart.NewFavourites(h.userStorage(r))
	if err := favs.Replace(r.Context(), req.IDs); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save favourites")
		return
	}

	ids, err := favs.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load favourites")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, favouritesPayload{IDs: ids})
}
