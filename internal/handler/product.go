package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/product"
)

// productPayload is the wire shape of a catalog product, shared between
// responses and the admin update request body.
type productPayload struct {
	ID                 string                       `json:"id"`
	Name               string                       `json:"name"`
	Slug               string                       `json:"slug,omitempty"`
	Description        string                       `json:"description,omitempty"`
	Images             []string                     `json:"images,omitempty"`
	Price              decimal.Decimal              `json:"price"`
	OriginalPrice      *decimal.Decimal             `json:"originalPrice,omitempty"`
	DiscountPercentage int64                        `json:"discountPercentage"`
	Unit               string                       `json:"unit,omitempty"`
	Quantity           *int                         `json:"availableQuantity,omitempty"`
	MinOrderQuantity   *int                         `json:"minOrderQuantity,omitempty"`
	MaxOrderQuantity   *int                         `json:"maxOrderQuantity,omitempty"`
	InStock            bool                         `json:"inStock"`
	LowStockThreshold  *int                         `json:"lowStockThreshold,omitempty"`
	Category           string                       `json:"category,omitempty"`
	Tags               []string                     `json:"tags,omitempty"`
	Customizations     []product.CustomizationGroup `json:"customizations,omitempty"`
	Label              string                       `json:"label,omitempty"`
	LabelColor         string                       `json:"labelColor,omitempty"`
	IsActive           bool                         `json:"isActive"`
	IsFeatured         bool                         `json:"isFeatured"`
	CreatedAt          time.Time                    `json:"createdAt,omitzero"`
	UpdatedAt          time.Time                    `json:"updatedAt,omitzero"`
}

func toProductPayload(p product.Product) productPayload {
	return productPayload{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Images:             p.Images,
		Price:              p.Price,
		OriginalPrice:      p.OriginalPrice,
		DiscountPercentage: p.DiscountPercentage,
		Unit:               p.Unit,
		Quantity:           p.Quantity,
		MinOrderQuantity:   p.MinOrderQuantity,
		MaxOrderQuantity:   p.MaxOrderQuantity,
		InStock:            p.InStock,
		LowStockThreshold:  p.LowStockThreshold,
		Category:           p.Category,
		Tags:               p.Tags,
		Customizations:     p.Customizations,
		Label:              p.Label,
		LabelColor:         p.LabelColor,
		IsActive:           p.IsActive,
		IsFeatured:         p.IsFeatured,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (pl productPayload) toDomain(id string) product.Product {
	return product.Product{
		ID:                 id,
		Name:               pl.Name,
		Slug:               pl.Slug,
		Description:        pl.Description,
		Images:             pl.Images,
		Price:              pl.Price,
		OriginalPrice:      pl.OriginalPrice,
		DiscountPercentage: pl.DiscountPercentage,
		Unit:               pl.Unit,
		Quantity:           pl.Quantity,
		MinOrderQuantity:   pl.MinOrderQuantity,
		MaxOrderQuantity:   pl.MaxOrderQuantity,
		InStock:            pl.InStock,
		LowStockThreshold:  pl.LowStockThreshold,
		Category:           pl.Category,
		Tags:               pl.Tags,
		Customizations:     pl.Customizations,
		Label:              pl.Label,
		LabelColor:         pl.LabelColor,
		IsActive:           pl.IsActive,
		IsFeatured:         pl.IsFeatured,
	}
}

// listProducts serves the catalog. Without a filter it lists the active
// catalog; with ?ids=a,b,c it fetches exactly those products in one batch,
// silently dropping ids that no longer exist. An empty filter value behaves
// like no filter.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)
	if raw := r.URL.Query().Get("ids"); raw != "" {
		ids := make([]string, 0, 8)
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		products, err = h.products.GetByIDs(r.Context(), ids)
	} else {
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	out := make([]productPayload, 0, len(products))
	for _, p := range products {
		out = append(out, toProductPayload(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	respondJSON(w, http.StatusOK, toProductPayload(*p))
}

// updateProduct replaces a product's fields. The discount percentage in the
// body is ignored; it is derived from price and originalPrice on every write.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var pl productPayload
	if err := decodeBody(r, &pl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid product body")
		return
	}

	p := pl.toDomain(r.PathValue("id"))
	err := h.products.Update(r.Context(), &p)
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, toProductPayload(p))
}
