// Package cart implements the client-owned shopping cart: line items keyed by
// a deterministic id derived from the product and its customization
// selections, unit price computation, and a persisted store with favourites.
package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/product"
)

// Item is one distinct (product, customization-selection) pairing with a
// quantity. BasePrice is a snapshot taken when the line was added and may
// drift from the authoritative product price; checkout reconciliation
// corrects it.
type Item struct {
	CartItemID     string
	ProductID      string
	BasePrice      decimal.Decimal
	Quantity       int
	Customizations []product.CustomizationGroup
}

// UnitPrice is the effective price of a single unit for this line.
func (i Item) UnitPrice() decimal.Decimal {
	return UnitPrice(i.BasePrice, i.Customizations)
}

// UnitPrice returns basePrice plus the additional price of every option in
// every group. The groups are expected to carry only the selected option per
// group; resolving the selection is the caller's job. An empty or nil list
// yields basePrice unchanged, never zero.
func UnitPrice(basePrice decimal.Decimal, customizations []product.CustomizationGroup) decimal.Decimal {
	price := basePrice
	for _, g := range customizations {
		for _, o := range g.Options {
			price = price.Add(o.AdditionalPrice)
		}
	}
	return price
}

// NewItemID derives the cart line identifier from the product id and the
// customization selections. The derivation is deterministic: the same product
// with the same selections always yields the same id, so repeated adds merge
// into one line, while distinct selections of the same product stay distinct.
func NewItemID(productID string, customizations []product.CustomizationGroup) string {
	if len(customizations) == 0 {
		return productID
	}

	// Canonical form: groups sorted by title, options sorted by label.
	// Group order in the UI must not change the identity.
	parts := make([]string, 0, len(customizations))
	for _, g := range customizations {
		labels := make([]string, 0, len(g.Options))
		for _, o := range g.Options {
			labels = append(labels, o.Label)
		}
		sort.Strings(labels)
		parts = append(parts, g.Title+"="+strings.Join(labels, "|"))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return productID + "-" + hex.EncodeToString(sum[:8])
}
