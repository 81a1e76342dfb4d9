// Package checkout reconciles a client-held cart against authoritative
// product state and turns a validated cart plus a shipping form into a
// persisted order.
package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/cart"
	"github.com/freshkart/storefront/internal/domain/product"
)

// Result holds the per-line outcome of reconciling one cart line against the
// product catalog. Corrected values, when set, supersede the cart's stale
// snapshots. Results are ephemeral: recomputed on every checkout attempt and
// never persisted.
type Result struct {
	CartItemID        string
	ProductID         string
	ProductName       string
	Issues            []string
	CorrectedPrice    *decimal.Decimal
	CorrectedQuantity *int
	IsAvailable       bool
}

// EffectivePrice is the authoritative base price for the line: the corrected
// price when drift was detected, otherwise the cart's snapshot.
func (r Result) EffectivePrice(item cart.Item) decimal.Decimal {
	if r.CorrectedPrice != nil {
		return *r.CorrectedPrice
	}
	return item.BasePrice
}

// EffectiveQuantity is the corrected quantity when bounds forced one,
// otherwise the cart quantity.
func (r Result) EffectiveQuantity(item cart.Item) int {
	if r.CorrectedQuantity != nil {
		return *r.CorrectedQuantity
	}
	return item.Quantity
}

// Report is the outcome of validating a whole cart.
type Report struct {
	Results   []Result
	HasIssues bool
}

// ByCartItemID returns the result for a given cart line.
func (rep Report) ByCartItemID(id string) (Result, bool) {
	for _, r := range rep.Results {
		if r.CartItemID == id {
			return r, true
		}
	}
	return Result{}, false
}

// CanProceed reports whether checkout may complete. Availability problems
// (deleted product, out of stock) block checkout until the user removes or
// adjusts the affected lines; price drift does not, since corrected prices
// are substituted automatically.
func (rep Report) CanProceed() bool {
	for _, r := range rep.Results {
		if !r.IsAvailable {
			return false
		}
	}
	return true
}

// Validate reconciles every cart line against the given product snapshot.
// It is pure: no I/O, deterministic for its inputs. Product state is
// authoritative and may change at any time, so callers must re-run it with a
// fresh snapshot on every checkout attempt rather than caching a report.
func Validate(items []cart.Item, products []product.Product) Report {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	rep := Report{Results: make([]Result, 0, len(items))}
	for _, item := range items {
		res := validateLine(item, byID[item.ProductID])
		if len(res.Issues) > 0 || !res.IsAvailable {
			rep.HasIssues = true
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func validateLine(item cart.Item, p *product.Product) Result {
	res := Result{
		CartItemID:  item.CartItemID,
		ProductID:   item.ProductID,
		IsAvailable: true,
	}

	if p == nil {
		res.Issues = append(res.Issues, "Product no longer exists")
		res.IsAvailable = false
		return res
	}
	res.ProductName = p.Name

	if !p.InStock {
		res.Issues = append(res.Issues, "Out of stock")
		res.IsAvailable = false
	}

	checkPriceDrift(&res, item, p)
	checkQuantityBounds(&res, item, p)
	return res
}

func checkPriceDrift(res *Result, item cart.Item, p *product.Product) {
	if !p.Price.Equal(item.BasePrice) {
		current := p.Price
		res.CorrectedPrice = &current
		res.Issues = append(res.Issues,
			fmt.Sprintf("Price updated from Rs. %s to Rs. %s", item.BasePrice, current))
	}

	// Compare each selected option against the catalog. A selection whose
	// option vanished from the product counts as changed too.
	changed := false
	for _, g := range item.Customizations {
		for _, sel := range g.Options {
			opt, ok := p.FindOption(g.Title, sel.Label)
			if !ok || !opt.AdditionalPrice.Equal(sel.AdditionalPrice) {
				changed = true
			}
		}
	}
	if changed {
		res.Issues = append(res.Issues, "Customization prices updated")
		if res.CorrectedPrice == nil {
			current := p.Price
			res.CorrectedPrice = &current
		}
	}
}

// checkQuantityBounds applies the min/max order quantity and stock
// availability rules. Corrections are cumulative: a later rule may tighten an
// earlier correction but never loosen it.
func checkQuantityBounds(res *Result, item cart.Item, p *product.Product) {
	minQty := 1
	if p.MinOrderQuantity != nil {
		minQty = *p.MinOrderQuantity
	}

	if item.Quantity < minQty {
		res.CorrectedQuantity = &minQty
		res.Issues = append(res.Issues, fmt.Sprintf("Minimum order quantity is %d", minQty))
	}

	if p.MaxOrderQuantity != nil && item.Quantity > *p.MaxOrderQuantity {
		corrected := min(*p.MaxOrderQuantity, item.Quantity)
		tighten(res, corrected)
		res.Issues = append(res.Issues, fmt.Sprintf("Maximum order quantity is %d", *p.MaxOrderQuantity))
	}

	if p.Quantity != nil && item.Quantity > *p.Quantity {
		corrected := min(*p.Quantity, item.Quantity)
		if p.MaxOrderQuantity != nil {
			corrected = min(corrected, *p.MaxOrderQuantity)
		}
		tighten(res, corrected)
		res.Issues = append(res.Issues, fmt.Sprintf("Only %d units available", *p.Quantity))
		if *p.Quantity == 0 {
			res.IsAvailable = false
		}
	}
}

// tighten lowers the corrected quantity, never raises it.
func tighten(res *Result, quantity int) {
	if res.CorrectedQuantity == nil || quantity < *res.CorrectedQuantity {
		res.CorrectedQuantity = &quantity
	}
}
