package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// owned by the persistence layer; everything else in the system treats them
// as an authoritative, read-mostly snapshot.
type Product struct {
	ID                 string
	Name               string
	Slug               string
	Description        string
	Images             []string
	Price              decimal.Decimal
	OriginalPrice      *decimal.Decimal
	DiscountPercentage int64
	Unit               string
	Quantity           *int
	MinOrderQuantity   *int
	MaxOrderQuantity   *int
	InStock            bool
	LowStockThreshold  *int
	Category           string
	Tags               []string
	Customizations     []CustomizationGroup
	Label              string
	LabelColor         string
	IsActive           bool
	IsFeatured         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CustomizationGroup is a named set of mutually exclusive options attachable
// to a product, e.g. "Size" with options "500g" and "1kg". Titles are unique
// within a product's group list.
type CustomizationGroup struct {
	Title   string   `json:"title"`
	Options []Option `json:"options"`
}

// Option is one selectable choice within a customization group. Labels are
// unique within their group and AdditionalPrice is never negative.
type Option struct {
	Label           string          `json:"label"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
}

// FindOption looks up an option by group title and option label. It returns
// false when either the group or the option does not exist.
func (p *Product) FindOption(groupTitle, optionLabel string) (Option, bool) {
	for _, g := range p.Customizations {
		if g.Title != groupTitle {
			continue
		}
		for _, o := range g.Options {
			if o.Label == optionLabel {
				return o, true
			}
		}
	}
	return Option{}, false
}

// RecomputeDiscount derives DiscountPercentage from Price and OriginalPrice.
// The stored percentage is never edited independently: every write path must
// call this after changing either price field. When OriginalPrice is unset or
// does not exceed Price the discount is zero.
func (p *Product) RecomputeDiscount() {
	p.DiscountPercentage = 0
	if p.OriginalPrice == nil || p.Price.IsNegative() {
		return
	}
	orig := *p.OriginalPrice
	if orig.LessThanOrEqual(p.Price) || !orig.IsPositive() {
		return
	}
	ratio := p.Price.Div(orig)
	pct := decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100))
	p.DiscountPercentage = pct.Round(0).IntPart()
}

// Repository defines the persistence operations the storefront needs for the
// product catalog. GetByIDs must tolerate an empty id list by returning an
// empty slice without touching the database.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Upsert(ctx context.Context, p *Product) error
}
