package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/product"
)

// The persisted cart layout mirrors the browser local storage blob the web
// client wrote: a JSON array of line items with numeric prices. Encoding and
// decoding go through jx so a payload is either read in full or rejected as
// a whole; callers treat a rejected payload as an empty cart.

func encodeItems(items []Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("cartItemId")
		e.Str(it.CartItemID)
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("basePrice")
		e.Num(jx.Num(it.BasePrice.String()))
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("customizations")
		encodeGroups(&e, it.Customizations)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeGroups(e *jx.Encoder, groups []product.CustomizationGroup) {
	e.ArrStart()
	for _, g := range groups {
		e.ObjStart()
		e.FieldStart("title")
		e.Str(g.Title)
		e.FieldStart("options")
		e.ArrStart()
		for _, o := range g.Options {
			e.ObjStart()
			e.FieldStart("label")
			e.Str(o.Label)
			e.FieldStart("additionalPrice")
			e.Num(jx.Num(o.AdditionalPrice.String()))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
}

func decodeItems(data []byte) ([]Item, error) {
	d := jx.DecodeBytes(data)
	var items []Item
	if err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var it Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cartItemId":
			v, err := d.Str()
			it.CartItemID = v
			return err
		case "productId":
			v, err := d.Str()
			it.ProductID = v
			return err
		case "basePrice":
			v, err := decodeDecimal(d)
			it.BasePrice = v
			return err
		case "quantity":
			v, err := d.Int()
			it.Quantity = v
			return err
		case "customizations":
			groups, err := decodeGroups(d)
			it.Customizations = groups
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeGroups(d *jx.Decoder) ([]product.CustomizationGroup, error) {
	var groups []product.CustomizationGroup
	err := d.Arr(func(d *jx.Decoder) error {
		var g product.CustomizationGroup
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "title":
				v, err := d.Str()
				g.Title = v
				return err
			case "options":
				return d.Arr(func(d *jx.Decoder) error {
					var o product.Option
					if err := d.Obj(func(d *jx.Decoder, key string) error {
						switch key {
						case "label":
							v, err := d.Str()
							o.Label = v
							return err
						case "additionalPrice":
							v, err := decodeDecimal(d)
							o.AdditionalPrice = v
							return err
						default:
							return d.Skip()
						}
					}); err != nil {
						return err
					}
					g.Options = append(g.Options, o)
					return nil
				})
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		groups = append(groups, g)
		return nil
	})
	return groups, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}

func encodeIDs(ids []string) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, id := range ids {
		e.Str(id)
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeIDs(data []byte) ([]string, error) {
	d := jx.DecodeBytes(data)
	var ids []string
	if err := d.Arr(func(d *jx.Decoder) error {
		id, err := d.Str()
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode favourite ids")
	}
	return ids, nil
}
