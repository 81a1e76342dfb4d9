package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Storage is a scoped key-value blob store, the server-side stand-in for the
// web client's local storage. Get returns (nil, nil) when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Storage keys, kept identical to the local storage keys the web client used
// so migrated blobs remain readable.
const (
	cartKey      = "cart"
	favouriteKey = "favourite"
)

// Store manages one user's cart through a Storage scope. It is stateless
// between calls: every operation loads the persisted collection, mutates it,
// and writes it back. A stored payload that fails to decode is discarded and
// the key cleared, so a corrupt blob degrades to an empty cart rather than a
// wedged one.
type Store struct {
	st Storage
}

// NewStore creates a cart Store over the given per-user storage scope.
func NewStore(st Storage) *Store {
	return &Store{st: st}
}

// Items returns the current cart lines, oldest first.
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	data, err := s.st.Get(ctx, cartKey)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(data) == 0 {
		return nil, nil
	}

	items, err := decodeItems(data)
	if err != nil {
		// Fail open: drop the corrupt payload and start from an empty cart.
		if derr := s.st.Delete(ctx, cartKey); derr != nil {
			return nil, errors.Wrap(derr, "clear corrupt cart")
		}
		return nil, nil
	}
	return items, nil
}

// Add inserts a line item, merging into an existing line when the
// CartItemID matches: quantities add, the stored price snapshot stays.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.CartItemID == "" {
		item.CartItemID = NewItemID(item.ProductID, item.Customizations)
	}
	if item.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	items, err := s.Items(ctx)
	if err != nil {
		return err
	}

	merged := false
	for i := range items {
		if items[i].CartItemID == item.CartItemID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	return s.save(ctx, items)
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line. Product-level quantity bounds are not enforced here;
// clamping against min/max order quantities is checkout validation's job.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, cartItemID)
	}

	items, err := s.Items(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].CartItemID == cartItemID {
			items[i].Quantity = quantity
			break
		}
	}
	return s.save(ctx, items)
}

// Remove drops a line. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, cartItemID string) error {
	items, err := s.Items(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, it := range items {
		if it.CartItemID != cartItemID {
			kept = append(kept, it)
		}
	}
	return s.save(ctx, kept)
}

// Clear empties the cart and removes the persisted payload.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.st.Delete(ctx, cartKey); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

func (s *Store) save(ctx context.Context, items []Item) error {
	if err := s.st.Set(ctx, cartKey, encodeItems(items)); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// TotalItems is the sum of quantities across lines.
func TotalItems(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum over lines of the effective unit price times the
// line quantity, computed from the cart's own price snapshots. Checkout
// recomputes this against authoritative product data.
func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}
