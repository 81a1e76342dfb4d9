package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

// Favourites manages one user's favourite product ids: an ordered set of
// plain id strings persisted under the "favourite" key. Corrupt payloads are
// discarded the same way the cart handles them.
type Favourites struct {
	st Storage
}

// NewFavourites creates a Favourites store over the given storage scope.
func NewFavourites(st Storage) *Favourites {
	return &Favourites{st: st}
}

// List returns the favourite product ids in insertion order.
func (f *Favourites) List(ctx context.Context) ([]string, error) {
	data, err := f.st.Get(ctx, favouriteKey)
	if err != nil {
		return nil, errors.Wrap(err, "load favourites")
	}
	if len(data) == 0 {
		return nil, nil
	}

	ids, err := decodeIDs(data)
	if err != nil {
		if derr := f.st.Delete(ctx, favouriteKey); derr != nil {
			return nil, errors.Wrap(derr, "clear corrupt favourites")
		}
		return nil, nil
	}
	return ids, nil
}

// Add appends a product id unless it is already present.
func (f *Favourites) Add(ctx context.Context, productID string) error {
	ids, err := f.List(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, productID) {
		return nil
	}
	return f.save(ctx, append(ids, productID))
}

// Remove drops a product id; absent ids are a no-op.
func (f *Favourites) Remove(ctx context.Context, productID string) error {
	ids, err := f.List(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(ids, func(id string) bool { return id == productID })
	return f.save(ctx, kept)
}

// Replace overwrites the whole favourite list, deduplicating while keeping
// first-occurrence order. An empty list clears the persisted payload.
func (f *Favourites) Replace(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return f.Clear(ctx)
	}
	deduped := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(deduped, id) {
			deduped = append(deduped, id)
		}
	}
	return f.save(ctx, deduped)
}

// Clear removes all favourites and the persisted payload.
func (f *Favourites) Clear(ctx context.Context) error {
	if err := f.st.Delete(ctx, favouriteKey); err != nil {
		return errors.Wrap(err, "clear favourites")
	}
	return nil
}

func (f *Favourites) save(ctx context.Context, ids []string) error {
	if err := f.st.Set(ctx, favouriteKey, encodeIDs(ids)); err != nil {
		return errors.Wrap(err, "save favourites")
	}
	return nil
}
