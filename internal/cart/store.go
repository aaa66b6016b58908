package cart

import (
	"context"
	"errors"

	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/pricing"
	"github.com/indianleto/storefront-backend/pkg/logger"
)

// Store applies cart mutations and persists the result after each one. Every
// mutation returns a new slice; the input is never modified.
type Store struct {
	storage Storage
	key     string
	logg    *logger.Logger
}

func NewStore(storage Storage, logg *logger.Logger) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{storage: storage, key: StorageKey, logg: logg}
}

// Load reads the persisted cart. Missing, unreadable or corrupt state yields an empty cart.
func (s *Store) Load(ctx context.Context) []LineItem {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logg.Error(s.logg.WithField(ctx, "key", s.key), "cart.load_failed", err)
		}
		return []LineItem{}
	}
	items, err := Decode(raw)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "key", s.key), "cart.decode_failed", err)
		return []LineItem{}
	}
	return items
}

// Add merges into the existing (product, size) line, re-pricing for the new total,
// or appends a new line priced for quantity.
func (s *Store) Add(ctx context.Context, items []LineItem, product catalog.Product, size string, quantity int) []LineItem {
	next := clone(items)
	for i := range next {
		if next[i].Matches(product.ID, size) {
			next[i].Quantity += quantity
			next[i].UnitPrice = resolve(product.PriceTiers, next[i].Quantity)
			s.persist(ctx, next)
			return next
		}
	}

	next = append(next, LineItem{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		ProductImage: product.PrimaryImage(),
		Variant:      Variant{Size: size, Color: product.Attributes.Color},
		Quantity:     quantity,
		UnitPrice:    resolve(product.PriceTiers, quantity),
	})
	s.persist(ctx, next)
	return next
}

func (s *Store) Remove(ctx context.Context, items []LineItem, productID, size string) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Matches(productID, size) {
			continue
		}
		next = append(next, item)
	}
	s.persist(ctx, next)
	return next
}

// UpdateQuantity sets the line quantity and re-prices it; quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, items []LineItem, productID, size string, quantity int, tiers []pricing.Tier) []LineItem {
	if quantity <= 0 {
		return s.Remove(ctx, items, productID, size)
	}
	next := clone(items)
	for i := range next {
		if next[i].Matches(productID, size) {
			next[i].Quantity = quantity
			next[i].UnitPrice = resolve(tiers, quantity)
		}
	}
	s.persist(ctx, next)
	return next
}

func (s *Store) Clear(ctx context.Context) []LineItem {
	next := []LineItem{}
	s.persist(ctx, next)
	return next
}

// persist never fails the caller; write errors are logged.
func (s *Store) persist(ctx context.Context, items []LineItem) {
	raw, err := Encode(items)
	if err == nil {
		err = s.storage.Set(ctx, s.key, raw)
	}
	if err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"key": s.key, "lines": len(items)})
		s.logg.Error(ctx, "cart.save_failed", err)
	}
}

func clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
