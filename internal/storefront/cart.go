package storefront

import (
	"context"

	"stickerstreet/internal/pricing"
	"stickerstreet/internal/structs"
)

func cloneCart(cart []structs.CartItem) []structs.CartItem {
	return append([]structs.CartItem{}, cart...)
}

// mutateCart applies fn and persists the result.
func (s *Store) mutateCart(ctx context.Context, fn func(cart []structs.CartItem) []structs.CartItem) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cart = fn(s.cart)
	snap := cloneCart(s.cart)
	s.mu.Unlock()

	s.persist.SaveCart(ctx, snap)
}

// AddItem merges into the line with the same product and size, or appends a
// new line priced for size at this moment.
func (s *Store) AddItem(ctx context.Context, p structs.Product, size string, qty int, design *string) {
	if qty < 1 {
		qty = 1
	}
	prices := pricing.ResolvePrice(p, size)

	s.mutateCart(ctx, func(cart []structs.CartItem) []structs.CartItem {
		for i := range cart {
			if cart[i].Same(p.ID, size) {
				cart[i].Qty += qty
				return cart
			}
		}
		return append(cart, structs.CartItem{
			ID:    p.ID,
			Name:  p.Name,
			Emoji: p.Emoji,
			Img:   p.Thumbnail(),
			Cat:   p.Cat,
			Sz:    size,
			Qty:   qty,
			Dsgn:  design,
			Price: prices.Price,
			Ton:   prices.Ton,
			Xof:   prices.Xof,
		})
	})

	s.notify(p.Name + " ajouté ✓")
}

// RemoveItem drops the line at index; out of range is a no-op.
func (s *Store) RemoveItem(ctx context.Context, index int) {
	s.mutateCart(ctx, func(cart []structs.CartItem) []structs.CartItem {
		if index < 0 || index >= len(cart) {
			return cart
		}
		return append(cart[:index:index], cart[index+1:]...)
	})
}

// UpdateQuantity sets the quantity of the line at index. Quantities below 1
// leave the cart unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, index, qty int) error {
	if qty < 1 {
		return structs.ErrInvalidQuantity
	}
	s.mutateCart(ctx, func(cart []structs.CartItem) []structs.CartItem {
		if index >= 0 && index < len(cart) {
			cart[index].Qty = qty
		}
		return cart
	})
	return nil
}

func (s *Store) Cart() []structs.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCart(s.cart)
}

// Totals returns the cart total in XOF and the number of units.
func (s *Store) Totals() (float64, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Totals(s.cart)
}
