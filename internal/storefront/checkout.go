package storefront

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stickerstreet/internal/catalog"
	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/metrics"
)

const checkoutErrorHint = "Réessaie ou contacte le support"

// OrderItems is the server-facing copy of the cart.
func (s *Store) OrderItems() []structs.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]structs.OrderItem, 0, len(s.cart))
	for _, it := range s.cart {
		items = append(items, it.OrderLine())
	}
	return items
}

// Checkout places the order for the current cart. An empty cart returns
// ErrEmptyCart without calling the API. Nothing changes locally until the
// server confirms; on success the whole cart is cleared and the orders view
// opens.
func (s *Store) Checkout(ctx context.Context) (structs.Order, error) {
	s.mu.RLock()
	cart := cloneCart(s.cart)
	profile := s.profile
	s.mu.RUnlock()

	if len(cart) == 0 {
		return structs.Order{}, structs.ErrEmptyCart
	}

	items := make([]structs.OrderItem, 0, len(cart))
	for _, it := range cart {
		items = append(items, it.OrderLine())
	}

	order, err := s.api.CreateOrder(ctx, items, &profile)
	if err != nil {
		metrics.Checkouts.WithLabelValues("failed").Inc()
		s.logger.Error(ctx, "->api.CreateOrder", zap.Error(err))

		msg := strings.TrimSpace(apiclient.Message(err))
		if msg == "" {
			msg = checkoutErrorHint
		}
		s.notify("Erreur : " + msg)
		return structs.Order{}, err
	}

	order.Items = attachImages(order.Items, cart)

	s.writeMu.Lock()
	s.mu.Lock()
	s.orders = append([]structs.Order{order}, s.orders...)
	s.cart = []structs.CartItem{}
	s.mu.Unlock()
	s.persist.SaveCart(ctx, []structs.CartItem{})
	s.writeMu.Unlock()

	metrics.Checkouts.WithLabelValues("confirmed").Inc()
	s.logger.Info(ctx, "storefront: order confirmed", zap.String("order", order.ID), zap.Int("items", len(items)))

	s.notify("Commande confirmée 🎉")
	s.Navigate(router.ViewOrders, 0)
	return order, nil
}

// attachImages fills item images from the cart the order was placed with,
// then from the static catalog.
func attachImages(items []structs.OrderItem, cart []structs.CartItem) []structs.OrderItem {
	static := catalog.Products()

	out := make([]structs.OrderItem, 0, len(items))
	for _, it := range items {
		it.Img = ""
		for _, c := range cart {
			if c.ID == it.ID {
				it.Img = c.Img
				break
			}
		}
		if it.Img == "" {
			if p, ok := catalog.Find(static, it.ID); ok {
				it.Img = p.Img
			}
		}
		out = append(out, it)
	}
	return out
}
