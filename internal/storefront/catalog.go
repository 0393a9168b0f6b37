package storefront

import (
	"context"

	"go.uber.org/zap"

	"stickerstreet/internal/catalog"
	"stickerstreet/internal/pricing"
	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
)

func withVisuals(products []structs.Product) []structs.Product {
	out := make([]structs.Product, 0, len(products))
	for _, p := range products {
		out = append(out, pricing.WithVisuals(p))
	}
	return out
}

// LoadCatalog fetches products, keeping the static catalog when the API fails
// or has none.
func (s *Store) LoadCatalog(ctx context.Context) {
	products, err := s.api.Products(ctx)
	if err != nil {
		s.logger.Warn(ctx, "->api.Products", zap.Error(err))
	}
	if err != nil || len(products) == 0 {
		products = catalog.Products()
	}

	s.mu.Lock()
	s.products = withVisuals(products)
	s.mu.Unlock()
}

func (s *Store) LoadBanners(ctx context.Context) {
	banners, err := s.api.Banners(ctx)
	if err != nil {
		s.logger.Warn(ctx, "->api.Banners", zap.Error(err))
		banners = nil
	}

	s.mu.Lock()
	s.banners = banners
	s.mu.Unlock()
}

// LoadOrders lists every order in the admin view and the user's own orders
// elsewhere. Without a linked Telegram account outside the admin view the
// list is left as is.
func (s *Store) LoadOrders(ctx context.Context) {
	var telegramID int64
	if s.nav.Current().View != router.ViewAdmin {
		s.mu.RLock()
		telegramID = s.profile.TelegramUserID
		s.mu.RUnlock()
		if telegramID == 0 {
			return
		}
	}

	orders, err := s.api.Orders(ctx, telegramID)
	if err != nil {
		s.logger.Warn(ctx, "->api.Orders", zap.Error(err))
		orders = nil
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
}

func (s *Store) Products() []structs.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]structs.Product(nil), s.products...)
}

func (s *Store) Product(id int64) (structs.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Find(s.products, id)
}

func (s *Store) SetFilter(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category == "" {
		category = catalog.CategoryAll
	}
	s.filter = category
}

func (s *Store) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredProducts applies the category filter.
func (s *Store) FilteredProducts() []structs.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]structs.Product(nil), catalog.Filter(s.products, s.filter)...)
}

func (s *Store) Banners() []structs.Banner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]structs.Banner(nil), s.banners...)
}

// SectionBanners lists active banners with an image for a page section.
func (s *Store) SectionBanners(section string) []structs.Banner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []structs.Banner
	for _, b := range s.banners {
		if b.InSection(section) && b.Active && b.Image != "" {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) Orders() []structs.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]structs.Order(nil), s.orders...)
}

func (s *Store) requireAdmin() error {
	if !s.admin.Load() {
		return structs.ErrAdminLocked
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, payload structs.ProductPayload) (structs.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return structs.Product{}, err
	}

	created, err := s.api.CreateProduct(ctx, payload)
	if err != nil {
		s.logger.Error(ctx, "->api.CreateProduct", zap.Error(err))
		return structs.Product{}, err
	}
	created = pricing.WithVisuals(created)

	s.mu.Lock()
	s.products = append(s.products, created)
	s.mu.Unlock()

	s.notify("Produit ajouté ✓")
	return created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, payload structs.ProductPayload) (structs.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return structs.Product{}, err
	}

	updated, err := s.api.PatchProduct(ctx, id, payload)
	if err != nil {
		s.logger.Error(ctx, "->api.PatchProduct", zap.Int64("id", id), zap.Error(err))
		return structs.Product{}, err
	}
	updated = pricing.WithVisuals(updated)

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = updated
		}
	}
	if s.selected != nil && s.selected.ID == id {
		p := updated
		s.selected = &p
	}
	s.mu.Unlock()

	s.notify("Produit modifié ✓")
	return updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.logger.Error(ctx, "->api.DeleteProduct", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	kept := s.products[:0:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
	s.mu.Unlock()

	s.notify("Produit supprimé ✓")
	return nil
}

func (s *Store) CreateBanner(ctx context.Context, payload structs.BannerPayload) (structs.Banner, error) {
	if err := s.requireAdmin(); err != nil {
		return structs.Banner{}, err
	}

	created, err := s.api.CreateBanner(ctx, payload)
	if err != nil {
		s.logger.Error(ctx, "->api.CreateBanner", zap.Error(err))
		return structs.Banner{}, err
	}

	s.mu.Lock()
	s.banners = append(s.banners, created)
	s.mu.Unlock()

	s.notify("Bannière ajoutée ✓")
	return created, nil
}

func (s *Store) UpdateBanner(ctx context.Context, id int64, payload structs.BannerPayload) (structs.Banner, error) {
	if err := s.requireAdmin(); err != nil {
		return structs.Banner{}, err
	}

	updated, err := s.api.PatchBanner(ctx, id, payload)
	if err != nil {
		s.logger.Error(ctx, "->api.PatchBanner", zap.Int64("id", id), zap.Error(err))
		return structs.Banner{}, err
	}

	s.mu.Lock()
	for i := range s.banners {
		if s.banners[i].ID == id {
			s.banners[i] = updated
		}
	}
	s.mu.Unlock()

	s.notify("Bannière modifiée ✓")
	return updated, nil
}

func (s *Store) DeleteBanner(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	if err := s.api.DeleteBanner(ctx, id); err != nil {
		s.logger.Error(ctx, "->api.DeleteBanner", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	kept := s.banners[:0:0]
	for _, b := range s.banners {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.banners = kept
	s.mu.Unlock()

	s.notify("Bannière supprimée ✓")
	return nil
}

// UpdateOrderStatus is an admin action. The local order is replaced by the
// server's copy once confirmed.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status structs.OrderStatus) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if !status.Valid() {
		return structs.ErrBadRequest
	}

	updated, err := s.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		s.logger.Error(ctx, "->api.UpdateOrderStatus", zap.String("order", orderID), zap.Error(err))
		s.notify("Erreur mise à jour statut")
		return err
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID != orderID {
			continue
		}
		if updated.ID == orderID {
			// keep the images attached at checkout
			if len(updated.Items) == len(s.orders[i].Items) {
				for j := range updated.Items {
					if updated.Items[j].Img == "" {
						updated.Items[j].Img = s.orders[i].Items[j].Img
					}
				}
			}
			s.orders[i] = updated
		} else {
			s.orders[i].Status = status
		}
	}
	s.mu.Unlock()
	return nil
}
