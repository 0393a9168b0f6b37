package storefront

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stickerstreet/internal/structs"
)

func (s *Store) Favorites() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64{}, s.favorites...)
}

func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.favorites {
		if f == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := make([]int64, 0, len(s.favorites)+1)
	found := false
	for _, f := range s.favorites {
		if f == id {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		next = append(next, id)
	}
	s.favorites = next
	snap := append([]int64{}, next...)
	s.mu.Unlock()

	s.persist.SaveFavorites(ctx, snap)
	return !found
}

// FavoriteProducts resolves favorites against the loaded catalog.
func (s *Store) FavoriteProducts() []structs.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []structs.Product
	for _, p := range s.products {
		for _, f := range s.favorites {
			if p.ID == f {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *Store) Profile() structs.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) mutateProfile(ctx context.Context, fn func(p *structs.Profile)) structs.Profile {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(&s.profile)
	snap := s.profile
	s.mu.Unlock()

	s.persist.SaveProfile(ctx, snap)
	return snap
}

// UpdateContact replaces the manually edited contact fields. The linked
// Telegram account is kept.
func (s *Store) UpdateContact(ctx context.Context, name, phone, address string) structs.Profile {
	return s.mutateProfile(ctx, func(p *structs.Profile) {
		p.Name = strings.TrimSpace(name)
		p.Phone = strings.TrimSpace(phone)
		p.Address = strings.TrimSpace(address)
	})
}

// AutoConnect links the Telegram account behind the host's init data, or the
// unsafe user when no init data is available.
func (s *Store) AutoConnect(ctx context.Context, initData string, user *structs.TelegramUser) error {
	res, err := s.api.AuthTelegramMiniApp(ctx, initData, user)
	if err != nil {
		s.logger.Warn(ctx, "->api.AuthTelegramMiniApp", zap.Error(err))
		return err
	}

	s.applyAuth(ctx, res)
	s.notify("Connexion automatique ✓")
	return nil
}

// LinkTelegram verifies a Telegram Login Widget payload.
func (s *Store) LinkTelegram(ctx context.Context, user structs.TelegramUser) error {
	res, err := s.api.AuthTelegram(ctx, user)
	if err != nil {
		s.logger.Warn(ctx, "->api.AuthTelegram", zap.Error(err))
		return err
	}

	s.applyAuth(ctx, res)
	s.notify("Compte Telegram lié ✓")
	return nil
}

// AdoptTelegram takes over the Telegram account another session verified.
func (s *Store) AdoptTelegram(ctx context.Context, verified structs.Profile) {
	s.applyAuth(ctx, structs.AuthResult{
		TelegramUserID: verified.TelegramUserID,
		Name:           verified.Name,
		Username:       verified.TelegramUsername,
	})
}

func (s *Store) applyAuth(ctx context.Context, res structs.AuthResult) {
	s.mutateProfile(ctx, func(p *structs.Profile) {
		p.TelegramUserID = res.TelegramUserID
		p.TelegramUsername = res.Username
		if p.Name == "" {
			p.Name = res.Name
		}
	})
}
