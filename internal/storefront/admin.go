package storefront

import (
	"context"
	"strings"
	"unicode"

	"stickerstreet/internal/persist"
	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
)

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func (s *Store) IsAdmin() bool {
	return s.admin.Load()
}

// UnlockAdmin opens the admin view when pin matches the stored PIN.
func (s *Store) UnlockAdmin(pin string) error {
	s.mu.RLock()
	stored := s.adminPin
	s.mu.RUnlock()

	if digits(pin) != stored {
		s.notify("Code incorrect ❌")
		return structs.ErrWrongPin
	}

	s.admin.Store(true)
	s.Navigate(router.ViewAdmin, 0)

	if stored == persist.DefaultPin {
		s.notify("⚠️ PIN par défaut ! Change-le dans Admin → Réglages")
	} else {
		s.notify("Mode admin activé 🔓")
	}
	return nil
}

// LockAdmin closes the admin session, leaving the admin view if open.
func (s *Store) LockAdmin() {
	s.admin.Store(false)
	s.nav.Guard()
}

// ChangeAdminPin keeps the first four digits of pin, stores them and locks
// the admin session.
func (s *Store) ChangeAdminPin(ctx context.Context, pin string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	normalized := digits(pin)
	if len(normalized) > 4 {
		normalized = normalized[:4]
	}
	if len(normalized) != 4 {
		s.notify("Le PIN doit faire 4 chiffres")
		return structs.ErrInvalidPin
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.adminPin = normalized
	s.mu.Unlock()
	s.persist.SaveAdminPin(ctx, normalized)
	s.writeMu.Unlock()

	s.LockAdmin()
	s.notify("PIN modifié ✓ (reconnexion admin requise)")
	return nil
}

// AdminPin is the PIN currently in effect.
func (s *Store) AdminPin() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminPin
}
