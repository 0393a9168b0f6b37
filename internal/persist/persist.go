package persist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
)

const (
	KeyCart      = "stickerstreet_cart"
	KeyFavorites = "stickerstreet_favorites"
	KeyProfile   = "stickerstreet_profile"
	KeyAdminPin  = "stickerstreet_admin_pin"

	DefaultPin = "1234"
)

// Snapshot is the state restored at start.
type Snapshot struct {
	Cart      []structs.CartItem
	Favorites []int64
	Profile   structs.Profile
	AdminPin  string
}

// Persister reads and writes the four blobs. Write failures are logged and
// otherwise ignored so the session keeps running in memory.
type Persister struct {
	store  kv.Store
	pins   kv.Store
	logger logger.Logger
}

// New persists cart, favorites and profile in store and the admin PIN in pins.
// Passing the same store for both is fine.
func New(store, pins kv.Store, log logger.Logger) *Persister {
	if pins == nil {
		pins = store
	}
	return &Persister{store: store, pins: pins, logger: log}
}

func (p *Persister) Load(ctx context.Context) Snapshot {
	snap := Snapshot{
		Cart:      []structs.CartItem{},
		Favorites: []int64{},
		AdminPin:  DefaultPin,
	}

	if cart, ok := read[[]structs.CartItem](ctx, p, KeyCart); ok && cart != nil {
		snap.Cart = cart
	}
	if favorites, ok := read[[]int64](ctx, p, KeyFavorites); ok && favorites != nil {
		snap.Favorites = favorites
	}
	if profile, ok := read[structs.Profile](ctx, p, KeyProfile); ok {
		snap.Profile = profile
	}

	if raw, err := p.pins.Get(ctx, KeyAdminPin); err == nil {
		snap.AdminPin = ParsePin(raw)
	}

	return snap
}

// read decodes key into a fresh value and reports whether it held a usable
// one. A value that fails to decode is dropped whole.
func read[T any](ctx context.Context, p *Persister, key string) (T, bool) {
	var v T
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			p.logger.Warn(ctx, "->store.Get", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return v, false
	}

	var decoded T
	if err = json.Unmarshal([]byte(raw), &decoded); err != nil {
		p.logger.Warn(ctx, "persist: corrupted entry, using default", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return decoded, true
}

func (p *Persister) SaveCart(ctx context.Context, cart []structs.CartItem) {
	if cart == nil {
		cart = []structs.CartItem{}
	}
	p.write(ctx, p.store, KeyCart, cart)
}

func (p *Persister) SaveFavorites(ctx context.Context, favorites []int64) {
	if favorites == nil {
		favorites = []int64{}
	}
	p.write(ctx, p.store, KeyFavorites, favorites)
}

func (p *Persister) SaveProfile(ctx context.Context, profile structs.Profile) {
	p.write(ctx, p.store, KeyProfile, profile)
}

func (p *Persister) SaveAdminPin(ctx context.Context, pin string) {
	p.write(ctx, p.pins, KeyAdminPin, pin)
}

func (p *Persister) write(ctx context.Context, store kv.Store, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error(ctx, "persist: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err = store.Set(ctx, key, string(data)); err != nil {
		p.logger.Error(ctx, "->store.Set", zap.String("key", key), zap.Error(err))
	}
}

// WatchAdminPin reports PIN changes written by other sessions or processes.
func (p *Persister) WatchAdminPin(ctx context.Context, fn func(pin string)) (func(), error) {
	return p.pins.Watch(ctx, KeyAdminPin, func(value string, ok bool) {
		if !ok {
			fn(DefaultPin)
			return
		}
		fn(ParsePin(value))
	})
}

// ParsePin accepts a JSON string or bare digits. Anything else yields the
// default PIN.
func ParsePin(raw string) string {
	raw = strings.TrimSpace(raw)

	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		raw = s
	}

	if raw == "" {
		return DefaultPin
	}
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return DefaultPin
		}
	}
	return raw
}
