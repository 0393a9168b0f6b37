package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	p := New(kv.NewMemory(), nil, logger.Nop())

	snap := p.Load(context.Background())

	assert.Equal(t, []structs.CartItem{}, snap.Cart)
	assert.Equal(t, []int64{}, snap.Favorites)
	assert.Equal(t, structs.Profile{}, snap.Profile)
	assert.Equal(t, DefaultPin, snap.AdminPin)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	p := New(store, nil, logger.Nop())

	design := "logo.png"
	cart := []structs.CartItem{
		{ID: 1, Name: "Stickers Vinyle", Emoji: "🎨", Img: "/img/1.png", Sz: "5x5cm", Qty: 3, Price: 1.5, Ton: 0.3, Xof: 900},
		{ID: 8, Name: "Die-Cut", Emoji: "✂️", Sz: "Custom", Qty: 1, Dsgn: &design, Xof: 2500},
	}
	favorites := []int64{3, 1, 8}
	profile := structs.Profile{
		Name: "Awa", Phone: "+221700000000", Address: "Dakar",
		TelegramUserID: 42, TelegramUsername: "awa",
	}

	p.SaveCart(ctx, cart)
	p.SaveFavorites(ctx, favorites)
	p.SaveProfile(ctx, profile)
	p.SaveAdminPin(ctx, "9876")

	snap := New(store, nil, logger.Nop()).Load(ctx)

	assert.Equal(t, cart, snap.Cart)
	assert.Equal(t, favorites, snap.Favorites)
	assert.Equal(t, profile, snap.Profile)
	assert.Equal(t, "9876", snap.AdminPin)

	raw, err := store.Get(ctx, KeyAdminPin)
	require.NoError(t, err)
	assert.Equal(t, `"9876"`, raw)
}

func TestCorruptedEntriesFallBackIndependently(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		key   string
		raw   string
		check func(t *testing.T, snap Snapshot)
	}{
		{"cart not json", KeyCart, "{oops", func(t *testing.T, s Snapshot) {
			assert.Equal(t, []structs.CartItem{}, s.Cart)
		}},
		{"cart wrong shape", KeyCart, `{"id":1}`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, []structs.CartItem{}, s.Cart)
		}},
		{"cart null", KeyCart, "null", func(t *testing.T, s Snapshot) {
			assert.Equal(t, []structs.CartItem{}, s.Cart)
		}},
		{"cart half decoded", KeyCart, `[{"id":7,"sz":"A6","qty":1},{"id":"x"}]`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, []structs.CartItem{}, s.Cart)
		}},
		{"favorites half decoded", KeyFavorites, `[9,"x"]`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, []int64{}, s.Favorites)
		}},
		{"profile half decoded", KeyProfile, `{"name":"Awa","phone":77}`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, structs.Profile{}, s.Profile)
		}},
		{"favorites not json", KeyFavorites, "[1,", func(t *testing.T, s Snapshot) {
			assert.Equal(t, []int64{}, s.Favorites)
		}},
		{"profile not json", KeyProfile, "name=awa", func(t *testing.T, s Snapshot) {
			assert.Equal(t, structs.Profile{}, s.Profile)
		}},
		{"pin garbage", KeyAdminPin, `{"pin":1}`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, DefaultPin, s.AdminPin)
		}},
		{"pin empty string", KeyAdminPin, `""`, func(t *testing.T, s Snapshot) {
			assert.Equal(t, DefaultPin, s.AdminPin)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := kv.NewMemory()
			p := New(store, nil, logger.Nop())

			p.SaveCart(ctx, []structs.CartItem{{ID: 2, Sz: "A5", Qty: 1}})
			p.SaveFavorites(ctx, []int64{2})
			p.SaveProfile(ctx, structs.Profile{Name: "Moussa"})
			p.SaveAdminPin(ctx, "5555")

			require.NoError(t, store.Set(ctx, tc.key, tc.raw))

			snap := p.Load(ctx)
			tc.check(t, snap)

			if tc.key != KeyCart {
				assert.Len(t, snap.Cart, 1)
			}
			if tc.key != KeyFavorites {
				assert.Equal(t, []int64{2}, snap.Favorites)
			}
			if tc.key != KeyProfile {
				assert.Equal(t, "Moussa", snap.Profile.Name)
			}
			if tc.key != KeyAdminPin {
				assert.Equal(t, "5555", snap.AdminPin)
			}
		})
	}
}

func TestParsePin(t *testing.T) {
	assert.Equal(t, "4321", ParsePin(`"4321"`))
	assert.Equal(t, "4321", ParsePin("4321"))
	assert.Equal(t, "4321", ParsePin(" 4321\n"))
	assert.Equal(t, DefaultPin, ParsePin(""))
	assert.Equal(t, DefaultPin, ParsePin(`"12a4"`))
	assert.Equal(t, DefaultPin, ParsePin("null"))
}

func TestWatchAdminPin(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	p := New(kv.Scoped(store, "session-a"), store, logger.Nop())
	other := New(kv.Scoped(store, "session-b"), store, logger.Nop())

	var seen []string
	stop, err := p.WatchAdminPin(ctx, func(pin string) { seen = append(seen, pin) })
	require.NoError(t, err)
	defer stop()

	other.SaveAdminPin(ctx, "2468")
	require.NoError(t, store.Delete(ctx, KeyAdminPin))

	assert.Equal(t, []string{"2468", DefaultPin}, seen)
}
