package storefront

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"stickerstreet/internal/catalog"
	"stickerstreet/internal/persist"
	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/logger"
)

const chatGreeting = "Salut ! 👋 Bienvenue chez StickerStreet. Dis-moi ce qu'il te faut !"

type Options struct {
	Location        router.Location
	TransitionDelay time.Duration
	Now             func() time.Time
}

// Store is the state of one storefront session. Cart, favorites and profile
// changes apply immediately and are persisted; checkout and admin edits apply
// only after the API confirms them.
type Store struct {
	api     apiclient.Client
	persist *persist.Persister
	toasts  Notifier
	logger  logger.Logger
	nav     *router.Navigator
	now     func() time.Time

	// writeMu orders mutations with their persistence writes.
	writeMu sync.Mutex
	mu      sync.RWMutex
	admin   atomic.Bool

	cart      []structs.CartItem
	favorites []int64
	profile   structs.Profile
	adminPin  string

	products []structs.Product
	banners  []structs.Banner
	orders   []structs.Order
	messages []structs.ChatMessage
	selected *structs.Product
	filter   string
	dark     bool

	stopPin func()
}

func New(ctx context.Context, api apiclient.Client, p *persist.Persister, toasts Notifier, log logger.Logger, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = router.NewMemoryLocation("#/")
	}

	snap := p.Load(ctx)

	s := &Store{
		api:       api,
		persist:   p,
		toasts:    toasts,
		logger:    log,
		now:       opts.Now,
		cart:      snap.Cart,
		favorites: snap.Favorites,
		profile:   snap.Profile,
		adminPin:  snap.AdminPin,
		products:  withVisuals(catalog.Products()),
		filter:    catalog.CategoryAll,
		dark:      isNight(opts.Now()),
		messages: []structs.ChatMessage{{
			From: structs.ChatFromBot,
			Text: chatGreeting,
			Time: opts.Now().Format("15:04"),
		}},
	}

	s.nav = router.NewNavigator(opts.Location, opts.TransitionDelay, s.admin.Load)
	s.nav.OnChange(s.onRoute)

	stop, err := p.WatchAdminPin(ctx, func(pin string) {
		s.mu.Lock()
		s.adminPin = pin
		s.mu.Unlock()
	})
	if err != nil {
		log.Warn(ctx, "storefront: admin PIN will not follow other sessions", zap.Error(err))
	} else {
		s.stopPin = stop
	}

	return s
}

// Start loads the catalog and banners.
func (s *Store) Start(ctx context.Context) {
	s.LoadCatalog(ctx)
	s.LoadBanners(ctx)
	s.onRoute(s.nav.Current())
}

func (s *Store) Close() {
	if s.stopPin != nil {
		s.stopPin()
	}
}

func (s *Store) notify(msg string) {
	if s.toasts != nil {
		s.toasts.Notify(msg)
	}
}

func isNight(t time.Time) bool {
	h := t.Hour()
	return h >= 19 || h < 6
}

func (s *Store) Dark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

func (s *Store) ToggleTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark = !s.dark
	return s.dark
}

func (s *Store) Route() router.Route {
	return s.nav.Current()
}

// Navigate moves to view. The route switches after the transition delay.
func (s *Store) Navigate(view router.View, productID int64) {
	s.nav.Go(view, productID)
}

// SyncLocation follows a fragment changed outside the store.
func (s *Store) SyncLocation() {
	s.nav.Sync()
}

func (s *Store) OnRouteChange(fn func(router.Route)) {
	s.nav.OnChange(fn)
}

func (s *Store) onRoute(r router.Route) {
	ctx := context.Background()

	if r.View == router.ViewProduct && r.ProductID != 0 {
		s.mu.Lock()
		if p, ok := catalog.Find(s.products, r.ProductID); ok {
			s.selected = &p
		}
		s.mu.Unlock()
	}

	if r.View == router.ViewAdmin || r.View == router.ViewOrders {
		s.LoadOrders(ctx)
	}
}

// Selected is the product shown by the product view.
func (s *Store) Selected() (structs.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return structs.Product{}, false
	}
	return *s.selected, true
}

// ShowProduct selects p and opens its view.
func (s *Store) ShowProduct(p structs.Product) {
	s.mu.Lock()
	s.selected = &p
	s.mu.Unlock()
	s.Navigate(router.ViewProduct, p.ID)
}
