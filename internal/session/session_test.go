package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/internal/admin"
	"stickerstreet/internal/persist"
	"stickerstreet/internal/router"
	"stickerstreet/internal/ws"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
)

type stubAPI struct {
	srv       *httptest.Server
	chatCalls atomic.Int32
}

func newStubAPI(t *testing.T) *stubAPI {
	s := &stubAPI{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products", "/banners", "/orders":
			_, _ = w.Write([]byte(`[]`))
		case "/chat":
			s.chatCalls.Add(1)
			_, _ = w.Write([]byte(`[{"from":"bot","text":"Salut","time":"10:00"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func newRegistry(t *testing.T) (*Registry, *stubAPI, kv.Store) {
	api := newStubAPI(t)
	store := kv.NewMemory()
	client := apiclient.NewClient(api.srv.URL, "", time.Second, logger.Nop())

	r := NewRegistry(client, store, ws.NewHub(), admin.NewValidator(time.Second), nil, logger.Nop(), Options{
		PollInterval: 10 * time.Millisecond,
		IdleTimeout:  time.Minute,
	})
	t.Cleanup(r.Shutdown)
	return r, api, store
}

func TestOpenReusesSession(t *testing.T) {
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	a := r.Open(ctx, "a")
	assert.Same(t, a, r.Open(ctx, "a"))
	assert.Equal(t, 1, r.Len())

	b := r.Open(ctx, TelegramID(42))
	assert.NotSame(t, a, b)
	assert.Equal(t, "tg-42", b.ID)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Close("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
}

func TestSessionsKeepSeparateCarts(t *testing.T) {
	r, _, store := newRegistry(t)
	ctx := context.Background()

	a := r.Open(ctx, "a")
	b := r.Open(ctx, "b")

	p := a.Store.Products()[0]
	a.Store.AddItem(ctx, p, p.Sizes[0], 2, nil)

	assert.Len(t, a.Store.Cart(), 1)
	assert.Empty(t, b.Store.Cart())

	raw, err := store.Get(ctx, "session:a:"+persist.KeyCart)
	require.NoError(t, err)
	assert.Contains(t, raw, p.Name)

	r.Close("a")
	again := r.Open(ctx, "a")
	assert.Len(t, again.Store.Cart(), 1)
}

func TestAdminPinIsShared(t *testing.T) {
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	a := r.Open(ctx, "a")
	b := r.Open(ctx, "b")

	require.NoError(t, a.Store.UnlockAdmin(persist.DefaultPin))
	require.NoError(t, a.Store.ChangeAdminPin(ctx, "4321"))

	assert.Equal(t, "4321", b.Store.AdminPin())
	require.NoError(t, b.Store.UnlockAdmin("4321"))
}

func TestChatPollsWhileChatViewIsOpen(t *testing.T) {
	r, api, _ := newRegistry(t)
	s := r.Open(context.Background(), "a")

	assert.False(t, s.Chat.Running())

	s.Store.Navigate(router.ViewChat, 0)
	require.Eventually(t, s.Chat.Running, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return api.chatCalls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Store.Navigate(router.ViewHome, 0)
	require.Eventually(t, func() bool { return !s.Chat.Running() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Salut", s.Store.Messages()[0].Text)
}

func TestSweep(t *testing.T) {
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	now := time.Now()
	r.now = func() time.Time { return now }

	r.Open(ctx, "old")
	now = now.Add(2 * time.Minute)
	r.Open(ctx, "fresh")

	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Get("old")
	assert.False(t, ok)
	_, ok = r.Get("fresh")
	assert.True(t, ok)
}

func TestAnonymousSessionIsShared(t *testing.T) {
	r, _, store := newRegistry(t)
	ctx := context.Background()

	a := r.Anonymous(ctx)
	assert.Same(t, a, r.Anonymous(ctx))
	assert.Equal(t, AnonymousID, a.ID)
	assert.Equal(t, 0, r.Len())

	p := a.Store.Products()[0]
	a.Store.AddItem(ctx, p, p.Sizes[0], 1, nil)
	_, err := store.Get(ctx, "session:"+AnonymousID+":"+persist.KeyCart)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestLinkResolvesToTelegramSession(t *testing.T) {
	r, _, store := newRegistry(t)
	ctx := context.Background()

	assert.Equal(t, "web", r.Resolve(ctx, "web"))

	id := r.Link(ctx, "web", 42)
	assert.Equal(t, TelegramID(42), id)
	assert.Equal(t, id, r.Resolve(ctx, "web"))

	again := NewRegistry(nil, store, nil, nil, nil, logger.Nop(), Options{})
	t.Cleanup(again.Shutdown)
	assert.Equal(t, id, again.Resolve(ctx, "web"))
}

func TestReserved(t *testing.T) {
	assert.True(t, Reserved(TelegramID(7)))
	assert.True(t, Reserved(AnonymousID))
	assert.False(t, Reserved(NewID()))
}
