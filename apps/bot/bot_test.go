package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/apps/bot/commands/clients"
	"stickerstreet/apps/bot/commands/order"
	"stickerstreet/apps/bot/commands/product"
	"stickerstreet/apps/bot/middleware"
	"stickerstreet/internal/admin"
	"stickerstreet/internal/payment"
	"stickerstreet/internal/session"
	"stickerstreet/internal/structs"
	"stickerstreet/internal/ws"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
	"stickerstreet/pkg/tgrouter/callback"
)

const userID = 42

type backend struct {
	orders atomic.Int32
	chat   atomic.Int32
	posted atomic.Value
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/products":
		_, _ = w.Write([]byte(`[{"id":1,"name":"Logo Dakar","cat":"stickers","emoji":"🔥","desc":"Vinyle","sizes":["A5","A4"],"price":2,"ton":0.5,"xof":1500,"pricesBySize":{"A4":{"xof":2500}}}]`))
	case r.URL.Path == "/banners":
		_, _ = w.Write([]byte(`[]`))
	case r.URL.Path == "/auth/telegram-miniapp":
		_, _ = w.Write([]byte(`{"telegram_user_id":42,"name":"Awa","username":"awa"}`))
	case r.URL.Path == "/orders" && r.Method == http.MethodPost:
		b.orders.Add(1)
		var body structs.CreateOrder
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.posted.Store(body)
		_, _ = w.Write([]byte(`{"id":"SS-1001","status":"pending","items":[],"totalXof":2500}`))
	case r.URL.Path == "/orders":
		_, _ = w.Write([]byte(`[{"id":"SS-1001","status":"shipped","items":[],"totalXof":2500}]`))
	case r.URL.Path == "/chat":
		if r.Method == http.MethodPost {
			b.chat.Add(1)
		}
		_, _ = w.Write([]byte(`[]`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}
}

type harness struct {
	router   *tgrouter.Router
	registry *session.Registry
	api      *backend
}

func newHarness(t *testing.T) *harness {
	api := &backend{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	client := apiclient.NewClient(srv.URL, "", time.Second, log)
	registry := session.NewRegistry(client, kv.NewMemory(), ws.NewHub(), admin.NewValidator(time.Second), nil, log, session.Options{
		PollInterval: time.Hour,
		IdleTimeout:  time.Hour,
	})
	t.Cleanup(registry.Shutdown)

	r := tgrouter.NewFactory(log, tgrouter.NewKVState(kv.NewMemory()))(nil)
	Routes(r, Params{
		Logger:     log,
		Config:     config.NewConfig(),
		Middleware: middleware.New(middleware.Params{Logger: log, Registry: registry}),
		ClientsCmd: clients.New(clients.Params{Logger: log, Config: config.NewConfig()}),
		ProductCmd: product.New(product.Params{Logger: log}),
		OrderCmd:   order.New(order.Params{Logger: log, Payment: payment.NewService(client, "", log)}),
	})

	return &harness{router: r, registry: registry, api: api}
}

func (h *harness) command(cmd string) {
	text := "/" + cmd
	h.router.HandleUpdate(context.Background(), &tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: userID},
		From:     &tgbotapi.User{ID: userID, FirstName: "Awa"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}})
}

func (h *harness) text(t string) {
	h.router.HandleUpdate(context.Background(), &tgbotapi.Update{Message: &tgbotapi.Message{
		Text: t,
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID, FirstName: "Awa"},
	}})
}

func (h *harness) press(data string) {
	h.router.HandleUpdate(context.Background(), &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: userID, FirstName: "Awa"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
	}})
}

func (h *harness) session(t *testing.T) *session.Session {
	s, ok := h.registry.Get(session.TelegramID(userID))
	require.True(t, ok)
	return s
}

func TestStartLinksTelegramAccount(t *testing.T) {
	h := newHarness(t)
	h.command("start")

	profile := h.session(t).Store.Profile()
	assert.Equal(t, int64(userID), profile.TelegramUserID)
	assert.Equal(t, "awa", profile.TelegramUsername)
}

func TestCatalogToCheckout(t *testing.T) {
	h := newHarness(t)

	h.command("catalog")
	require.Len(t, h.session(t).Store.Products(), 1)

	h.press(callback.Data(product.QueryProduct, "1"))
	h.press(callback.Data(product.QueryAdd, "1", "A4"))
	h.press(callback.Data(product.QueryAdd, "1", "A4"))
	h.press(callback.Data(product.QueryAdd, "1", "XXL"))

	cart := h.session(t).Store.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "A4", cart[0].Sz)
	assert.Equal(t, 2, cart[0].Qty)
	assert.Equal(t, 2500.0, cart[0].Xof)

	h.press(order.QueryCancel)
	assert.Len(t, h.session(t).Store.Cart(), 1)

	h.press(callback.Data(order.QueryPay, string(structs.PaymentMomo)))
	assert.Equal(t, int32(1), h.api.orders.Load())
	assert.Empty(t, h.session(t).Store.Cart())

	posted := h.api.posted.Load().(structs.CreateOrder)
	require.Len(t, posted.Items, 1)
	assert.Equal(t, 2, posted.Items[0].Qty)
	assert.Equal(t, int64(userID), posted.TelegramUserID)
}

func TestTonPaidByQRPlacesOrder(t *testing.T) {
	h := newHarness(t)
	h.command("catalog")
	h.press(callback.Data(product.QueryAdd, "1", "A5"))

	// the rates endpoint is down, the transfer already left through the QR code
	h.press(callback.Data(order.QueryPay, string(structs.PaymentTon)))
	assert.Equal(t, int32(1), h.api.orders.Load())
	assert.Empty(t, h.session(t).Store.Cart())
}

func TestRegisterConversation(t *testing.T) {
	h := newHarness(t)

	h.command("register")
	h.text("Awa Diop")
	h.text("+221 77 000 00 00")
	h.text("Plateau, Dakar")

	profile := h.session(t).Store.Profile()
	assert.Equal(t, "Awa Diop", profile.Name)
	assert.Equal(t, "+221 77 000 00 00", profile.Phone)
	assert.Equal(t, "Plateau, Dakar", profile.Address)

	h.text("Bonjour, ma commande ?")
	assert.Equal(t, int32(1), h.api.chat.Load())
}

func TestStartAbandonsConversation(t *testing.T) {
	h := newHarness(t)

	h.command("register")
	h.command("start")
	h.text("Moussa")

	assert.Equal(t, "Awa", h.session(t).Store.Profile().Name)
	assert.Equal(t, int32(1), h.api.chat.Load())
}

func TestSummaryAndFailureText(t *testing.T) {
	text := order.Summary([]structs.CartItem{
		{Name: "Logo", Emoji: "🔥", Sz: "A4", Qty: 2, Xof: 2500},
	})
	assert.Contains(t, text, "Logo (A4) × 2 · 5 000 F")
	assert.Contains(t, text, "Total : 5 000 F pour 2 article(s)")

	assert.Equal(t, "Ton panier est vide", order.FailureText(structs.ErrEmptyCart))
	assert.Equal(t, "Erreur : stock épuisé", order.FailureText(&apiclient.RequestError{Message: "stock épuisé"}))
}
