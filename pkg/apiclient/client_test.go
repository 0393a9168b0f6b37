package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

func newTestClient(t *testing.T, adminKey string, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", adminKey, time.Second, logger.Nop())
}

func TestProductsDecodesLenientPrices(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Vinyle","sizes":["5x5cm"],"xof":"900","price":null}]`)
	})

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, structs.Amount(900), products[0].Xof)
	assert.Equal(t, structs.Amount(0), products[0].Price)
}

func TestServerErrorMessageIsSurfaced(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Panier vide"}`)
	})

	_, err := c.CreateOrder(context.Background(), nil, nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "orders.create", reqErr.Op)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.Equal(t, "Panier vide", reqErr.Message)
	assert.Equal(t, "Panier vide", Message(err))
}

func TestFallbackMessageWithoutBody(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.CreateOrder(context.Background(), nil, nil)
	assert.EqualError(t, err, "Erreur création commande (502)")

	_, err = c.Products(context.Background())
	assert.EqualError(t, err, "Erreur chargement produits")
}

func TestCreateOrderBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get(AdminKeyHeader))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"SS-0007","status":"pending","items":[{"id":1,"qty":2,"sz":"A5"}]}`)
	})

	items := []structs.OrderItem{{ID: 1, Name: "Flyers", Qty: 2, Sz: "A5", Xof: 5000}}
	order, err := c.CreateOrder(context.Background(), items, &structs.Profile{Name: "Awa", TelegramUserID: 42})
	require.NoError(t, err)

	assert.Equal(t, "SS-0007", order.ID)
	assert.Equal(t, structs.OrderStatusPending, order.Status)
	assert.Equal(t, "Awa", got["client_name"])
	assert.Equal(t, float64(42), got["telegram_user_id"])
	_, hasPhone := got["client_phone"]
	assert.False(t, hasPhone)
}

func TestAdminHeaderOnMutations(t *testing.T) {
	var headers []string
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Method+" "+r.URL.Path+" "+r.Header.Get(AdminKeyHeader))
		_, _ = io.WriteString(w, `{}`)
	})
	ctx := context.Background()

	_, _ = c.Products(ctx)
	_, _ = c.CreateProduct(ctx, structs.ProductPayload{Name: "x"})
	_ = c.DeleteBanner(ctx, 3)
	_, _ = c.UpdateOrderStatus(ctx, "SS-0001", structs.OrderStatusShipped)

	assert.Equal(t, []string{
		"GET /api/products ",
		"POST /api/products secret",
		"DELETE /api/banners/3 secret",
		"PATCH /api/orders/SS-0001/status secret",
	}, headers)
}

func TestOrdersQuery(t *testing.T) {
	var queries []string
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.Orders(context.Background(), 0)
	require.NoError(t, err)
	_, err = c.Orders(context.Background(), 77)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "telegram_user_id=77"}, queries)
}

func TestAuthMiniAppRequiresTelegramData(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.AuthTelegramMiniApp(context.Background(), "  ", &structs.TelegramUser{})
	assert.ErrorIs(t, err, structs.ErrMissingTelegram)
	assert.False(t, called)
}

func TestTonRate(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12500", r.URL.Query().Get("total_xof"))
		_, _ = io.WriteString(w, `{"ton_usd":5.2,"xof_per_usd":600,"amount_ton":4.006,"amount_usd":20.83}`)
	})

	rate, err := c.TonRate(context.Background(), 12500)
	require.NoError(t, err)
	assert.Equal(t, 4.006, rate.AmountTon)
}

func TestUploadBlob(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get(AdminKeyHeader))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "products", r.FormValue("folder"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)

		assert.Equal(t, "a.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte{1, 2, 3}, data)

		_, _ = io.WriteString(w, `{"url":"https://blob/a.png","pathname":"products/a.png"}`)
	})

	res, err := c.UploadBlob(context.Background(), structs.File{Name: "a.png", ContentType: "image/png", Data: []byte{1, 2, 3}}, "products")
	require.NoError(t, err)
	assert.Equal(t, "https://blob/a.png", res.URL)
}

func TestTransportFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond, logger.Nop())

	_, err := c.Banners(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Erreur chargement bannières", reqErr.Message)
	assert.Error(t, reqErr.Unwrap())
}
