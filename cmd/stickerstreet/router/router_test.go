package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"stickerstreet/apps/gateway"
	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal"
	"stickerstreet/internal/session"
	"stickerstreet/pkg"
	"stickerstreet/pkg/config"
)

type envelope struct {
	Status struct {
		Code int `json:"code"`
	} `json:"status"`
	Error   string          `json:"error"`
	Payload json.RawMessage `json:"payload"`
}

func newEngine(t *testing.T) *gin.Engine {
	e, _ := newApp(t)
	return e
}

func newApp(t *testing.T) (*gin.Engine, *session.Registry) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products":
			_, _ = w.Write([]byte(`[{"id":7,"name":"Logo","cat":"stickers","emoji":"🔥","desc":"d","sizes":["A5"],"price":1,"ton":0.2,"xof":1200}]`))
		case "/banners", "/orders", "/chat":
			_, _ = w.Write([]byte(`[]`))
		case "/auth/telegram-miniapp":
			_, _ = w.Write([]byte(`{"telegram_user_id":77,"name":"Awa","username":"awa"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(api.Close)

	var (
		engine   *gin.Engine
		sessions *session.Registry
	)
	app := fxtest.New(t,
		pkg.Module,
		internal.Module,
		gateway.Module,
		fx.Decorate(func(cfg config.IConfig) config.IConfig {
			cfg.Set("storage.driver", "memory")
			cfg.Set("api.base_url", api.URL)
			cfg.Set("upload.driver", "api")
			return cfg
		}),
		fx.Provide(NewEngine),
		fx.Populate(&engine, &sessions),
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)
	return engine, sessions
}

func call(t *testing.T, e *gin.Engine, method, path, session string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthz(t *testing.T) {
	e := newEngine(t)
	w, _ := call(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestSessionIsMinted(t *testing.T) {
	e, sessions := newApp(t)
	w, env := call(t, e, http.MethodGet, "/api/v1/state", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Status.Code)

	token := w.Header().Get(middleware.SessionHeader)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, sessions.Len())

	w, _ = call(t, e, http.MethodGet, "/api/v1/state", token, nil)
	assert.Equal(t, token, w.Header().Get(middleware.SessionHeader))
	_, ok := sessions.Get(token)
	assert.True(t, ok)
}

func TestHeaderlessReadsShareOneSession(t *testing.T) {
	e, sessions := newApp(t)

	tokens := map[string]bool{}
	for range 50 {
		w, env := call(t, e, http.MethodGet, "/api/v1/products", "", nil)
		require.Equal(t, http.StatusOK, env.Status.Code)
		tokens[w.Header().Get(middleware.SessionHeader)] = true
	}
	assert.Len(t, tokens, 50)
	assert.Equal(t, 0, sessions.Len())

	_, env := call(t, e, http.MethodPost, "/api/v1/theme", "", nil)
	assert.Equal(t, http.StatusOK, env.Status.Code)
	assert.Equal(t, 1, sessions.Len())
}

type profile struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	TelegramUserID int64  `json:"telegram_user_id"`
}

func TestTelegramSessionNeedsVerifiedInitData(t *testing.T) {
	e, sessions := newApp(t)

	_, env := call(t, e, http.MethodPost, "/api/v1/profile/telegram", "victim", map[string]any{"init_data": "query_id=1&hash=ok"})
	require.Equal(t, http.StatusOK, env.Status.Code)
	_, ok := sessions.Get(session.TelegramID(77))
	require.True(t, ok)

	_, env = call(t, e, http.MethodPut, "/api/v1/profile", "victim", map[string]string{"name": "Awa", "phone": "770000000", "address": "Dakar"})
	require.Equal(t, http.StatusOK, env.Status.Code)

	var got profile
	_, env = call(t, e, http.MethodGet, "/api/v1/profile", "victim", nil)
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, "770000000", got.Phone)
	assert.Equal(t, int64(77), got.TelegramUserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("X-Telegram-User-ID", "77")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	got = profile{}
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Empty(t, got.Phone)

	w, env = call(t, e, http.MethodGet, "/api/v1/profile", session.TelegramID(77), nil)
	assert.NotEqual(t, session.TelegramID(77), w.Header().Get(middleware.SessionHeader))
	got = profile{}
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Empty(t, got.Phone)

	_, env = call(t, e, http.MethodPost, "/api/v1/profile/telegram", "intruder", map[string]any{"user": map[string]any{"id": 77}})
	require.Equal(t, http.StatusOK, env.Status.Code)
	_, env = call(t, e, http.MethodGet, "/api/v1/profile", "intruder", nil)
	got = profile{}
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Empty(t, got.Phone)
	assert.Equal(t, "intruder", sessions.Resolve(context.Background(), "intruder"))
}

func TestCartFlow(t *testing.T) {
	e := newEngine(t)

	_, env := call(t, e, http.MethodPost, "/api/v1/cart", "s1", map[string]any{"product_id": 7, "size": "A5", "qty": 2})
	require.Equal(t, http.StatusOK, env.Status.Code)

	var cart struct {
		Items []struct {
			ID  int64 `json:"id"`
			Qty int   `json:"qty"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)

	_, env = call(t, e, http.MethodPost, "/api/v1/cart", "s1", map[string]any{"product_id": 7, "size": "XXL"})
	assert.Equal(t, http.StatusBadRequest, env.Status.Code)

	_, env = call(t, e, http.MethodGet, "/api/v1/cart", "s2", nil)
	require.NoError(t, json.Unmarshal(env.Payload, &cart))
	assert.Empty(t, cart.Items)
}

func TestAdminGate(t *testing.T) {
	e := newEngine(t)

	w, env := call(t, e, http.MethodPost, "/api/v1/admin/lock", "adm", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, env.Status.Code)

	_, env = call(t, e, http.MethodPost, "/api/v1/admin/unlock", "adm", map[string]string{"pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, env.Status.Code)

	_, env = call(t, e, http.MethodPost, "/api/v1/admin/unlock", "adm", map[string]string{"pin": "1234"})
	assert.Equal(t, http.StatusOK, env.Status.Code)

	w, env = call(t, e, http.MethodPost, "/api/v1/admin/lock", "adm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Status.Code)
}
