package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"payment-relay/internal/config"
	"payment-relay/internal/handler"
	"payment-relay/internal/service"
)

const origin = "https://shop.example"

type fakeGateway struct {
	calls  atomic.Int32
	status int
	body   string
	delay  time.Duration
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.calls.Add(1)
	_, _ = io.Copy(io.Discard, r.Body)

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-r.Context().Done():
			return
		}
	}

	status := g.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, g.body)
}

func newRouter(t *testing.T, gw *fakeGateway, timeout time.Duration) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.AuthNet.APILoginID = "login"
	cfg.AuthNet.TransactionKey = "key"
	cfg.AuthNet.Env = config.Sandbox
	cfg.AuthNet.Timeout = timeout
	cfg.HostedPage = config.HostedPage{
		CommunicatorURL: origin + "/iframe-communicator.html",
		ReturnURL:       origin + "/return",
		CancelURL:       origin + "/cancel",
	}
	cfg.AllowedOrigin = origin

	log := zap.NewNop()
	svc := service.NewTokenService(service.NewAuthNetClient(srv.URL, timeout, log), cfg, log)

	return handler.NewRouter(handler.NewTokenHandler(svc, log), log, handler.RouterOptions{
		ServiceName:   "payment-relay",
		AllowedOrigin: cfg.AllowedOrigin,
	})
}

func postToken(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/authorize-token", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	gw := &fakeGateway{status: http.StatusServiceUnavailable}
	router := newRouter(t, gw, time.Second)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
	require.EqualValues(t, 0, gw.calls.Load())
}

func TestAuthorizeToken(t *testing.T) {
	tests := []struct {
		name       string
		gateway    *fakeGateway
		body       string
		wantStatus int
		wantCalls  int32
		check      func(t *testing.T, out map[string]interface{})
	}{
		{
			name:       "top level token",
			gateway:    &fakeGateway{body: "\xef\xbb\xbf" + `{"token":"tok-1","messages":{"resultCode":"Ok","message":[{"code":"I00001","text":"Successful."}]}}`},
			body:       `{"amount":10,"invoiceNumber":"INV-9"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "tok-1", out["token"])
				require.Equal(t, "INV-9", out["invoice"])
			},
		},
		{
			name:       "envelope token and string amount",
			gateway:    &fakeGateway{body: `{"getHostedPaymentPageResponse":{"token":"tok-2"}}`},
			body:       `{"amount":"12.5","customerId":"c-1","description":"Copay"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "tok-2", out["token"])
				require.NotEmpty(t, out["invoice"])
			},
		},
		{
			name:       "numeric invoice number",
			gateway:    &fakeGateway{body: `{"token":"tok-3"}`},
			body:       `{"amount":10,"invoiceNumber":1001}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "tok-3", out["token"])
				require.Equal(t, "1001", out["invoice"])
			},
		},
		{
			name:       "numeric customer id",
			gateway:    &fakeGateway{body: `{"token":"tok-4"}`},
			body:       `{"amount":10,"customerId":12345}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "tok-4", out["token"])
			},
		},
		{
			name:       "boolean customer id",
			gateway:    &fakeGateway{body: `{"token":"unused"}`},
			body:       `{"amount":10,"customerId":true}`,
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
		},
		{
			name:       "missing amount",
			gateway:    &fakeGateway{body: `{"token":"unused"}`},
			body:       `{"invoiceNumber":"INV-9"}`,
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "amount is required", out["error"])
			},
		},
		{
			name:       "non positive amount",
			gateway:    &fakeGateway{body: `{"token":"unused"}`},
			body:       `{"amount":-1}`,
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
		},
		{
			name:       "malformed json",
			gateway:    &fakeGateway{body: `{"token":"unused"}`},
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
		},
		{
			name:       "no token",
			gateway:    &fakeGateway{body: `{"messages":{"resultCode":"Error","message":[{"code":"E00007","text":"User authentication failed due to invalid authentication values."}]}}`},
			body:       `{"amount":10}`,
			wantStatus: http.StatusBadGateway,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "No token in Authorize.net response", out["error"])
				anet := out["anet"].(map[string]interface{})
				require.Equal(t, "Error", anet["resultCode"])
				require.Equal(t, []interface{}{"E00007"}, anet["messageCodes"])
				require.Equal(t, []interface{}{"User authentication failed due to invalid authentication values."}, anet["messageText"])
			},
		},
		{
			name:       "no token and no messages",
			gateway:    &fakeGateway{body: `{}`},
			body:       `{"amount":10}`,
			wantStatus: http.StatusBadGateway,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				anet := out["anet"].(map[string]interface{})
				require.Equal(t, []interface{}{}, anet["messageCodes"])
				require.Equal(t, []interface{}{}, anet["messageText"])
			},
		},
		{
			name:       "gateway http error",
			gateway:    &fakeGateway{status: http.StatusInternalServerError, body: `{"messages":{"resultCode":"Error","message":[{"code":"E00001","text":"An error occurred during processing."}]}}`},
			body:       `{"amount":10}`,
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]interface{}) {
				require.Equal(t, "Unable to generate token", out["error"])
				require.NotEmpty(t, out["hint"])
				anet := out["anet"].(map[string]interface{})
				require.Equal(t, []interface{}{"E00001"}, anet["messageCodes"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.gateway, time.Second)

			w := postToken(router, tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			require.Equal(t, tt.wantCalls, tt.gateway.calls.Load())

			out := decode(t, w)
			if tt.wantStatus != http.StatusOK {
				require.NotEmpty(t, out["error"])
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestAuthorizeTokenTimeout(t *testing.T) {
	gw := &fakeGateway{body: `{"token":"late"}`, delay: 5 * time.Second}
	router := newRouter(t, gw, 150*time.Millisecond)

	start := time.Now()
	w := postToken(router, `{"amount":10}`)

	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	out := decode(t, w)
	require.Equal(t, "Unable to generate token", out["error"])
	require.Contains(t, out["hint"], "did not respond within 150ms")
	require.NotContains(t, out, "anet")
}

func TestCORS(t *testing.T) {
	router := newRouter(t, &fakeGateway{body: `{"token":"tok"}`}, time.Second)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/authorize-token", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from other origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/authorize-token", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		router.ServeHTTP(w, req)

		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight for other method", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/authorize-token", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("preflight with other header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/authorize-token", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "X-Api-Key")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("preflight with simple headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/authorize-token", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Accept, Accept-Language, Content-Type")
		router.ServeHTTP(w, req)

		// CORS-safelisted headers pass but only Content-Type is echoed back
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		require.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("actual request from allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/authorize-token", bytes.NewBufferString(`{"amount":1}`))
		req.Header.Set("Origin", origin)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNotFoundIsJSON(t *testing.T) {
	router := newRouter(t, &fakeGateway{}, time.Second)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}
