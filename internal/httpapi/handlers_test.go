package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/backend/internal/cache"
	"cafeteria/backend/internal/reporting"
	"cafeteria/backend/internal/service"
	"cafeteria/backend/internal/store"
	"cafeteria/backend/internal/store/memory"
)

var bogota = time.FixedZone("COT", -5*60*60)

// 2024-03-02 01:30 UTC is 2024-03-01 20:30 in Bogotá.
var fixedNow = time.Date(2024, time.March, 2, 1, 30, 0, 0, time.UTC)

type testEnv struct {
	api     *API
	handler http.Handler
	repo    *memory.Store
	metrics *Metrics
}

type envOption func(*envConfig)

type envConfig struct {
	opts    Options
	replay  cache.SaleReplayCache
	reports store.ReportStore
}

func withRateLimit(n int) envOption {
	return func(c *envConfig) { c.opts.RateLimitPerMinute = n }
}

func withReplayCache(replay cache.SaleReplayCache) envOption {
	return func(c *envConfig) { c.replay = replay }
}

func withReportStore(st store.ReportStore) envOption {
	return func(c *envConfig) { c.reports = st }
}

// newTestEnv wires the full request path on top of a seeded in-memory store.
func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()

	repo := memory.NewSeeded()
	cfg := envConfig{reports: repo}
	for _, option := range options {
		option(&cfg)
	}

	clock := func() time.Time { return fixedNow }
	metrics := NewMetrics()
	svc := service.New(repo, cfg.replay, time.Minute, bogota, zerolog.Nop()).WithClock(clock)
	engine := reporting.NewEngine(cfg.reports, reporting.Options{
		BusinessName: "Cafetería",
		Location:     bogota,
	}, zerolog.Nop(), reporting.NewMetrics(metrics.Registerer())).WithClock(clock)

	cfg.opts.Logger = zerolog.Nop()
	cfg.opts.Metrics = metrics
	api := New(svc, engine, cfg.opts)
	return &testEnv{api: api, handler: api.Handler(), repo: repo, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res := httptest.NewRecorder()
	e.handler.ServeHTTP(res, req)
	return res
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out), res.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, res.Code)

	body := decodeBody[map[string]any](t, res)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["at"])
}

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/api/productos", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, res), 5)

	res = env.do(t, http.MethodPost, "/api/productos", `{"nombre":"Tinto","categoria":"Bebidas","precio":1200}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	created := decodeBody[map[string]any](t, res)
	assert.Equal(t, "Tinto", created["nombre"])
	assert.Equal(t, true, created["activo"])
	id := int64(created["id"].(float64))

	res = env.do(t, http.MethodPost, "/api/productos", `{"nombre":"Tinto","precio":1500}`)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = env.do(t, http.MethodPut, fmt.Sprintf("/api/productos/%d", id), `{"precio":1300}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "Tinto", decodeBody[map[string]any](t, res)["nombre"])

	res = env.do(t, http.MethodDelete, fmt.Sprintf("/api/productos/%d", id), nil)
	require.Equal(t, http.StatusOK, res.Code)
	deleted := decodeBody[map[string]any](t, res)
	assert.Equal(t, false, deleted["desactivado"])

	res = env.do(t, http.MethodPut, fmt.Sprintf("/api/productos/%d", id), `{"precio":1}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestProductValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing price", http.MethodPost, "/api/productos", `{"nombre":"Tinto"}`, http.StatusBadRequest},
		{"negative price", http.MethodPost, "/api/productos", `{"nombre":"Tinto","precio":-5}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/productos", `{"nombre":"Tinto","precio":5,"stock":3}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/productos", `{"nombre":`, http.StatusBadRequest},
		{"bad id", http.MethodPut, "/api/productos/abc", `{"precio":5}`, http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/api/productos/0", "", http.StatusBadRequest},
		{"unknown product", http.MethodDelete, "/api/productos/999", "", http.StatusNotFound},
		{"zero quantity", http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":0}`, http.StatusBadRequest},
		{"negative quantity", http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":-1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.body != "" {
				body = tc.body
			}
			res := env.do(t, tc.method, tc.path, body)
			assert.Equal(t, tc.want, res.Code, res.Body.String())
			assert.NotEmpty(t, decodeBody[map[string]any](t, res)["error"])
		})
	}
}

func TestDeleteSoldProductDeactivates(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":2,"cantidad":1}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = env.do(t, http.MethodDelete, "/api/productos/2", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := decodeBody[map[string]any](t, res)
	assert.Equal(t, true, body["desactivado"])
	assert.Contains(t, body["message"], "desactivado")

	res = env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":2,"cantidad":1}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestSalesFlow(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":2}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	sale := decodeBody[map[string]any](t, res)
	assert.Equal(t, "2024-03-01", sale["fecha_venta"])
	assert.Equal(t, "20:30:00", sale["hora_venta"])
	assert.Equal(t, "Merengón", sale["producto_nombre"])
	assert.Equal(t, "7000", fmt.Sprint(sale["total"]))

	res = env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":3}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = env.do(t, http.MethodGet, "/api/ventas", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, res), 2)

	res = env.do(t, http.MethodGet, "/api/ventas?fecha=2024-03-01&producto_id=3", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, res), 1)

	res = env.do(t, http.MethodGet, "/api/ventas?fecha=2024-02-30", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = env.do(t, http.MethodGet, "/api/ventas?producto_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	id := int64(sale["id"].(float64))
	res = env.do(t, http.MethodDelete, fmt.Sprintf("/api/ventas/%d", id), nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Venta eliminada", decodeBody[map[string]any](t, res)["message"])

	res = env.do(t, http.MethodDelete, fmt.Sprintf("/api/ventas/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreateSaleIdempotencyKeyReplays(t *testing.T) {
	srv := miniredis.RunT(t)
	replay := cache.NewRedisSaleReplayCache(srv.Addr(), "", 0)
	t.Cleanup(func() { _ = replay.Close() })
	env := newTestEnv(t, withReplayCache(replay))

	first := env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":1}`, idempotencyHeader, "caja-7")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":1}`, idempotencyHeader, "caja-7")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t,
		decodeBody[map[string]any](t, first)["id"],
		decodeBody[map[string]any](t, second)["id"])

	res := env.do(t, http.MethodGet, "/api/ventas", nil)
	assert.Len(t, decodeBody[[]map[string]any](t, res), 1)
}

func TestCreateSaleIdempotencyKeyInFlightConflicts(t *testing.T) {
	srv := miniredis.RunT(t)
	replay := cache.NewRedisSaleReplayCache(srv.Addr(), "", 0)
	t.Cleanup(func() { _ = replay.Close() })
	env := newTestEnv(t, withReplayCache(replay))

	held, err := replay.Reserve(context.Background(), "caja-8", time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	res := env.do(t, http.MethodPost, "/api/ventas", `{"producto_id":1,"cantidad":1}`, idempotencyHeader, "caja-8")
	assert.Equal(t, http.StatusConflict, res.Code, res.Body.String())
	assert.Contains(t, decodeBody[map[string]any](t, res)["error"], "en proceso")

	res = env.do(t, http.MethodGet, "/api/ventas", nil)
	assert.Empty(t, decodeBody[[]map[string]any](t, res))
}

func TestExpenseFlow(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/gastos", `{"concepto":"Leche","monto":5000,"descripcion":"Proveedor"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	created := decodeBody[map[string]any](t, res)
	assert.Equal(t, "2024-03-01", created["fecha_gasto"])
	id := int64(created["id"].(float64))

	res = env.do(t, http.MethodPut, fmt.Sprintf("/api/gastos/%d", id), `{"concepto":"Leche entera","monto":5500}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "Leche entera", decodeBody[map[string]any](t, res)["concepto"])

	res = env.do(t, http.MethodGet, "/api/gastos?fecha=2024-03-01", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, res), 1)

	res = env.do(t, http.MethodDelete, fmt.Sprintf("/api/gastos/%d", id), nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Gasto eliminado", decodeBody[map[string]any](t, res)["message"])

	res = env.do(t, http.MethodGet, "/api/gastos", nil)
	assert.Empty(t, decodeBody[[]map[string]any](t, res))

	res = env.do(t, http.MethodPost, "/api/gastos", `{"monto":10}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/api/inventario", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.do(t, http.MethodPatch, "/api/ventas/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	assert.True(t, strings.HasPrefix(res.Header().Get("Content-Type"), "application/json"))
}
