package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
  "customers": [{"id": "C1", "name": "Alice", "email": "alice@example.com"}],
  "products": [
    {"id": "P1", "name": "Desk lamp", "price_minor": 1000, "quantity": 5},
    {"id": "P2", "name": "Notebook", "price_minor": 250, "quantity": 20}
  ]
}`

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "app-test")
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	return path
}

func memoryConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.SeedFile = writeSeed(t)
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestNewServer_MemoryEndToEnd(t *testing.T) {
	srv, err := newServer(context.Background(), memoryConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(srv.close)

	assert.Nil(t, srv.worker, "worker must stay disabled without kafka brokers")

	rec := serve(t, srv.api, http.MethodPost, "/orders",
		`{"customer_id":"C1","products":[{"id":"P1","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, srv.api, http.MethodGet, "/products/P1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, float64(3), product["quantity"])

	pending, err := srv.storage.outbox.PullPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "order.created is not written without a broker")

	metricsRec := serve(t, srv.ops, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "shop_orders_created_total")
	assert.Contains(t, metricsRec.Body.String(), "shop_http_requests_total")

	assert.Equal(t, http.StatusOK, serve(t, srv.ops, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, srv.ops, http.MethodGet, "/livez", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, srv.ops, http.MethodGet, "/healthz", "").Code)
}

func TestNewServer_UnreachableRedisDegradesButStaysReady(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	srv, err := newServer(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(srv.close)

	rec := serve(t, srv.api, http.MethodPost, "/orders",
		`{"customer_id":"C1","products":[{"id":"P2","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	healthRec := serve(t, srv.ops, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, healthRec.Code)
	assert.Contains(t, healthRec.Body.String(), `"degraded"`)
	assert.Equal(t, http.StatusOK, serve(t, srv.ops, http.MethodGet, "/readyz", "").Code)
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "sqlite"

	_, err := newServer(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")
}

func TestNewServer_MissingSeedFile(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := newServer(context.Background(), cfg, quietLogger())
	require.Error(t, err)
}

func TestRun_MemoryGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, memoryConfig(t), quietLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.HTTPAddr = "127.0.0.1:99999"

	err := Run(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen api")
}

func TestInitStorage_PostgresRequiresDSN(t *testing.T) {
	_, err := initStorage(context.Background(), Config{StorageDriver: StorageDriverPostgres}, quietLogger())
	require.Error(t, err)
}

func TestInitStorage_PostgresSeeded(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("SHOP_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("SHOP_POSTGRES_TEST_DSN is not set")
	}

	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = dsn
	cfg.SeedFile = writeSeed(t)

	storage, err := initStorage(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.close() })

	require.NoError(t, storage.checker.Check(context.Background()))
	customer, err := storage.customers.FindByID(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", customer.Name)
}
