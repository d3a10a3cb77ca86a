package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"jpt/internal/api/middleware"
	"jpt/internal/config"
	"jpt/internal/infrastructure/peer"
	"jpt/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	values [][]byte
	err    error
}

func (f *fakePublisher) SendMessage(_ context.Context, _, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, append([]byte(nil), value...))
	return nil
}

func testConfig(d config.Defaults, peerURL string) *config.Config {
	return &config.Config{
		App:      config.App{Name: d.Name},
		HTTP:     config.HTTP{Port: d.Port},
		Peer:     config.Peer{URL: peerURL},
		Identity: d.Identity,
	}
}

// newService builds a router the same way main does. pub may be nil.
func newService(cfg *config.Config, pub usecase.Publisher) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var produce *usecase.ProduceMessage
	if pub != nil {
		produce = usecase.NewProduceMessage(cfg.Identity.Sender, pub, logger)
	}

	h := NewHandlers(
		usecase.NewGetHealth(cfg),
		usecase.NewGenerateData(cfg),
		usecase.NewCallPeer(cfg, peer.NewClient(nil, time.Second)),
		produce,
		cfg.HTTP.StrictStatus,
	)
	return NewRouter(h, nil, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func TestHealthIgnoresPeer(t *testing.T) {
	cfg := testConfig(config.Service1, unreachableURL(t))
	rec, body := do(t, newService(cfg, nil), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service 1", body["service"])
	assert.Equal(t, "3501", body["port"])
	assert.Equal(t, cfg.Peer.URL, body["peerUrl"])
	assert.Equal(t, "Hello from Service 1!", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestDataShape(t *testing.T) {
	cfg := testConfig(config.Service2, "http://localhost:3501")
	rec, body := do(t, newService(cfg, nil), http.MethodGet, "/data", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "service2-random-data", body["dataType"])
	assert.NotEmpty(t, body["uuid"])
	n, ok := body["randomNumber"].(float64)
	require.True(t, ok)
	assert.True(t, n >= 0 && n < 1000)

	cfg = testConfig(config.Service1, "http://localhost:3502")
	_, body = do(t, newService(cfg, nil), http.MethodGet, "/data", "")
	_, hasUUID := body["uuid"]
	assert.False(t, hasUUID)
}

func TestCallReturnsPeerData(t *testing.T) {
	peerSrv := httptest.NewServer(newService(testConfig(config.Service2, "http://localhost:3501"), nil))
	defer peerSrv.Close()

	cfg := testConfig(config.Service1, peerSrv.URL)
	rec, body := do(t, newService(cfg, nil), http.MethodGet, "/call", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully called Service 2", body["message"])
	assert.Equal(t, peerSrv.URL+"/data", body["calledUrl"])

	peerResp, ok := body["peerResponse"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Service 2", peerResp["service"])
	assert.Equal(t, "service2-random-data", peerResp["dataType"])
	assert.NotContains(t, body, "error")
}

func TestCallUnreachablePeer(t *testing.T) {
	cfg := testConfig(config.Service1, unreachableURL(t))
	rec, body := do(t, newService(cfg, nil), http.MethodGet, "/call", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Failed to call Service 2", body["error"])
	assert.Equal(t, cfg.Peer.URL+"/data", body["attemptedUrl"])
	assert.Equal(t, "Service 1", body["service"])
	assert.NotEmpty(t, body["message"])
	assert.NotContains(t, body, "peerResponse")
}

func TestCallStrictStatus(t *testing.T) {
	cfg := testConfig(config.Service1, unreachableURL(t))
	cfg.HTTP.StrictStatus = true
	rec, body := do(t, newService(cfg, nil), http.MethodGet, "/call", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to call Service 2", body["error"])
}

func TestProduceMessage(t *testing.T) {
	pub := &fakePublisher{}
	h := newService(testConfig(config.Service1, "http://localhost:3502"), pub)

	for _, path := range []string{"/produce-message", "/produce-kafka-message"} {
		rec, body := do(t, h, http.MethodPost, path, `{"hello":"world","n":1}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, usecase.StatusSent, body["status"])

		sent, ok := body["sentData"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Service1", sent["from"])
		assert.Equal(t, map[string]any{"hello": "world", "n": float64(1)}, sent["receivedData"])
	}

	require.Len(t, pub.values, 2)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(pub.values[0], &msg))
	assert.Equal(t, "Service1", msg["from"])
	assert.Equal(t, map[string]any{"hello": "world", "n": float64(1)}, msg["receivedData"])
}

func TestProduceMessageBadBody(t *testing.T) {
	pub := &fakePublisher{}
	h := newService(testConfig(config.Service1, "http://localhost:3502"), pub)

	for _, raw := range []string{"", "{", `{"a":1} trailing`} {
		req := httptest.NewRequest(http.MethodPost, "/produce-message", strings.NewReader(raw))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, usecase.StatusError, body["status"])
	}
	assert.Empty(t, pub.values)
}

func TestProduceMessagePublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no brokers")}
	cfg := testConfig(config.Service1, "http://localhost:3502")

	rec, body := do(t, newService(cfg, pub), http.MethodPost, "/produce-message", `{"a":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.StatusError, body["status"])
	assert.Equal(t, "no brokers", body["error"])

	cfg.HTTP.StrictStatus = true
	rec, _ = do(t, newService(cfg, pub), http.MethodPost, "/produce-message", `{"a":1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProduceRouteAbsentWithoutPublisher(t *testing.T) {
	h := newService(testConfig(config.Service2, "http://localhost:3501"), nil)

	req := httptest.NewRequest(http.MethodPost, "/produce-message", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	h := newService(testConfig(config.Service1, "http://localhost:3502"), &fakePublisher{})
	do(t, h, http.MethodPost, "/produce-message", `{"a":1}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "messages_published_total")
}

func TestIdempotentPublishRetriesAfterFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	cfg := testConfig(config.Service1, "http://localhost:3502")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &fakePublisher{err: errors.New("no brokers")}
	h := NewHandlers(
		usecase.NewGetHealth(cfg),
		usecase.NewGenerateData(cfg),
		usecase.NewCallPeer(cfg, peer.NewClient(nil, time.Second)),
		usecase.NewProduceMessage(cfg.Identity.Sender, pub, logger),
		cfg.HTTP.StrictStatus,
	)
	router := NewRouter(h, redisClient, logger)

	send := func() (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/produce-message", strings.NewReader(`{"a":1}`))
		req.Header.Set(middleware.IdempotencyHeader, "order-7")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	rec, body := send()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.StatusError, body["status"])
	assert.False(t, mr.Exists("idempotency:order-7"))

	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()

	rec, body = send()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.StatusSent, body["status"])
	require.Len(t, pub.values, 1)

	rec, _ = send()
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(middleware.HitHeader))
	assert.Len(t, pub.values, 1)
}
