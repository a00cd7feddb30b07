package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/route"
	"caminhao_go/internal/state"
	"caminhao_go/internal/telemetry"
	"caminhao_go/internal/transport"
)

func newTestHandler() (*Handler, *buffer.BoundedBuffer[string], *route.Manager) {
	cfg := config.TruckConfig{
		ID:             3,
		BufferCapacity: 8,
		ReachThreshold: 12.0,
	}
	commands := buffer.New[string](cfg.BufferCapacity)
	r := route.NewRoute()
	r.LoadFromString("10 20\n")
	manager := route.NewManager(cfg, r, transport.NewMemoryTransport(cfg.BufferCapacity))
	return NewHandler(3, nil, nil, commands, manager), commands, manager
}

func TestPostCommandRawBody(t *testing.T) {
	t.Parallel()
	h, commands, _ := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader("man"))
	h.PostCommand(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	text, ok := commands.TryPop()
	require.True(t, ok)
	assert.Equal(t, "man", text)
}

func TestPostCommandJSONBody(t *testing.T) {
	t.Parallel()
	h, commands, _ := newTestHandler()

	body := `{"type":"comando","command":"auto ligar"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader(body))
	h.PostCommand(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	text, ok := commands.TryPop()
	require.True(t, ok)
	assert.Equal(t, "auto ligar", text)
}

func TestPostCommandRejectsEmptyAndWrongMethod(t *testing.T) {
	t.Parallel()
	h, commands, _ := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader("   "))
	h.PostCommand(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/command", nil)
	h.PostCommand(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	_, ok := commands.TryPop()
	assert.False(t, ok)
}

func TestRouteGetServesActiveRoute(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/route", nil)
	h.HandleRoute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10 20 0\n", rec.Body.String())
}

func TestRoutePostReplacesRoute(t *testing.T) {
	t.Parallel()
	h, _, manager := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/route", strings.NewReader("5 6\n7 8 1.5\n"))
	h.HandleRoute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"waypoints":2}`, rec.Body.String())
	assert.Equal(t, "5 6 0\n7 8 1.5\n", manager.RouteText())
}

func TestRoutePostRejectsGarbage(t *testing.T) {
	t.Parallel()
	h, _, manager := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/route", strings.NewReader("nada valido\n"))
	h.HandleRoute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// A rota anterior permanece intacta
	assert.Equal(t, "10 20 0\n", manager.RouteText())
}

func TestStatusWithoutSourcesReturnsNotFound(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryWithoutRedisUnavailable(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	h.GetHistory(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	h.GetEvents(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusServedFromTelemetry(t *testing.T) {
	cfg := config.TruckConfig{
		ID:              3,
		BufferCapacity:  8,
		TelemetryPeriod: 5 * time.Millisecond,
	}
	vehicle := state.New()
	samples := buffer.New[models.SensorSample](cfg.BufferCapacity)
	commands := buffer.New[string](cfg.BufferCapacity)
	tr := transport.NewMemoryTransport(cfg.BufferCapacity)

	tel := telemetry.NewService(cfg, vehicle, samples, commands, tr, nil, nil, nil)
	require.NoError(t, tel.Start())
	defer tel.Stop()

	samples.Push(models.SensorSample{PosX: 42, PosY: 24, Timestamp: 100})
	require.Eventually(t, func() bool {
		_, ok := tel.LastStatus()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	h := NewHandler(3, tel, nil, commands, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	h.GetStatus(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"truck_id":3`)
	assert.Contains(t, rec.Body.String(), `"x":42`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/sample", nil)
	h.GetSample(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pos_x":42`)
}

func TestRouterServesEndpointsWithMiddleware(t *testing.T) {
	t.Parallel()
	cfg := config.TruckConfig{ID: 3, BufferCapacity: 8}
	commands := buffer.New[string](cfg.BufferCapacity)
	r := route.NewRoute()
	manager := route.NewManager(cfg, r, transport.NewMemoryTransport(cfg.BufferCapacity))

	router := NewRouter(3, nil, nil, commands, manager, "/api")
	router.Setup()

	srv := httptest.NewServer(router)
	defer srv.Close()

	// CORS preflight resolvido pelo middleware
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/status", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	// Sem status disponível a rota responde 404 com os cabeçalhos CORS
	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Post(srv.URL+"/api/command", "text/plain", strings.NewReader("rearme"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	text, ok := commands.TryPop()
	require.True(t, ok)
	assert.Equal(t, "rearme", text)
}

func TestRecoveryMiddlewareCatchesPanic(t *testing.T) {
	t.Parallel()

	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("explodiu")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/qualquer", nil)
	RecoveryMiddleware(boom).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCountParamClamped(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/history?count=5", nil)
	assert.EqualValues(t, 5, h.countParam(req))

	req = httptest.NewRequest(http.MethodGet, "/api/history?count=99999", nil)
	assert.EqualValues(t, maxHistoryCount, h.countParam(req))

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	assert.EqualValues(t, defaultHistoryCount, h.countParam(req))

	req = httptest.NewRequest(http.MethodGet, "/api/history?count=abc", nil)
	assert.EqualValues(t, defaultHistoryCount, h.countParam(req))
}
