package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/config"
	"caminhao_go/internal/transport"
)

func newTestManager(routeText string) (*Manager, *transport.MemoryTransport) {
	cfg := config.TruckConfig{
		ID:                   4,
		BufferCapacity:       16,
		RoutePublishInterval: 500 * time.Millisecond,
		ReachThreshold:       12.0,
	}
	r := NewRoute()
	r.LoadFromString(routeText)
	tr := transport.NewMemoryTransport(cfg.BufferCapacity)
	return NewManager(cfg, r, tr), tr
}

func TestStartAnnouncesRouteAndSetpoint(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n300 400\n")
	require.NoError(t, tr.Subscribe(transport.TopicSetpoints(4)))
	require.NoError(t, tr.Subscribe(transport.TopicRoute(4)))

	require.NoError(t, m.Start())
	defer m.Stop()

	payload, ok := tr.TryPop(transport.TopicSetpoints(4))
	require.True(t, ok)
	assert.Equal(t, "x=100,y=200", string(payload))

	payload, ok = tr.TryPop(transport.TopicRoute(4))
	require.True(t, ok)
	assert.Equal(t, "100 200 0\n300 400 0\n", string(payload))
}

func TestAdvanceOnProximity(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n300 400\n")
	require.NoError(t, tr.Subscribe(transport.TopicSetpoints(4)))
	require.NoError(t, tr.Subscribe(transport.TopicPosicao(4)))

	// Posição a menos de 12 do primeiro waypoint
	require.NoError(t, tr.Publish(transport.TopicPosicao(4), []byte(`{"x":102,"y":198,"ang":0}`)))
	m.processCycle()

	w, ok := m.CurrentWaypoint()
	require.True(t, ok)
	assert.Equal(t, 300.0, w.X)
	assert.Equal(t, 400.0, w.Y)

	payload, ok := tr.TryPop(transport.TopicSetpoints(4))
	require.True(t, ok)
	assert.Equal(t, "x=300,y=400", string(payload))
}

func TestFarPositionDoesNotAdvance(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n300 400\n")
	require.NoError(t, tr.Subscribe(transport.TopicPosicao(4)))

	require.NoError(t, tr.Publish(transport.TopicPosicao(4), []byte(`{"x":150,"y":250,"ang":0}`)))
	m.processCycle()

	w, ok := m.CurrentWaypoint()
	require.True(t, ok)
	assert.Equal(t, 100.0, w.X)
}

func TestHoldsLastWaypoint(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n")
	require.NoError(t, tr.Subscribe(transport.TopicPosicao(4)))

	require.NoError(t, tr.Publish(transport.TopicPosicao(4), []byte(`{"x":100,"y":200,"ang":0}`)))
	m.processCycle()

	w, ok := m.CurrentWaypoint()
	require.True(t, ok)
	assert.Equal(t, 100.0, w.X)
	assert.Equal(t, 200.0, w.Y)
}

func TestRouteTopicReplacesRoute(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n")
	require.NoError(t, tr.Subscribe(transport.TopicSetpoints(4)))
	require.NoError(t, tr.Subscribe(transport.TopicRoute(4)))

	require.NoError(t, tr.Publish(transport.TopicRoute(4), []byte("500 600\n700 800\n")))
	m.processCycle()

	w, ok := m.CurrentWaypoint()
	require.True(t, ok)
	assert.Equal(t, 500.0, w.X)

	// A troca é anunciada de volta no tópico de rota
	payload, ok := tr.TryPop(transport.TopicRoute(4))
	require.True(t, ok)
	assert.Equal(t, "500 600 0\n700 800 0\n", string(payload))

	// O eco do próprio anúncio não dispara nova troca nem reanúncio
	require.NoError(t, tr.Publish(transport.TopicRoute(4), payload))
	m.processCycle()

	w, ok = m.CurrentWaypoint()
	require.True(t, ok)
	assert.Equal(t, 500.0, w.X)
	assert.Equal(t, 2, m.route.Size())

	_, ok = tr.TryPop(transport.TopicRoute(4))
	assert.False(t, ok)
}

func TestEmptyRoutePublishesNothing(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("")
	require.NoError(t, tr.Subscribe(transport.TopicSetpoints(4)))

	m.processCycle()

	_, ok := tr.TryPop(transport.TopicSetpoints(4))
	assert.False(t, ok)
}

func TestPeriodicRepublish(t *testing.T) {
	t.Parallel()
	m, tr := newTestManager("100 200\n")
	require.NoError(t, tr.Subscribe(transport.TopicSetpoints(4)))

	m.processCycle()
	payload, ok := tr.TryPop(transport.TopicSetpoints(4))
	require.True(t, ok)
	assert.Equal(t, "x=100,y=200", string(payload))

	// Dentro do intervalo não republica
	m.processCycle()
	_, ok = tr.TryPop(transport.TopicSetpoints(4))
	assert.False(t, ok)
}
