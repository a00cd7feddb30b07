package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/state"
	"caminhao_go/internal/transport"
)

func newTestService() (*Service, *state.VehicleState, *transport.MemoryTransport) {
	cfg := config.TruckConfig{
		ID:             7,
		BufferCapacity: 8,
		CommandPeriod:  5 * time.Millisecond,
	}
	vehicle := state.New()
	samples := buffer.New[models.SensorSample](cfg.BufferCapacity)
	commands := buffer.New[string](cfg.BufferCapacity)
	tr := transport.NewMemoryTransport(cfg.BufferCapacity)
	return NewService(cfg, vehicle, samples, commands, tr), vehicle, tr
}

func TestHandleCommandAppliesManual(t *testing.T) {
	t.Parallel()
	svc, vehicle, _ := newTestService()
	vehicle.SetAutomatico(true)

	svc.handleCommand("c_man on")

	assert.True(t, vehicle.CmdManual())
	assert.False(t, vehicle.Automatico())
}

func TestHandleCommandRepublishesSetpoint(t *testing.T) {
	t.Parallel()
	svc, _, tr := newTestService()
	topic := transport.TopicSetpoints(7)
	require.NoError(t, tr.Subscribe(topic))

	svc.handleCommand("setpoint x=100 y=200")

	payload, ok := tr.TryPop(topic)
	require.True(t, ok)
	assert.Equal(t, "x=100,y=200", string(payload))
}

func TestUnknownCommandLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	svc, vehicle, _ := newTestService()
	before := vehicle.Snapshot()

	svc.handleCommand("mensagem sem sentido")

	assert.Equal(t, before, vehicle.Snapshot())
}

func TestBrokerCommandPassesThroughBuffer(t *testing.T) {
	t.Parallel()
	svc, vehicle, tr := newTestService()
	topic := transport.TopicComandos(7)
	require.NoError(t, tr.Subscribe(topic))
	require.NoError(t, tr.Publish(topic, []byte("auto")))

	// Primeiro ciclo apenas move o comando do tópico para o buffer
	svc.samples.Push(models.SensorSample{})
	svc.processCycle()
	assert.False(t, vehicle.Automatico())
	assert.Equal(t, 1, svc.commands.Len())

	// No ciclo seguinte o comando sai do buffer e é aplicado
	svc.samples.Push(models.SensorSample{})
	svc.processCycle()
	assert.True(t, vehicle.Automatico())
	assert.True(t, vehicle.CmdAutomatico())
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())

	// Start repetido não tem efeito
	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())

	svc.Stop()
	assert.False(t, svc.IsRunning())
}
