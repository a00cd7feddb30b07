package faults

import (
	"encoding/json"
	"strings"
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

func newFaultService() (*Service, *state.VehicleState, *transport.MemoryTransport, *buffer.BoundedBuffer[models.SensorSample]) {
	cfg := config.TruckConfig{
		ID:             5,
		BufferCapacity: 8,
		FaultPeriod:    5 * time.Millisecond,
	}
	vehicle := state.New()
	samples := buffer.New[models.SensorSample](cfg.BufferCapacity)
	tr := transport.NewMemoryTransport(cfg.BufferCapacity)
	return NewService(cfg, vehicle, samples, tr), vehicle, tr, samples
}

func tempSample(temp int, ts int64) models.SensorSample {
	return models.SensorSample{PosX: 100, PosY: 100, Temperatura: temp, Timestamp: ts}
}

func TestAlertFollowsTemperature(t *testing.T) {
	t.Parallel()
	svc, vehicle, tr, _ := newFaultService()
	topic := transport.TopicEventos(5)
	require.NoError(t, tr.Subscribe(topic))

	svc.evaluate(tempSample(100, 1))
	assert.True(t, vehicle.AlertaTemperatura())
	assert.False(t, vehicle.Defeito())

	_, ok := tr.TryPop(topic)
	assert.True(t, ok, "alerta deve gerar evento")

	// Abaixo do limiar o alerta limpa sozinho e nada é publicado
	svc.evaluate(tempSample(80, 2))
	assert.False(t, vehicle.AlertaTemperatura())

	_, ok = tr.TryPop(topic)
	assert.False(t, ok)
}

func TestDefectLatchesOnOverTemperature(t *testing.T) {
	t.Parallel()
	svc, vehicle, _, _ := newFaultService()

	svc.evaluate(tempSample(130, 1))
	assert.True(t, vehicle.Defeito())
	assert.True(t, vehicle.AlertaTemperatura())

	// Temperatura normal não desarma o defeito
	svc.evaluate(tempSample(60, 2))
	assert.True(t, vehicle.Defeito())
	assert.False(t, vehicle.AlertaTemperatura())
}

func TestDefectOnExternalFault(t *testing.T) {
	t.Parallel()
	svc, vehicle, tr, _ := newFaultService()
	topic := transport.TopicEventos(5)
	require.NoError(t, tr.Subscribe(topic))

	sample := tempSample(75, 1)
	sample.FalhaEletrica = true
	svc.evaluate(sample)

	assert.True(t, vehicle.Defeito())

	payload, ok := tr.TryPop(topic)
	require.True(t, ok)
	var event models.FaultEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, 1, event.FalhaEletrica)
	assert.Equal(t, 0, event.FalhaHidraulica)
	assert.Equal(t, 0, event.AlertaTemp)
}

func TestRearmClearsLatchedDefect(t *testing.T) {
	t.Parallel()
	svc, vehicle, _, _ := newFaultService()

	svc.evaluate(tempSample(130, 1))
	require.True(t, vehicle.Defeito())

	vehicle.Rearm()
	assert.False(t, vehicle.Defeito())

	svc.evaluate(tempSample(60, 2))
	assert.False(t, vehicle.Defeito())
}

func TestManagerCopyCarriesTruckID(t *testing.T) {
	t.Parallel()
	svc, _, tr, _ := newFaultService()
	require.NoError(t, tr.Subscribe(transport.TopicGerenteFalhas))

	svc.evaluate(tempSample(130, 9))

	payload, ok := tr.TryPop(transport.TopicGerenteFalhas)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(payload), `{"truck_id":5,`))

	var event models.ManagerFaultEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, 5, event.TruckID)
	assert.Equal(t, 1, event.DefeitoTemp)
	assert.Equal(t, int64(9), event.Timestamp)
}

func TestRunLoopConsumesBuffer(t *testing.T) {
	t.Parallel()
	svc, vehicle, _, samples := newFaultService()

	require.NoError(t, svc.Start())
	defer svc.Stop()

	samples.Push(tempSample(130, 1))

	require.Eventually(t, vehicle.Defeito, time.Second, 10*time.Millisecond)
}
