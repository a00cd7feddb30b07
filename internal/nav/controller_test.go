package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/models"
	"caminhao_go/internal/sensors"
)

func navSample(x, y, ang int, ts int64) models.SensorSample {
	return models.SensorSample{PosX: x, PosY: y, Angulo: ang, Timestamp: ts}
}

func TestDefaultSetpoint(t *testing.T) {
	t.Parallel()
	c := NewController()

	x, y := c.Setpoint()
	assert.Equal(t, 500.0, x)
	assert.Equal(t, 500.0, y)
}

func TestManualAcceleratorRamp(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.ApplyManual(true, false, false)
	c.ApplyManual(true, false, false)
	accel, _ := c.Outputs()
	assert.Equal(t, 12, accel)

	// Solto, o acelerador decai mais devagar do que sobe
	c.ApplyManual(false, false, false)
	accel, _ = c.Outputs()
	assert.Equal(t, 9, accel)
}

func TestManualAcceleratorLimits(t *testing.T) {
	t.Parallel()
	c := NewController()

	for i := 0; i < 20; i++ {
		c.ApplyManual(true, false, false)
	}
	accel, _ := c.Outputs()
	assert.Equal(t, 100, accel)

	for i := 0; i < 80; i++ {
		c.ApplyManual(false, false, false)
	}
	accel, _ = c.Outputs()
	assert.Equal(t, -100, accel)
}

func TestManualSteeringRamp(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.ApplyManual(false, true, false)
	c.ApplyManual(false, true, false)
	_, dir := c.Outputs()
	assert.Equal(t, -10, dir)

	c.ApplyManual(false, false, true)
	c.ApplyManual(false, false, true)
	_, dir = c.Outputs()
	assert.Equal(t, 0, dir)

	for i := 0; i < 40; i++ {
		c.ApplyManual(false, true, false)
	}
	_, dir = c.Outputs()
	assert.Equal(t, -180, dir)
}

func TestManualTracksSetpointToPosition(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.Observe(navSample(123, 456, 0, 100))
	c.ApplyManual(false, false, false)

	x, y := c.Setpoint()
	assert.Equal(t, 123.0, x)
	assert.Equal(t, 456.0, y)
}

func TestFaultCutsAccelerationKeepsSteering(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.ApplyManual(true, true, false)
	c.ApplyManual(true, true, false)

	c.ApplyFault()

	accel, dir := c.Outputs()
	assert.Equal(t, 0, accel)
	assert.Equal(t, -10, dir)
}

func TestBumplessTransferSeedsIntegrator(t *testing.T) {
	t.Parallel()
	c := NewController()

	for i := 0; i < 5; i++ {
		c.ApplyManual(true, false, false)
	}
	accel, _ := c.Outputs()
	require.Equal(t, 30, accel)

	// Sem amostra o ciclo só recarrega o integrador
	c.ApplyAutomatic()
	assert.True(t, c.enabled)
	assert.InDelta(t, 3.0, c.integrator, 1e-9)

	accel, _ = c.Outputs()
	assert.Equal(t, 30, accel)
}

func TestHeadingWrapShortestPath(t *testing.T) {
	t.Parallel()
	c := NewController()

	// Destino a 10 graus de rumo, caminhão apontando para 350
	spX := 100.0 + 200.0*math.Cos(10.0*math.Pi/180.0)
	spY := 100.0 + 200.0*math.Sin(10.0*math.Pi/180.0)
	c.SetSetpoint(spX, spY)
	c.Observe(navSample(100, 100, 350, 100))

	c.ApplyAutomatic()

	accel, dir := c.Outputs()
	assert.Equal(t, 12, dir, "o giro deve cruzar o zero, não dar a volta")
	assert.Equal(t, 81, accel)
}

func TestSteeringOutputWrapsFullCircle(t *testing.T) {
	t.Parallel()
	c := NewController()

	spX := 100.0 + 200.0*math.Cos(100.0*math.Pi/180.0)
	spY := 100.0 + 200.0*math.Sin(100.0*math.Pi/180.0)
	c.SetSetpoint(spX, spY)
	c.Observe(navSample(100, 100, 300, 100))

	c.ApplyAutomatic()

	_, dir := c.Outputs()
	assert.Equal(t, 116, dir)
}

func TestNearTargetHoldsHeading(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.Observe(navSample(500, 500, 123, 100))
	c.ApplyAutomatic()

	accel, dir := c.Outputs()
	assert.Equal(t, 123, dir)
	assert.Equal(t, 0, accel)
}

func TestSpeedEstimateFromConsecutiveSamples(t *testing.T) {
	t.Parallel()
	c := NewController()

	c.Observe(navSample(100, 100, 0, 1000))
	c.Observe(navSample(130, 140, 0, 2000))
	assert.InDelta(t, 50.0, c.estSpeed, 1e-9)

	// Intervalo nulo não recalcula a estimativa
	c.Observe(navSample(200, 200, 0, 2000))
	assert.InDelta(t, 50.0, c.estSpeed, 1e-9)
}

func TestIntegratorAntiWindup(t *testing.T) {
	t.Parallel()
	c := NewController()
	c.SetSetpoint(900, 900)

	// Caminhão parado longe do destino: o erro de velocidade satura o
	// integrador no limite
	ts := int64(100)
	for i := 0; i < 250; i++ {
		c.Observe(navSample(100, 100, 45, ts))
		c.ApplyAutomatic()
		ts += 100
	}

	assert.InDelta(t, 200.0, c.integrator, 1e-9)
	accel, _ := c.Outputs()
	assert.Equal(t, 100, accel)
}

func TestAutomaticSkipsWithoutFreshSample(t *testing.T) {
	t.Parallel()
	c := NewController()
	c.SetSetpoint(900, 900)

	c.Observe(navSample(100, 100, 45, 100))
	c.ApplyAutomatic()
	accel, dir := c.Outputs()
	intBefore := c.integrator

	// A mesma amostra não alimenta um segundo ciclo
	c.ApplyAutomatic()

	accelAfter, dirAfter := c.Outputs()
	assert.Equal(t, accel, accelAfter)
	assert.Equal(t, dir, dirAfter)
	assert.InDelta(t, intBefore, c.integrator, 1e-9)
}

func TestClosedLoopReachesTarget(t *testing.T) {
	t.Parallel()
	dyn := sensors.NewDynamics(1)
	c := NewController()
	c.SetSetpoint(500, 500)

	ts := int64(0)
	for i := 0; i < 4000; i++ {
		accel, dir := c.Outputs()
		dyn.Step(accel, dir, 0.05)
		ts += 50
		c.Observe(dyn.Sample(ts))
		c.ApplyAutomatic()
	}

	dist := math.Hypot(500.0-dyn.PosX(), 500.0-dyn.PosY())
	assert.Less(t, dist, 50.0)
}
