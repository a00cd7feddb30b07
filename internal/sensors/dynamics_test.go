package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialPose(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	assert.Equal(t, 100.0, d.PosX())
	assert.Equal(t, 100.0, d.PosY())
	assert.Equal(t, 0.0, d.Heading())
	assert.Equal(t, 0.0, d.Velocity())
}

func TestAccelerationIntegratesAndClamps(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	d.Step(100, 0, 1.0)
	assert.InDelta(t, 60.0, d.Velocity(), 1e-9)

	d.Step(100, 0, 1.0)
	assert.InDelta(t, 120.0, d.Velocity(), 1e-9)

	d.Step(100, 0, 1.0)
	assert.InDelta(t, 160.0, d.Velocity(), 1e-9)
}

func TestReverseVelocityClamped(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	d.Step(-100, 0, 1.0)
	assert.InDelta(t, -30.0, d.Velocity(), 1e-9)
}

func TestHeadingServoTowardSteering(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	// Erro de 45 graus gira a 81 graus/s
	d.Step(0, 45, 0.1)
	assert.InDelta(t, 8.1, d.Heading(), 1e-9)
}

func TestTurnRateClamped(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	d.Step(0, 180, 1.0)
	assert.InDelta(t, 90.0, d.Heading(), 1e-9)
}

func TestHeadingWrapsThroughNegative(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	d.Step(0, -120, 1.0)
	assert.InDelta(t, 270.0, d.Heading(), 1e-9)
}

func TestSteeringConvergesToTarget(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	for i := 0; i < 200; i++ {
		d.Step(0, 45, 0.05)
	}

	assert.InDelta(t, 45.0, d.Heading(), 0.5)
}

func TestPositionFollowsHeading(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	d.Step(10, 0, 1.0)

	assert.InDelta(t, 106.0, d.PosX(), 1e-9)
	assert.InDelta(t, 100.0, d.PosY(), 1e-9)
}

func TestWorldBoundsClampPosition(t *testing.T) {
	t.Parallel()
	d := NewDynamics(1)

	for i := 0; i < 6; i++ {
		d.Step(-100, 0, 1.0)
	}

	assert.Equal(t, 0.0, d.PosX())
}

func TestSampleDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	a := NewDynamics(42)
	b := NewDynamics(42)

	a.Step(50, 10, 0.05)
	b.Step(50, 10, 0.05)

	assert.Equal(t, a.Sample(100), b.Sample(100))
}

func TestSampleAngleWithinRange(t *testing.T) {
	t.Parallel()
	d := NewDynamics(7)

	for i := 0; i < 200; i++ {
		s := d.Sample(int64(i))
		assert.GreaterOrEqual(t, s.Angulo, 0)
		assert.LessOrEqual(t, s.Angulo, 359)
	}
}

func TestSampleCarriesTimestamp(t *testing.T) {
	t.Parallel()
	d := NewDynamics(3)

	s := d.Sample(12345)
	assert.Equal(t, int64(12345), s.Timestamp)
	assert.InDelta(t, 70.0, float64(s.Temperatura), 10.0)
}
