package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ClampInt(5, -10, 10))
	assert.Equal(t, 10, ClampInt(15, -10, 10))
	assert.Equal(t, -10, ClampInt(-15, -10, 10))
}

func TestClampFloat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.5, ClampFloat(0.5, 0, 1))
	assert.Equal(t, 1.0, ClampFloat(2.5, 0, 1))
	assert.Equal(t, 0.0, ClampFloat(-2.5, 0, 1))
}

func TestNormalize360(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 10.0, Normalize360(370.0), 1e-9)
	assert.InDelta(t, 350.0, Normalize360(-10.0), 1e-9)
	assert.InDelta(t, 0.0, Normalize360(720.0), 1e-9)
}

func TestWrapAngle180(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, -170.0, WrapAngle180(190.0), 1e-9)
	assert.InDelta(t, 170.0, WrapAngle180(-190.0), 1e-9)
	assert.InDelta(t, 180.0, WrapAngle180(180.0), 1e-9)

	// O limite negativo dobra para o lado positivo
	assert.InDelta(t, 180.0, WrapAngle180(-180.0), 1e-9)
}

func TestBoolToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, BoolToInt(true))
	assert.Equal(t, 0, BoolToInt(false))
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.5", FormatFloat(1.5, 2))
	assert.Equal(t, "10", FormatFloat(10.0, 3))
	assert.Equal(t, "0.25", FormatFloat(0.25, 4))
}
