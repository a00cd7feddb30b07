package plc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/transport"
)

func TestDecodeButtonsRisingEdges(t *testing.T) {
	t.Parallel()

	curr := byte(1<<bitManual | 1<<bitRearme)
	cmds, sendSetpoint := decodeButtons(0, curr)
	assert.Equal(t, []string{"man", "rearme"}, cmds)
	assert.False(t, sendSetpoint)

	// Botão mantido pressionado não repete o comando
	cmds, _ = decodeButtons(curr, curr)
	assert.Empty(t, cmds)
}

func TestDecodeButtonsHoldLevels(t *testing.T) {
	t.Parallel()

	pressed := byte(1 << bitAcelera)
	cmds, _ := decodeButtons(0, pressed)
	assert.Equal(t, []string{"acelera on"}, cmds)

	cmds, _ = decodeButtons(pressed, 0)
	assert.Equal(t, []string{"acelera off"}, cmds)

	both := byte(1<<bitDireita | 1<<bitEsquerda)
	cmds, _ = decodeButtons(0, both)
	assert.Equal(t, []string{"direita on", "esquerda on"}, cmds)
}

func TestDecodeButtonsSetpointEdge(t *testing.T) {
	t.Parallel()

	curr := byte(1 << bitEnviarSetpoint)
	cmds, sendSetpoint := decodeButtons(0, curr)
	assert.Empty(t, cmds)
	assert.True(t, sendSetpoint)

	// Borda já consumida
	_, sendSetpoint = decodeButtons(curr, curr)
	assert.False(t, sendSetpoint)
}

func TestBuildWriteback(t *testing.T) {
	t.Parallel()

	report := models.StateReport{
		X:               258,
		Y:               -2,
		Ang:             359,
		Temp:            70,
		Aceleracao:      -100,
		Direcao:         180,
		Automatico:      1,
		FalhaHidraulica: 1,
	}

	data := buildWriteback(report, 7)
	require.Len(t, data, writebackSize)

	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x02}, data[0:4])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFE}, data[4:8])
	assert.Equal(t, []byte{0x01, 0x67}, data[8:10])
	assert.Equal(t, []byte{0x00, 0x46}, data[10:12])
	assert.Equal(t, []byte{0xFF, 0x9C}, data[12:14])
	assert.Equal(t, []byte{0x00, 0xB4}, data[14:16])
	assert.Equal(t, byte(0b1001), data[16])
	assert.Equal(t, byte(7), data[17])
}

func TestPanelDisabledStart(t *testing.T) {
	t.Parallel()

	cfg := config.PLCConfig{Enabled: false}
	commands := buffer.New[string](4)
	svc := NewPanelService(cfg, 1, commands, transport.NewMemoryTransport(4))

	require.NoError(t, svc.Start())
	assert.False(t, svc.IsRunning())
	svc.Stop()
}
