package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caminhao_go/internal/state"
)

func TestParseManualAliases(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"man", "manual", "c_man", "MAN"} {
		d := Parse(text)
		assert.True(t, d.Manual, "texto %q", text)
	}
}

func TestParseAutomaticAliases(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"auto", "automatico", "automatic", "c_automatico"} {
		d := Parse(text)
		assert.True(t, d.Automatico, "texto %q", text)
	}
}

func TestParseRearmAliases(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"rearme", "rearm", "c_rearme"} {
		d := Parse(text)
		assert.True(t, d.Rearme, "texto %q", text)
	}
}

func TestParseAcceleratorOnOff(t *testing.T) {
	t.Parallel()

	d := Parse("acelera on")
	assert.True(t, d.HasAcelera)
	assert.True(t, d.Acelera)

	d = Parse("c_acelera 1")
	assert.True(t, d.HasAcelera)
	assert.True(t, d.Acelera)

	d = Parse("acelera off")
	assert.True(t, d.HasAcelera)
	assert.False(t, d.Acelera)

	// Sem marcador de nível o comando vale como desligado
	d = Parse("acelera")
	assert.True(t, d.HasAcelera)
	assert.False(t, d.Acelera)
}

func TestParseBothSteeringFlags(t *testing.T) {
	t.Parallel()
	d := Parse("direita esquerda true")

	assert.True(t, d.HasDireita)
	assert.True(t, d.Direita)
	assert.True(t, d.HasEsquerda)
	assert.True(t, d.Esquerda)
}

func TestTokenBoundariesRespected(t *testing.T) {
	t.Parallel()

	// "comando" contém "man" mas não é um pedido de modo manual
	assert.True(t, Parse("comando").Empty())
	assert.True(t, Parse("command").Empty())
	assert.True(t, Parse("lixo qualquer").Empty())
}

func TestParseSetpoint(t *testing.T) {
	t.Parallel()

	d := Parse("setpoint x=100 y=200")
	require.True(t, d.HasSetpoint)
	assert.Equal(t, 100, d.SetpointX)
	assert.Equal(t, 200, d.SetpointY)

	d = Parse(`{"setpoint":1,"x":250,"y":-40}`)
	require.True(t, d.HasSetpoint)
	assert.Equal(t, 250, d.SetpointX)
	assert.Equal(t, -40, d.SetpointY)

	// "x=" e "y=" bastam; a palavra setpoint é opcional
	d = Parse("x=300,y=400")
	require.True(t, d.HasSetpoint)
	assert.Equal(t, 300, d.SetpointX)
	assert.Equal(t, 400, d.SetpointY)

	// Sem as duas coordenadas não há setpoint
	d = Parse("setpoint x=10")
	assert.False(t, d.HasSetpoint)
}

func TestExtractIntForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		key  string
		want int
		ok   bool
	}{
		{"x=123", "x", 123, true},
		{`"x":123`, "x", 123, true},
		{"x= 123", "x", 123, true},
		{"x = -5", "x", -5, true},
		{"y:+42", "y", 42, true},
		{"max=3", "x", 0, false},
		{"x2=5", "x", 0, false},
		{"sem nada", "x", 0, false},
	}
	for _, c := range cases {
		got, ok := ExtractInt(c.text, c.key)
		assert.Equal(t, c.ok, ok, "texto %q", c.text)
		if c.ok {
			assert.Equal(t, c.want, got, "texto %q", c.text)
		}
	}
}

func TestApplyEffects(t *testing.T) {
	t.Parallel()
	st := state.New()
	st.SetAutomatico(true)

	Parse("c_man on").Apply(st)
	assert.True(t, st.CmdManual())
	assert.False(t, st.Automatico())

	Parse("c_automatico").Apply(st)
	assert.True(t, st.CmdAutomatico())
	assert.True(t, st.Automatico())

	st.SetDefeito(true)
	Parse("rearme").Apply(st)
	assert.True(t, st.CmdRearme())
	assert.False(t, st.Defeito())

	Parse("acelera on direita on").Apply(st)
	assert.True(t, st.CmdAcelera())
	assert.True(t, st.CmdDireita())

	Parse("acelera off").Apply(st)
	assert.False(t, st.CmdAcelera())
}

func TestApplyManualThenAutomaticSameMessage(t *testing.T) {
	t.Parallel()
	st := state.New()

	Parse("man auto").Apply(st)

	// O pedido automático vence por vir depois na ordem de aplicação
	assert.True(t, st.Automatico())
	assert.True(t, st.CmdManual())
	assert.True(t, st.CmdAutomatico())
}

func TestParseFaultDirective(t *testing.T) {
	t.Parallel()

	d, ok := ParseFaultDirective("eletrica")
	require.True(t, ok)
	assert.True(t, d.Eletrica)
	assert.False(t, d.Hidraulica)
	assert.True(t, d.Ativa)

	d, ok = ParseFaultDirective("hidraulica false")
	require.True(t, ok)
	assert.True(t, d.Hidraulica)
	assert.False(t, d.Ativa)

	d, ok = ParseFaultDirective("all clear")
	require.True(t, ok)
	assert.True(t, d.Eletrica)
	assert.True(t, d.Hidraulica)
	assert.False(t, d.Ativa)

	_, ok = ParseFaultDirective("nada a ver")
	assert.False(t, ok)
}
