// Package command interpreta os comandos de texto livre do caminhão e os
// aplica ao estado compartilhado. O reconhecimento é por token inteiro,
// insensível a maiúsculas, com o prefixo "c_" opcional; tokens
// desconhecidos são ignorados sem derrubar a mensagem.
package command

import (
	"strconv"
	"strings"

	"caminhao_go/internal/state"
)

// Decoded é o efeito reconhecido em uma mensagem de comando
type Decoded struct {
	Manual     bool
	Automatico bool
	Rearme     bool

	HasAcelera  bool
	Acelera     bool
	HasDireita  bool
	Direita     bool
	HasEsquerda bool
	Esquerda    bool

	HasSetpoint bool
	SetpointX   int
	SetpointY   int
}

// FaultDirective é uma ordem de injeção de falha vinda da simulação
type FaultDirective struct {
	Eletrica   bool // alvo inclui a falha elétrica
	Hidraulica bool // alvo inclui a falha hidráulica
	Ativa      bool // nível a aplicar aos alvos
}

// aliases agrupa as grafias aceitas para cada família de comando
var aliases = map[string][]string{
	"manual":     {"man", "manual"},
	"automatico": {"auto", "automatico", "automatic"},
	"rearme":     {"rearme", "rearm"},
	"acelera":    {"acelera", "accelerate"},
	"direita":    {"direita", "right"},
	"esquerda":   {"esquerda", "left"},
}

// tokens liga/desliga aceitos no corpo da mensagem
var onTokens = map[string]bool{"on": true, "true": true, "1": true}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// tokenize quebra o texto em tokens minúsculos de [a-z0-9_]
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_'
	})
}

// Parse reconhece os comandos presentes no texto. Mensagens sem nenhum
// token conhecido retornam um Decoded vazio.
func Parse(text string) Decoded {
	var d Decoded

	seen := make(map[string]bool)
	on := false
	for _, tok := range tokenize(text) {
		tok = strings.TrimPrefix(tok, "c_")
		seen[tok] = true
		if onTokens[tok] {
			on = true
		}
	}

	has := func(family string) bool {
		for _, name := range aliases[family] {
			if seen[name] {
				return true
			}
		}
		return false
	}

	if has("manual") {
		d.Manual = true
	}
	if has("automatico") {
		d.Automatico = true
	}
	if has("rearme") {
		d.Rearme = true
	}
	if has("acelera") {
		d.HasAcelera = true
		d.Acelera = on
	}
	if has("direita") {
		d.HasDireita = true
		d.Direita = on
	}
	if has("esquerda") {
		d.HasEsquerda = true
		d.Esquerda = on
	}

	// Um setpoint é qualquer mensagem com x e y extraíveis, com ou sem a
	// palavra "setpoint" por perto
	if x, okX := ExtractInt(text, "x"); okX {
		if y, okY := ExtractInt(text, "y"); okY {
			d.HasSetpoint = true
			d.SetpointX = x
			d.SetpointY = y
		}
	}

	return d
}

// Empty indica que nenhum comando foi reconhecido
func (d Decoded) Empty() bool {
	return !d.Manual && !d.Automatico && !d.Rearme &&
		!d.HasAcelera && !d.HasDireita && !d.HasEsquerda && !d.HasSetpoint
}

// Apply grava os efeitos do comando no estado compartilhado. A ordem
// importa: um pedido de manual seguido de automático na mesma mensagem
// termina em modo automático.
func (d Decoded) Apply(st *state.VehicleState) {
	if d.Manual {
		st.SetCmdManual(true)
		st.SetAutomatico(false)
	}
	if d.Automatico {
		st.SetCmdAutomatico(true)
		st.SetAutomatico(true)
	}
	if d.Rearme {
		st.Rearm()
	}
	if d.HasAcelera {
		st.SetCmdAcelera(d.Acelera)
	}
	if d.HasDireita {
		st.SetCmdDireita(d.Direita)
	}
	if d.HasEsquerda {
		st.SetCmdEsquerda(d.Esquerda)
	}
}

// ParseFaultDirective interpreta o payload do tópico de injeção de
// falhas. Aceita os alvos "eletrica", "hidraulica" e "all"; o nível fica
// desligado quando o payload contém "0", "clear" ou "false".
func ParseFaultDirective(payload string) (FaultDirective, bool) {
	p := strings.ToLower(payload)

	var d FaultDirective
	if strings.Contains(p, "eletrica") {
		d.Eletrica = true
	}
	if strings.Contains(p, "hidraulica") {
		d.Hidraulica = true
	}
	if strings.Contains(p, "all") {
		d.Eletrica = true
		d.Hidraulica = true
	}
	if !d.Eletrica && !d.Hidraulica {
		return FaultDirective{}, false
	}

	d.Ativa = true
	if strings.Contains(p, "0") || strings.Contains(p, "clear") || strings.Contains(p, "false") {
		d.Ativa = false
	}
	return d, true
}

// ExtractInt procura um argumento inteiro no texto, aceitando as formas
// "chave=123", "chave: 123" e "\"chave\":123", com sinal opcional
func ExtractInt(text, key string) (int, bool) {
	lower := strings.ToLower(text)
	key = strings.ToLower(key)

	for start := 0; ; {
		idx := strings.Index(lower[start:], key)
		if idx < 0 {
			return 0, false
		}
		idx += start
		start = idx + 1

		// A chave não pode estar no meio de outra palavra
		if idx > 0 {
			prev := lower[idx-1]
			if prev == '_' || isAlnum(prev) {
				continue
			}
		}

		i := idx + len(key)
		if i < len(lower) && lower[i] == '"' {
			i++
		}
		for i < len(lower) && lower[i] == ' ' {
			i++
		}
		if i >= len(lower) || (lower[i] != '=' && lower[i] != ':') {
			continue
		}
		i++
		for i < len(lower) && lower[i] == ' ' {
			i++
		}

		j := i
		if j < len(lower) && (lower[j] == '+' || lower[j] == '-') {
			j++
		}
		end := j
		for end < len(lower) && lower[end] >= '0' && lower[end] <= '9' {
			end++
		}
		if end == j {
			continue
		}

		val, err := strconv.Atoi(lower[i:end])
		if err != nil {
			continue
		}
		return val, true
	}
}
