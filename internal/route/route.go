// Package route guarda a rota do caminhão como uma lista de waypoints e
// acompanha o progresso, publicando o waypoint corrente como setpoint.
package route

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"caminhao_go/pkg/utils"
)

// Waypoint é um ponto da rota. A velocidade é opcional no arquivo e fica
// zero quando ausente.
type Waypoint struct {
	X     float64
	Y     float64
	Speed float64
}

// Route é uma sequência ordenada de waypoints
type Route struct {
	waypoints []Waypoint
}

// NewRoute cria uma rota vazia
func NewRoute() *Route {
	return &Route{}
}

// Add acrescenta um waypoint ao fim da rota
func (r *Route) Add(w Waypoint) {
	r.waypoints = append(r.waypoints, w)
}

// Size retorna o número de waypoints
func (r *Route) Size() int {
	return len(r.waypoints)
}

// At retorna o waypoint na posição dada
func (r *Route) At(i int) (Waypoint, bool) {
	if i < 0 || i >= len(r.waypoints) {
		return Waypoint{}, false
	}
	return r.waypoints[i], true
}

// Clear descarta todos os waypoints
func (r *Route) Clear() {
	r.waypoints = r.waypoints[:0]
}

// LoadFromString substitui a rota pelo texto dado, uma linha por
// waypoint no formato "x y [velocidade]". Linhas em branco, comentários
// com '#' e linhas inválidas são puladas. Retorna quantos waypoints
// foram carregados.
func (r *Route) LoadFromString(text string) int {
	r.Clear()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			continue
		}

		w := Waypoint{X: x, Y: y}
		if len(fields) >= 3 {
			if speed, err := strconv.ParseFloat(fields[2], 64); err == nil {
				w.Speed = speed
			}
		}
		r.Add(w)
	}

	return len(r.waypoints)
}

// LoadFromFile carrega a rota de um arquivo texto
func (r *Route) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("erro ao ler arquivo de rota: %w", err)
	}
	r.LoadFromString(string(data))
	return nil
}

// SaveToFile grava a rota no formato texto
func (r *Route) SaveToFile(path string) error {
	if err := os.WriteFile(path, []byte(r.String()), 0644); err != nil {
		return fmt.Errorf("erro ao gravar arquivo de rota: %w", err)
	}
	return nil
}

// String serializa a rota no mesmo formato texto aceito pelo load
func (r *Route) String() string {
	var b strings.Builder
	for _, w := range r.waypoints {
		b.WriteString(utils.FormatFloat(w.X, 3))
		b.WriteString(" ")
		b.WriteString(utils.FormatFloat(w.Y, 3))
		b.WriteString(" ")
		b.WriteString(utils.FormatFloat(w.Speed, 3))
		b.WriteString("\n")
	}
	return b.String()
}
