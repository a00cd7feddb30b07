package sensors

import "caminhao_go/internal/models"

// MovingAverageFilter suaviza as leituras com a média móvel das últimas
// N amostras. Enquanto a janela não enche, a média usa só o que há. A
// soma é acumulada em 64 bits e a divisão trunca; flags de falha e
// timestamp saem da leitura mais recente, sem filtragem.
type MovingAverageFilter struct {
	order  int
	window []models.SensorSample
}

// NewMovingAverageFilter cria o filtro com a ordem dada (mínimo 1)
func NewMovingAverageFilter(order int) *MovingAverageFilter {
	if order < 1 {
		order = 1
	}
	return &MovingAverageFilter{
		order:  order,
		window: make([]models.SensorSample, 0, order),
	}
}

// Add insere a leitura crua na janela e devolve a amostra filtrada
func (f *MovingAverageFilter) Add(raw models.SensorSample) models.SensorSample {
	f.window = append(f.window, raw)
	if len(f.window) > f.order {
		f.window = f.window[1:]
	}

	var sumX, sumY, sumAng, sumTemp int64
	for _, s := range f.window {
		sumX += int64(s.PosX)
		sumY += int64(s.PosY)
		sumAng += int64(s.Angulo)
		sumTemp += int64(s.Temperatura)
	}

	n := int64(len(f.window))
	out := raw
	out.PosX = int(sumX / n)
	out.PosY = int(sumY / n)
	out.Angulo = int(sumAng / n)
	out.Temperatura = int(sumTemp / n)
	return out
}

// Reset esvazia a janela
func (f *MovingAverageFilter) Reset() {
	f.window = f.window[:0]
}

// Order retorna a ordem configurada
func (f *MovingAverageFilter) Order() int { return f.order }

// Len retorna quantas amostras a janela contém
func (f *MovingAverageFilter) Len() int { return len(f.window) }
