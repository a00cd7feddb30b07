package utils

import (
	"fmt"
	"time"
)

// Instante de referência do relógio monotônico do processo
var monotonicStart = time.Now()

// MonotonicMillis retorna milissegundos decorridos desde o início do
// processo, usando o relógio monotônico. Usado para carimbar amostras
// e medir dt entre ciclos sem sofrer com ajustes do relógio de parede.
func MonotonicMillis() int64 {
	return time.Since(monotonicStart).Milliseconds()
}

// FormatDuration formata uma duração para exibição amigável
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour

	m := d / time.Minute
	d -= m * time.Minute

	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatTimestamp formata um timestamp em milissegundos para exibição
func FormatTimestamp(timestamp int64) string {
	t := time.Unix(0, timestamp*int64(time.Millisecond))
	return t.Format("2006-01-02 15:04:05")
}

// FormatDateTimeMs formata um time.Time para exibição com milissegundos
func FormatDateTimeMs(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}
