package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClampInt limita um valor inteiro ao intervalo [min, max]
func ClampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampFloat limita um valor float64 ao intervalo [min, max]
func ClampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// BoolToInt converte um booleano para 0/1 (formato usado nos payloads)
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RoundToInt arredonda um float64 para o inteiro mais próximo
func RoundToInt(val float64) int {
	return int(math.Round(val))
}

// Normalize360 normaliza um ângulo em graus para o intervalo [0, 360)
func Normalize360(deg float64) float64 {
	m := math.Mod(deg, 360.0)
	if m < 0 {
		m += 360.0
	}
	return m
}

// WrapAngle180 normaliza um ângulo em graus para o intervalo (-180, 180]
func WrapAngle180(deg float64) float64 {
	for deg > 180.0 {
		deg -= 360.0
	}
	for deg <= -180.0 {
		deg += 360.0
	}
	return deg
}

// FormatFloat formata um float com precisão específica, removendo zeros à direita
func FormatFloat(value float64, precision int) string {
	format := "%." + strconv.Itoa(precision) + "f"
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf(format, value), "0"), ".")
}
