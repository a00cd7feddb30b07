package models

// SensorSample é uma amostra dos sensores do caminhão. Os campos de
// posição, rumo e temperatura são inteiros; o timestamp é em
// milissegundos de relógio monotônico. As flags de falha são carimbadas
// pela fonte de sensores e preservadas pelo filtro.
type SensorSample struct {
	PosX            int   `json:"pos_x"`
	PosY            int   `json:"pos_y"`
	Angulo          int   `json:"ang"`
	Temperatura     int   `json:"temp"`
	Timestamp       int64 `json:"ts"`
	FalhaEletrica   bool  `json:"falha_ele"`
	FalhaHidraulica bool  `json:"falha_hid"`
}

// ToSensorReport converte a amostra para o payload do tópico de sensores
func (s SensorSample) ToSensorReport() SensorReport {
	return SensorReport{
		X:    s.PosX,
		Y:    s.PosY,
		Ang:  s.Angulo,
		Temp: s.Temperatura,
	}
}

// ToPositionReport converte a amostra para o payload do tópico de posição
func (s SensorSample) ToPositionReport() PositionReport {
	return PositionReport{
		X:   s.PosX,
		Y:   s.PosY,
		Ang: s.Angulo,
	}
}
