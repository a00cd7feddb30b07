package models

// VehicleStatus consolida a visão completa do caminhão para a API REST,
// o Redis e o WebSocket. É montado pela telemetria a partir da última
// amostra filtrada e do estado compartilhado.
type VehicleStatus struct {
	TruckID         int    `json:"truck_id"`
	Timestamp       int64  `json:"ts"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Ang             int    `json:"ang"`
	Temp            int    `json:"temp"`
	Aceleracao      int    `json:"aceleracao"`
	Direcao         int    `json:"direcao"`
	SetpointX       int    `json:"setpoint_x"`
	SetpointY       int    `json:"setpoint_y"`
	Automatico      bool   `json:"automatico"`
	Defeito         bool   `json:"defeito"`
	AlertaTemp      bool   `json:"alerta_temp"`
	FalhaEletrica   bool   `json:"falha_eletrica"`
	FalhaHidraulica bool   `json:"falha_hidraulica"`
	Descricao       string `json:"descricao"`
}
