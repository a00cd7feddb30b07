package models

// SensorReport é o payload publicado no tópico de sensores
type SensorReport struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Ang  int `json:"ang"`
	Temp int `json:"temp"`
}

// PositionReport é o payload publicado no tópico de posição
type PositionReport struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Ang int `json:"ang"`
}

// ActuatorReport é o payload publicado no tópico de atuadores a cada
// ciclo de navegação. Aceleração em [-100, 100], direção em [-180, 180].
type ActuatorReport struct {
	Aceleracao int `json:"o_acel"`
	Direcao    int `json:"o_dir"`
	Automatico int `json:"e_automatico"`
	Defeito    int `json:"e_defeito"`
}

// FaultEvent é o payload publicado no tópico de eventos quando o monitor
// de falhas observa alguma condição anormal
type FaultEvent struct {
	Temp            int   `json:"temp"`
	AlertaTemp      int   `json:"alert_temp"`
	DefeitoTemp     int   `json:"defect_temp"`
	FalhaEletrica   int   `json:"falha_ele"`
	FalhaHidraulica int   `json:"falha_hid"`
	Timestamp       int64 `json:"ts"`
}

// ManagerFaultEvent é a cópia do evento enviada ao tópico do gerente da
// mina, com o identificador do caminhão à frente
type ManagerFaultEvent struct {
	TruckID int `json:"truck_id"`
	FaultEvent
}

// StateReport é o payload consolidado publicado no tópico de estado pela
// telemetria
type StateReport struct {
	Automatico      int `json:"automatico"`
	Defeito         int `json:"defeito"`
	Aceleracao      int `json:"aceleracao"`
	Direcao         int `json:"direcao"`
	X               int `json:"x"`
	Y               int `json:"y"`
	Ang             int `json:"ang"`
	Temp            int `json:"temp"`
	FalhaEletrica   int `json:"falha_elet"`
	FalhaHidraulica int `json:"falha_hidr"`
}
