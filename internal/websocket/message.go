package websocket

import (
	"encoding/json"
	"time"

	"caminhao_go/internal/models"
)

// Funções utilitárias para criação e serialização de mensagens WebSocket

// NewStateMessage cria uma mensagem com o estado consolidado do caminhão
func NewStateMessage(status models.VehicleStatus) *models.StateMessage {
	return &models.StateMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "estado",
			Timestamp: time.Now(),
		},
		Status: status,
	}
}

// NewSampleMessage cria uma mensagem com uma amostra filtrada dos sensores
func NewSampleMessage(sample models.SensorSample) *models.SampleMessage {
	return &models.SampleMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "amostra",
			Timestamp: time.Now(),
		},
		X:    sample.PosX,
		Y:    sample.PosY,
		Ang:  sample.Angulo,
		Temp: sample.Temperatura,
		Ts:   sample.Timestamp,
	}
}

// NewEventMessage cria uma mensagem com um evento de falha
func NewEventMessage(event models.FaultEvent) *models.EventMessage {
	return &models.EventMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "evento",
			Timestamp: time.Now(),
		},
		FaultEvent: event,
	}
}

// NewErrorMessage cria uma mensagem de erro
func NewErrorMessage(message string, errorCode string) models.WebSocketMessage {
	return models.WebSocketMessage{
		Type:      "error",
		Timestamp: time.Now(),
		Error:     message,
		Data: map[string]string{
			"code": errorCode,
		},
	}
}

// SerializeMessage serializa uma mensagem para JSON
func SerializeMessage(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}

// ParseClientCommand analisa um comando recebido do cliente
func ParseClientCommand(data []byte) (models.CommandMessage, error) {
	var command models.CommandMessage
	err := json.Unmarshal(data, &command)
	return command, err
}

// CreatePongResponse cria a resposta para um ping do cliente
func CreatePongResponse(pingTime int64) *models.PongMessage {
	return &models.PongMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		},
		Time:       pingTime,
		ServerTime: time.Now().UnixNano() / int64(time.Millisecond),
	}
}
