package models

import "time"

// WebSocketMessage representa a estrutura base de todas as mensagens WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`            // Tipo da mensagem: "estado", "amostra", "evento", etc.
	Timestamp time.Time   `json:"timestamp"`       // Timestamp da mensagem
	Data      interface{} `json:"data,omitempty"`  // Dados adicionais específicos do tipo
	Error     string      `json:"error,omitempty"` // Mensagem de erro, se houver
}

// StateMessage é uma mensagem específica para o estado consolidado do caminhão
type StateMessage struct {
	WebSocketMessage
	Status VehicleStatus `json:"status"`
}

// SampleMessage é uma mensagem específica para amostras filtradas dos sensores
type SampleMessage struct {
	WebSocketMessage
	X    int   `json:"x"`
	Y    int   `json:"y"`
	Ang  int   `json:"ang"`
	Temp int   `json:"temp"`
	Ts   int64 `json:"ts"`
}

// EventMessage é uma mensagem específica para eventos de falha
type EventMessage struct {
	WebSocketMessage
	FaultEvent
}

// CommandMessage é uma mensagem de comando do cliente para o servidor
type CommandMessage struct {
	Type    string `json:"type"`              // Tipo de comando: "comando", "ping", etc.
	Command string `json:"command,omitempty"` // Texto livre do comando
	ID      string `json:"id,omitempty"`      // ID opcional para correlacionar solicitações/respostas
	Time    int64  `json:"time,omitempty"`    // Timestamp do ping em milissegundos
}

// ClientCommand representa um comando enviado pelo cliente
type ClientCommand struct {
	Command  string `json:"command"`
	ClientID string `json:"-"` // Usado internamente, não enviado no JSON
}

// PingMessage representa um ping enviado pelo cliente
type PingMessage struct {
	WebSocketMessage
	Time int64 `json:"time"` // Timestamp em milissegundos
}

// PongMessage representa um pong enviado pelo servidor
type PongMessage struct {
	WebSocketMessage
	Time       int64 `json:"time"`       // Timestamp original do ping
	ServerTime int64 `json:"serverTime"` // Timestamp do servidor em milissegundos
}
