package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/models"
	"caminhao_go/pkg/logger"
)

// Hub gerencia todas as conexões WebSocket e a distribuição de mensagens
type Hub struct {
	// Identificador do caminhão anunciado aos clientes
	truckID int

	// Clientes registrados
	clients map[*Client]bool

	// Canal para registrar clientes
	register chan *Client

	// Canal para desregistrar clientes
	unregister chan *Client

	// Canal para mensagens de broadcast
	broadcast chan []byte

	// Comando recebido dos clientes
	commands chan models.ClientCommand

	// Fila de comandos do caminhão alimentada pelos clientes
	commandSink *buffer.BoundedBuffer[string]

	// Mutex para operações concorrentes no mapa de clientes
	mu sync.RWMutex

	// Timestamp da última amostra enviada (para evitar duplicação)
	lastSampleTs int64
	sampleLock   sync.Mutex

	// Estatísticas
	stats struct {
		totalMessages      int64
		totalClients       int64
		messagesPerSecond  float64
		lastStatsReset     time.Time
		messagesSinceReset int64
	}
	statsLock sync.Mutex

	// Sinal para encerramento do hub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub cria uma nova instância do Hub. Comandos recebidos dos clientes
// são empurrados para commandSink, a mesma fila alimentada pelo broker.
func NewHub(truckID int, commandSink *buffer.BoundedBuffer[string]) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		truckID:     truckID,
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 256),
		commands:    make(chan models.ClientCommand, 100),
		commandSink: commandSink,
		ctx:         ctx,
		cancel:      cancel,
	}

	h.stats.lastStatsReset = time.Now()

	return h
}

// Run inicia o loop principal do hub para gerenciar clientes e mensagens
func (h *Hub) Run() {
	logger.Info("Iniciando WebSocket Hub")

	// Ticker para estatísticas periódicas
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	// Ticker para manter as conexões ativas
	keepAliveTicker := time.NewTicker(5 * time.Second)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			// Contexto cancelado, encerrar o hub
			logger.Info("Encerrando WebSocket Hub")
			h.closeAllClients()
			return

		case client := <-h.register:
			// Registrar novo cliente
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()

			logger.Infof("Novo cliente WebSocket conectado. ID: %s. Total: %d", client.id, clientCount)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalClients++
			h.statsLock.Unlock()

			// Enviar dados iniciais para o cliente
			go h.sendWelcome(client)

		case client := <-h.unregister:
			// Desregistrar cliente
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				logger.Infof("Cliente WebSocket desconectado. ID: %s. Total: %d", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Enviar mensagem para todos os clientes
			h.mu.RLock()
			clientCount := len(h.clients)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalMessages++
			h.stats.messagesSinceReset++
			h.statsLock.Unlock()

			if clientCount == 0 {
				h.mu.RUnlock()
				continue // Nenhum cliente conectado, pular broadcast
			}

			// Clientes com canal cheio são marcados para desconexão
			deadClients := make([]*Client, 0, 4)

			for client := range h.clients {
				select {
				case client.send <- message:
					// Mensagem enviada com sucesso
				default:
					// Canal do cliente está cheio, marcar para desconexão
					deadClients = append(deadClients, client)
				}
			}
			h.mu.RUnlock()

			// Lidar com clientes mortos fora do lock para evitar contenção
			for _, client := range deadClients {
				h.unregister <- client
			}

		case cmd := <-h.commands:
			// Processar comando de um cliente
			go h.handleClientCommand(cmd)

		case <-statsTicker.C:
			h.logStats()

		case <-keepAliveTicker.C:
			// Enviar ping para manter as conexões ativas
			h.sendPingToAllClients()
		}
	}
}

// BroadcastState envia o estado consolidado do caminhão para todos os
// clientes conectados
func (h *Hub) BroadcastState(status models.VehicleStatus) {
	if jsonMessage, err := SerializeMessage(NewStateMessage(status)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de estado", err)
	}
}

// BroadcastSample envia uma amostra filtrada dos sensores para todos os
// clientes. Amostras com o mesmo timestamp da anterior são ignoradas.
func (h *Hub) BroadcastSample(sample models.SensorSample) {
	h.sampleLock.Lock()
	if sample.Timestamp == h.lastSampleTs {
		h.sampleLock.Unlock()
		return
	}
	h.lastSampleTs = sample.Timestamp
	h.sampleLock.Unlock()

	if jsonMessage, err := SerializeMessage(NewSampleMessage(sample)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de amostra", err)
	}
}

// BroadcastEvent envia um evento de falha para todos os clientes
func (h *Hub) BroadcastEvent(event models.FaultEvent) {
	if jsonMessage, err := SerializeMessage(NewEventMessage(event)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de evento", err)
	}
}

// handleClientCommand encaminha o texto do comando para a fila consumida
// pelo interpretador de comandos
func (h *Hub) handleClientCommand(cmd models.ClientCommand) {
	logger.Infof("Comando recebido do cliente %s: %s", cmd.ClientID, cmd.Command)

	if h.commandSink != nil {
		h.commandSink.Push(cmd.Command)
	}

	h.sendCommandAck(cmd.ClientID, cmd.Command)
}

// sendCommandAck confirma ao cliente que o comando entrou na fila
func (h *Hub) sendCommandAck(clientID string, command string) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	ack := models.WebSocketMessage{
		Type:      "comando_aceito",
		Timestamp: time.Now(),
		Data:      map[string]string{"command": command},
	}

	if jsonMsg, err := SerializeMessage(ack); err == nil {
		select {
		case client.send <- jsonMsg:
		default:
		}
	}
}

// sendWelcome envia a mensagem inicial para um novo cliente
func (h *Hub) sendWelcome(client *Client) {
	welcome := models.WebSocketMessage{
		Type:      "welcome",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message":  fmt.Sprintf("Conectado ao caminhão autônomo %d", h.truckID),
			"clientId": client.id,
		},
	}

	if jsonMsg, err := SerializeMessage(welcome); err == nil {
		client.send <- jsonMsg
	}
}

// logStats registra as estatísticas do hub e reinicia a janela de medição
func (h *Hub) logStats() {
	h.statsLock.Lock()
	elapsed := time.Since(h.stats.lastStatsReset).Seconds()
	if elapsed > 0 {
		h.stats.messagesPerSecond = float64(h.stats.messagesSinceReset) / elapsed
	}

	h.stats.messagesSinceReset = 0
	h.stats.lastStatsReset = time.Now()

	mps := h.stats.messagesPerSecond
	total := h.stats.totalMessages
	h.statsLock.Unlock()

	h.mu.RLock()
	clientCount := len(h.clients)
	h.mu.RUnlock()

	logger.Infof("Estatísticas WebSocket: %d clientes, %.2f msgs/seg, total: %d mensagens",
		clientCount, mps, total)
}

// Shutdown encerra graciosamente o hub
func (h *Hub) Shutdown() {
	h.cancel()
	// Aguardar um pequeno tempo para processamento finalizar
	time.Sleep(100 * time.Millisecond)
}

// closeAllClients fecha todas as conexões dos clientes
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("Fechando todas as conexões de clientes WebSocket")
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// ClientCount retorna o número atual de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// getClientByID retorna um cliente pelo seu ID
func (h *Hub) getClientByID(clientID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id == clientID {
			return client
		}
	}
	return nil
}

// sendPingToAllClients envia ping para todos os clientes
func (h *Hub) sendPingToAllClients() {
	ping := models.PingMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "ping",
			Timestamp: time.Now(),
		},
		Time: time.Now().UnixNano() / int64(time.Millisecond),
	}

	if jsonMsg, err := SerializeMessage(ping); err == nil {
		h.mu.RLock()
		if len(h.clients) > 0 {
			h.broadcast <- jsonMsg
		}
		h.mu.RUnlock()
	}
}
