package transport

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/pkg/logger"
)

// MQTTTransport implementa Transport sobre um broker MQTT usando o
// cliente Paho. Cada tópico assinado alimenta uma fila limitada própria;
// quando a fila enche, a mensagem mais antiga é descartada para que o
// consumidor veja sempre as mais recentes.
type MQTTTransport struct {
	client   mqtt.Client
	mu       sync.RWMutex
	queues   map[string]*buffer.BoundedBuffer[[]byte]
	queueCap int

	connected bool
}

// NewMQTTTransport conecta ao broker e retorna o transporte pronto para
// uso. A conexão usa reconexão automática; assinaturas são refeitas a
// cada reconexão.
func NewMQTTTransport(cfg config.MQTTConfig, clientID string, queueCap int) (*MQTTTransport, error) {
	if queueCap < 1 {
		queueCap = 1
	}

	t := &MQTTTransport{
		queues:   make(map[string]*buffer.BoundedBuffer[[]byte]),
		queueCap: queueCap,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL())
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(c mqtt.Client) {
		t.mu.Lock()
		t.connected = true
		topics := make([]string, 0, len(t.queues))
		for topic := range t.queues {
			topics = append(topics, topic)
		}
		t.mu.Unlock()

		logger.Infof("Conectado ao broker MQTT em %s", cfg.BrokerURL())

		// Refazer assinaturas perdidas na reconexão
		for _, topic := range topics {
			if err := t.subscribeRemote(topic); err != nil {
				logger.Errorf("Erro ao reassinar tópico %s: %v", topic, err)
			}
		}
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		logger.Warnf("Conexão MQTT perdida: %v. Reconexão automática em andamento", err)
	}

	t.client = mqtt.NewClient(opts)

	logger.Infof("Conectando ao broker MQTT em %s (cliente %s)", cfg.BrokerURL(), clientID)
	token := t.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("tempo esgotado ao conectar ao broker %s", cfg.BrokerURL())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("erro ao conectar ao broker: %w", err)
	}

	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()

	return t, nil
}

// IsConnected informa se há conexão ativa com o broker
func (t *MQTTTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// Subscribe registra a fila local e assina o tópico no broker
func (t *MQTTTransport) Subscribe(topic string) error {
	t.mu.Lock()
	if _, ok := t.queues[topic]; !ok {
		t.queues[topic] = buffer.New[[]byte](t.queueCap)
	}
	t.mu.Unlock()

	return t.subscribeRemote(topic)
}

func (t *MQTTTransport) subscribeRemote(topic string) error {
	token := t.client.Subscribe(topic, 0, t.messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("tempo esgotado ao assinar %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("erro ao assinar %s: %w", topic, err)
	}

	logger.Debugf("Tópico assinado: %s", topic)
	return nil
}

// messageHandler entrega a mensagem recebida à fila do tópico
func (t *MQTTTransport) messageHandler(client mqtt.Client, msg mqtt.Message) {
	t.mu.RLock()
	q := t.queues[msg.Topic()]
	t.mu.RUnlock()

	if q == nil {
		return
	}

	payload := make([]byte, len(msg.Payload()))
	copy(payload, msg.Payload())
	q.Push(payload)
}

// Publish envia o payload para o tópico com QoS 0
func (t *MQTTTransport) Publish(topic string, payload []byte) error {
	if !t.IsConnected() {
		return fmt.Errorf("broker MQTT desconectado")
	}

	token := t.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("tempo esgotado ao publicar em %s", topic)
	}
	return token.Error()
}

// TryPop retira a mensagem mais antiga recebida no tópico
func (t *MQTTTransport) TryPop(topic string) ([]byte, bool) {
	t.mu.RLock()
	q := t.queues[topic]
	t.mu.RUnlock()

	if q == nil {
		return nil, false
	}
	return q.TryPop()
}

// Close encerra a conexão com o broker
func (t *MQTTTransport) Close() error {
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
		logger.Info("Conexão MQTT encerrada")
	}

	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()

	return nil
}
