package transport

import (
	"sync"

	"caminhao_go/internal/buffer"
)

// MemoryTransport implementa Transport com filas em memória, sem broker
// externo. Mensagens publicadas em tópicos assinados voltam pela própria
// fila, o que permite rodar o caminhão completo isolado e é a base dos
// testes de integração.
type MemoryTransport struct {
	mu       sync.RWMutex
	queues   map[string]*buffer.BoundedBuffer[[]byte]
	queueCap int
}

// NewMemoryTransport cria o transporte em memória com a capacidade de
// fila informada por tópico
func NewMemoryTransport(queueCap int) *MemoryTransport {
	if queueCap < 1 {
		queueCap = 1
	}
	return &MemoryTransport{
		queues:   make(map[string]*buffer.BoundedBuffer[[]byte]),
		queueCap: queueCap,
	}
}

// Subscribe cria a fila do tópico, se ainda não existir
func (m *MemoryTransport) Subscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[topic]; !ok {
		m.queues[topic] = buffer.New[[]byte](m.queueCap)
	}
	return nil
}

// Publish entrega o payload à fila do tópico. Tópicos sem assinante
// descartam a mensagem, como faria um broker.
func (m *MemoryTransport) Publish(topic string, payload []byte) error {
	m.mu.RLock()
	q := m.queues[topic]
	m.mu.RUnlock()

	if q != nil {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		q.Push(cp)
	}
	return nil
}

// TryPop retira a mensagem mais antiga do tópico, sem bloquear
func (m *MemoryTransport) TryPop(topic string) ([]byte, bool) {
	m.mu.RLock()
	q := m.queues[topic]
	m.mu.RUnlock()

	if q == nil {
		return nil, false
	}
	return q.TryPop()
}

// Close limpa todas as filas
func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range m.queues {
		q.Clear()
	}
	return nil
}
