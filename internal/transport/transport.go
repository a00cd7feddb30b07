// Package transport define a fronteira de mensagens do caminhão. Os
// workers publicam payloads por tópico e consomem mensagens recebidas por
// polling não bloqueante, sem saber se por trás existe um broker MQTT ou
// apenas filas em memória.
package transport

// Transport é o contrato usado por todos os workers
type Transport interface {
	// Subscribe registra interesse em um tópico. Mensagens de tópicos
	// não assinados são descartadas.
	Subscribe(topic string) error

	// Publish envia o payload para o tópico. Não bloqueia o ciclo do
	// worker além do necessário para enfileirar a mensagem.
	Publish(topic string, payload []byte) error

	// TryPop retira a mensagem mais antiga recebida no tópico, sem
	// bloquear. Retorna false quando não há mensagem.
	TryPop(topic string) ([]byte, bool)

	// Close encerra a conexão e libera as filas
	Close() error
}
