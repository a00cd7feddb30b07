package transport

import "fmt"

// TopicGerenteFalhas recebe as cópias de eventos de falha de todos os
// caminhões da mina
const TopicGerenteFalhas = "/mina/gerente/falhas"

func truckTopic(truckID int, suffix string) string {
	return fmt.Sprintf("/mina/caminhoes/%d/%s", truckID, suffix)
}

// TopicSensores é o tópico de amostras filtradas dos sensores
func TopicSensores(truckID int) string { return truckTopic(truckID, "sensores") }

// TopicPosicao é o tópico de posição corrente
func TopicPosicao(truckID int) string { return truckTopic(truckID, "posicao") }

// TopicComandos é o tópico de comandos de texto livre
func TopicComandos(truckID int) string { return truckTopic(truckID, "comandos") }

// TopicSetpoints é o tópico de setpoints de navegação
func TopicSetpoints(truckID int) string { return truckTopic(truckID, "setpoints") }

// TopicAtuadores é o tópico das saídas de aceleração e direção
func TopicAtuadores(truckID int) string { return truckTopic(truckID, "atuadores") }

// TopicEventos é o tópico de eventos de falha
func TopicEventos(truckID int) string { return truckTopic(truckID, "eventos") }

// TopicEstado é o tópico do estado consolidado
func TopicEstado(truckID int) string { return truckTopic(truckID, "estado") }

// TopicLogs é o tópico de linhas de log de posição
func TopicLogs(truckID int) string { return truckTopic(truckID, "logs") }

// TopicRoute é o tópico da rota corrente em texto
func TopicRoute(truckID int) string { return truckTopic(truckID, "route") }

// TopicSimDefeito é o tópico de injeção de falhas da simulação
func TopicSimDefeito(truckID int) string { return truckTopic(truckID, "sim/defeito") }
