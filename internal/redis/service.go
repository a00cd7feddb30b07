package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/pkg/logger"
)

const (
	// Tamanho máximo dos históricos mantidos nos conjuntos ordenados
	maxHistorySize = 1000
	maxEventSize   = 200

	writeTimeout = 2 * time.Second
)

// Service grava o estado consolidado do caminhão no Redis: o último
// status em chave simples e os históricos de status e de eventos de
// falha em conjuntos ordenados pontuados pelo timestamp da amostra.
type Service struct {
	client *Client
	config config.RedisConfig
}

// NewService cria o serviço de persistência. Indisponibilidade do Redis
// não é erro fatal: o serviço opera em modo offline e revalida a
// conexão a cada operação.
func NewService(cfg config.RedisConfig) (*Service, error) {
	service := &Service{
		client: NewClient(cfg),
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Serviço Redis desabilitado por configuração")
		return service, nil
	}

	if err := service.client.Connect(); err != nil {
		logger.Warnf("Aviso: %v. O Redis será utilizado em modo offline.", err)
	}

	return service, nil
}

// IsConnected informa se o Redis está disponível
func (s *Service) IsConnected() bool {
	return s.client.IsConnected()
}

func statusKey(truckID int) string {
	return fmt.Sprintf("truck:%d:status", truckID)
}

func historyKey(truckID int) string {
	return fmt.Sprintf("truck:%d:history", truckID)
}

func eventsKey(truckID int) string {
	return fmt.Sprintf("truck:%d:events", truckID)
}

// WriteStatus grava o status mais recente do caminhão e acrescenta a
// amostra ao histórico, aparando o conjunto para os últimos
// maxHistorySize pontos. Sem conexão a escrita é descartada em silêncio.
func (s *Service) WriteStatus(status models.VehicleStatus) error {
	if !s.client.IsConnected() {
		return nil
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("erro ao serializar status: %w", err)
	}

	histKey := s.client.FormatKey(historyKey(status.TruckID))

	ctx, cancel := context.WithTimeout(s.client.GetContext(), writeTimeout)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.client.FormatKey(statusKey(status.TruckID)), payload, 0)
	pipe.ZAdd(ctx, histKey, &redis.Z{
		Score:  float64(status.Timestamp),
		Member: payload,
	})
	pipe.ZRemRangeByRank(ctx, histKey, 0, int64(-(maxHistorySize + 1)))

	if _, err := pipe.Exec(ctx); err != nil {
		s.client.markDisconnected()
		return fmt.Errorf("erro ao gravar status no Redis: %w", err)
	}

	return nil
}

// WriteEvent acrescenta um evento de falha ao histórico do caminhão
func (s *Service) WriteEvent(event models.ManagerFaultEvent) error {
	if !s.client.IsConnected() {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao serializar evento: %w", err)
	}

	key := eventsKey(event.TruckID)
	if err := s.client.ZAdd(key, float64(event.Timestamp), payload); err != nil {
		return fmt.Errorf("erro ao gravar evento no Redis: %w", err)
	}
	if _, err := s.client.ZRemRangeByRank(key, 0, int64(-(maxEventSize+1))); err != nil {
		return fmt.Errorf("erro ao aparar eventos no Redis: %w", err)
	}

	return nil
}

// GetStatus recupera o último status gravado do caminhão
func (s *Service) GetStatus(truckID int) (*models.VehicleStatus, error) {
	value, err := s.client.Get(statusKey(truckID))
	if err != nil {
		return nil, fmt.Errorf("erro ao ler status do Redis: %w", err)
	}

	var status models.VehicleStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		return nil, fmt.Errorf("erro ao decodificar status: %w", err)
	}

	return &status, nil
}

// GetHistory recupera as últimas count amostras de status, da mais
// recente para a mais antiga
func (s *Service) GetHistory(truckID int, count int64) ([]models.VehicleStatus, error) {
	if count <= 0 {
		count = 100
	}

	values, err := s.client.ZRevRange(historyKey(truckID), 0, count-1)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler histórico do Redis: %w", err)
	}

	history := make([]models.VehicleStatus, 0, len(values))
	for _, value := range values {
		var status models.VehicleStatus
		if err := json.Unmarshal([]byte(value), &status); err != nil {
			logger.Warnf("Entrada de histórico inválida ignorada: %v", err)
			continue
		}
		history = append(history, status)
	}

	return history, nil
}

// GetEvents recupera os últimos count eventos de falha do caminhão
func (s *Service) GetEvents(truckID int, count int64) ([]models.ManagerFaultEvent, error) {
	if count <= 0 {
		count = 50
	}

	values, err := s.client.ZRevRange(eventsKey(truckID), 0, count-1)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler eventos do Redis: %w", err)
	}

	events := make([]models.ManagerFaultEvent, 0, len(values))
	for _, value := range values {
		var event models.ManagerFaultEvent
		if err := json.Unmarshal([]byte(value), &event); err != nil {
			logger.Warnf("Evento inválido ignorado: %v", err)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// Shutdown encerra a conexão com o Redis
func (s *Service) Shutdown() {
	if err := s.client.Close(); err != nil {
		logger.Warnf("Erro ao fechar conexão com o Redis: %v", err)
	}
	logger.Info("Serviço Redis encerrado")
}
