// Package telemetry consolida a visão externa do caminhão: publica o
// estado e as linhas de log no transporte, alimenta os sinks de
// persistência e supervisão e mantém a entrada de comandos uniforme
// entre os transportes.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/command"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/nav"
	"caminhao_go/internal/redis"
	"caminhao_go/internal/state"
	"caminhao_go/internal/transport"
	"caminhao_go/internal/websocket"
	"caminhao_go/pkg/logger"
	"caminhao_go/pkg/utils"
)

// Service consome o buffer de amostras da telemetria e publica o estado
// consolidado a cada amostra nova. Os sinks (Redis, WebSocket) são
// opcionais e de melhor esforço.
type Service struct {
	cfg       config.TruckConfig
	vehicle   *state.VehicleState
	samples   *buffer.BoundedBuffer[models.SensorSample]
	commands  *buffer.BoundedBuffer[string]
	transport transport.Transport

	navigation *nav.Service
	store      *redis.Service
	hub        *websocket.Hub

	lastStatus  models.VehicleStatus
	lastSample  models.SensorSample
	haveStatus  bool
	statusMutex sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewService cria o coletor de telemetria. navigation, store e hub podem
// ser nil; os caminhos correspondentes ficam inativos.
func NewService(cfg config.TruckConfig, vehicle *state.VehicleState, samples *buffer.BoundedBuffer[models.SensorSample], commands *buffer.BoundedBuffer[string], tr transport.Transport, navigation *nav.Service, store *redis.Service, hub *websocket.Hub) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:        cfg,
		vehicle:    vehicle,
		samples:    samples,
		commands:   commands,
		transport:  tr,
		navigation: navigation,
		store:      store,
		hub:        hub,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start inicia o worker de telemetria
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	if err := s.transport.Subscribe(transport.TopicComandos(s.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de comandos: %w", err)
	}
	if err := s.transport.Subscribe(transport.TopicEventos(s.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de eventos: %w", err)
	}

	logger.Infof("Iniciando coletor de telemetria (caminhão %d)", s.cfg.ID)
	go s.run()

	s.running = true
	return nil
}

// Stop encerra o worker
func (s *Service) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return
	}

	logger.Info("Parando coletor de telemetria")
	s.cancel()
	s.running = false
}

// IsRunning verifica se o serviço está em execução
func (s *Service) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// LastStatus retorna o último status consolidado, se houver
func (s *Service) LastStatus() (models.VehicleStatus, bool) {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.lastStatus, s.haveStatus
}

// LastSample retorna a última amostra filtrada que gerou um status
func (s *Service) LastSample() (models.SensorSample, bool) {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.lastSample, s.haveStatus
}

func (s *Service) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.processCycle()
	}
}

// processCycle publica o estado quando chega amostra nova e drena os
// caminhos de entrada. O ritmo do ciclo vem do pop com timeout.
func (s *Service) processCycle() {
	if sample, ok := s.samples.PopWait(s.ctx, s.cfg.TelemetryPeriod); ok {
		s.report(sample)
	}

	s.pollCommands()
	s.pollEvents()
}

// report monta o status consolidado da amostra e o distribui
func (s *Service) report(sample models.SensorSample) {
	snap := s.vehicle.Snapshot()
	status := s.buildStatus(sample, snap)

	s.statusMutex.Lock()
	s.lastStatus = status
	s.lastSample = sample
	s.haveStatus = true
	s.statusMutex.Unlock()

	s.publishLogLine(status)
	s.publishState(status)

	if s.store != nil {
		if err := s.store.WriteStatus(status); err != nil {
			logger.Debugf("Status não gravado no Redis: %v", err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastState(status)
		s.hub.BroadcastSample(sample)
	}
}

// buildStatus combina a amostra com os flags e saídas correntes
func (s *Service) buildStatus(sample models.SensorSample, snap state.Snapshot) models.VehicleStatus {
	status := models.VehicleStatus{
		TruckID:         s.cfg.ID,
		Timestamp:       sample.Timestamp,
		X:               sample.PosX,
		Y:               sample.PosY,
		Ang:             sample.Angulo,
		Temp:            sample.Temperatura,
		Aceleracao:      snap.Aceleracao,
		Direcao:         snap.Direcao,
		Automatico:      snap.Automatico,
		Defeito:         snap.Defeito,
		AlertaTemp:      snap.AlertaTemperatura,
		FalhaEletrica:   snap.FalhaEletrica,
		FalhaHidraulica: snap.FalhaHidraulica,
		Descricao:       describe(snap),
	}
	if s.navigation != nil {
		status.SetpointX, status.SetpointY = s.navigation.Setpoint()
	}
	return status
}

// describe compõe a descrição das condições ativas. O alerta de
// temperatura tem precedência; sem condições a descrição é OK.
func describe(snap state.Snapshot) string {
	if snap.AlertaTemperatura {
		return "ALERTA_TEMP"
	}

	var b strings.Builder
	if snap.FalhaEletrica {
		b.WriteString("FALHA_ELETRICA;")
	}
	if snap.FalhaHidraulica {
		b.WriteString("FALHA_HIDRAULICA;")
	}
	if snap.Defeito {
		b.WriteString("DEFEITO_TEMPERATURA;")
	}
	if b.Len() == 0 {
		return "OK"
	}
	return b.String()
}

// publishLogLine envia a linha simplificada ts,caminhao,x,y,ang
func (s *Service) publishLogLine(status models.VehicleStatus) {
	line := fmt.Sprintf("%d,%d,%d,%d,%d",
		status.Timestamp, status.TruckID, status.X, status.Y, status.Ang)
	if err := s.transport.Publish(transport.TopicLogs(s.cfg.ID), []byte(line)); err != nil {
		logger.Errorf("Erro ao publicar linha de log: %v", err)
	}
}

// publishState envia o relatório consolidado ao tópico de estado
func (s *Service) publishState(status models.VehicleStatus) {
	report := models.StateReport{
		Automatico:      utils.BoolToInt(status.Automatico),
		Defeito:         utils.BoolToInt(status.Defeito),
		Aceleracao:      status.Aceleracao,
		Direcao:         status.Direcao,
		X:               status.X,
		Y:               status.Y,
		Ang:             status.Ang,
		Temp:            status.Temp,
		FalhaEletrica:   utils.BoolToInt(status.FalhaEletrica),
		FalhaHidraulica: utils.BoolToInt(status.FalhaHidraulica),
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.transport.Publish(transport.TopicEstado(s.cfg.ID), payload); err != nil {
		logger.Errorf("Erro ao publicar estado: %v", err)
	}
}

// pollCommands aplica imediatamente comandos chegados pelo tópico e os
// reencaminha para a fila compartilhada, para que a ingestão seja a
// mesma independentemente do transporte de origem
func (s *Service) pollCommands() {
	payload, ok := s.transport.TryPop(transport.TopicComandos(s.cfg.ID))
	if !ok {
		return
	}

	text := string(payload)
	if d := command.Parse(text); !d.Empty() {
		d.Apply(s.vehicle)
		logger.Debugf("Comando aplicado pela telemetria: %q", text)
	}

	if err := s.commands.PushWait(s.ctx, text); err != nil {
		logger.Warnf("Comando não reencaminhado: %v", err)
	}
}

// pollEvents repassa eventos de falha aos sinks
func (s *Service) pollEvents() {
	payload, ok := s.transport.TryPop(transport.TopicEventos(s.cfg.ID))
	if !ok {
		return
	}

	var event models.FaultEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warnf("Evento de falha ilegível: %v", err)
		return
	}

	if s.store != nil {
		if err := s.store.WriteEvent(models.ManagerFaultEvent{TruckID: s.cfg.ID, FaultEvent: event}); err != nil {
			logger.Debugf("Evento não gravado no Redis: %v", err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(event)
	}
}
