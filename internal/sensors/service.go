package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/command"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/state"
	"caminhao_go/internal/transport"
	"caminhao_go/pkg/logger"
	"caminhao_go/pkg/utils"
)

// Service simula os sensores do caminhão: integra a física com os
// comandos dos atuadores, aplica ruído e filtro, e distribui a amostra
// filtrada para os consumidores. A distribuição é bloqueante para que
// nenhum consumidor perca amostras.
type Service struct {
	cfg       config.TruckConfig
	vehicle   *state.VehicleState
	outputs   []*buffer.BoundedBuffer[models.SensorSample]
	transport transport.Transport

	dynamics *Dynamics
	filter   *MovingAverageFilter

	// Níveis de injeção de falha, persistentes entre ciclos
	injectEletrica   bool
	injectHidraulica bool

	lastMs     int64
	lastSentTs int64

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewService cria a fonte de sensores ligada aos buffers de saída
func NewService(cfg config.TruckConfig, vehicle *state.VehicleState, outputs []*buffer.BoundedBuffer[models.SensorSample], tr transport.Transport) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:       cfg,
		vehicle:   vehicle,
		outputs:   outputs,
		transport: tr,
		dynamics:  NewDynamics(time.Now().UnixNano()),
		filter:    NewMovingAverageFilter(cfg.FilterOrder),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start inicia o worker de sensores
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	if err := s.transport.Subscribe(transport.TopicSimDefeito(s.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de injeção de falhas: %w", err)
	}

	logger.Infof("Iniciando fonte de sensores (caminhão %d, filtro de ordem %d)", s.cfg.ID, s.filter.Order())
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

	logger.Info("Parando fonte de sensores")
	s.cancel()
	s.running = false
}

// IsRunning verifica se o serviço está em execução
func (s *Service) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

func (s *Service) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.tick(utils.MonotonicMillis())

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.cfg.SensorPeriod):
		}
	}
}

// tick executa um ciclo de amostragem no instante dado
func (s *Service) tick(nowMs int64) {
	s.pollFaultInjection()

	dt := float64(nowMs-s.lastMs) / 1000.0
	if s.lastMs == 0 || dt <= 0 {
		dt = s.cfg.SensorPeriod.Seconds()
	}
	s.lastMs = nowMs

	s.dynamics.Step(s.vehicle.Aceleracao(), s.vehicle.Direcao(), dt)

	raw := s.dynamics.Sample(nowMs)
	raw.FalhaEletrica = s.injectEletrica
	raw.FalhaHidraulica = s.injectHidraulica

	filtered := s.filter.Add(raw)

	// Amostras com o mesmo timestamp da última enviada são descartadas
	if filtered.Timestamp == s.lastSentTs {
		return
	}
	s.lastSentTs = filtered.Timestamp

	for _, out := range s.outputs {
		if err := out.PushWait(s.ctx, filtered); err != nil {
			return
		}
	}

	s.publish(filtered)
}

// pollFaultInjection trata no máximo uma ordem de injeção por ciclo
func (s *Service) pollFaultInjection() {
	payload, ok := s.transport.TryPop(transport.TopicSimDefeito(s.cfg.ID))
	if !ok {
		return
	}

	d, ok := command.ParseFaultDirective(string(payload))
	if !ok {
		logger.Warnf("Ordem de injeção de falha não reconhecida: %q", string(payload))
		return
	}

	if d.Eletrica {
		s.injectEletrica = d.Ativa
	}
	if d.Hidraulica {
		s.injectHidraulica = d.Ativa
	}
	logger.Infof("Injeção de falha: eletrica=%v hidraulica=%v", s.injectEletrica, s.injectHidraulica)
}

// publish envia a amostra filtrada para os tópicos de sensores e posição
func (s *Service) publish(sample models.SensorSample) {
	if payload, err := json.Marshal(sample.ToSensorReport()); err == nil {
		if err := s.transport.Publish(transport.TopicSensores(s.cfg.ID), payload); err != nil {
			logger.Errorf("Erro ao publicar amostra de sensores: %v", err)
		}
	}

	if payload, err := json.Marshal(sample.ToPositionReport()); err == nil {
		if err := s.transport.Publish(transport.TopicPosicao(s.cfg.ID), payload); err != nil {
			logger.Errorf("Erro ao publicar posição: %v", err)
		}
	}
}
