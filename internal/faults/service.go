// Package faults monitora as amostras dos sensores e mantém os flags de
// alerta e defeito do caminhão. O alerta de temperatura segue a leitura e
// limpa sozinho; o defeito é retido até um rearme.
package faults

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/state"
	"caminhao_go/internal/transport"
	"caminhao_go/pkg/logger"
	"caminhao_go/pkg/utils"
)

// Limiares de temperatura em graus
const (
	alertTempThreshold  = 95
	defectTempThreshold = 120
)

// Pausa ao final de cada ciclo de monitoração
const monitorPause = 40 * time.Millisecond

// Service consome o buffer de amostras do monitor e avalia as condições
// de falha
type Service struct {
	cfg       config.TruckConfig
	vehicle   *state.VehicleState
	samples   *buffer.BoundedBuffer[models.SensorSample]
	transport transport.Transport

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewService cria o monitor de falhas
func NewService(cfg config.TruckConfig, vehicle *state.VehicleState, samples *buffer.BoundedBuffer[models.SensorSample], tr transport.Transport) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:       cfg,
		vehicle:   vehicle,
		samples:   samples,
		transport: tr,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start inicia o worker de monitoração
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	logger.Infof("Iniciando monitor de falhas (caminhão %d)", s.cfg.ID)
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

	logger.Info("Parando monitor de falhas")
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

		if sample, ok := s.samples.PopWait(s.ctx, s.cfg.FaultPeriod); ok {
			s.evaluate(sample)
		}

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(monitorPause):
		}
	}
}

// evaluate aplica os limiares à amostra e publica o evento quando alguma
// condição está presente
func (s *Service) evaluate(sample models.SensorSample) {
	alert := sample.Temperatura > alertTempThreshold
	overTemp := sample.Temperatura > defectTempThreshold

	// O alerta e as falhas de hardware acompanham a leitura; o defeito
	// só é armado aqui, nunca limpo
	s.vehicle.SetAlertaTemperatura(alert)
	s.vehicle.SetFalhaEletrica(sample.FalhaEletrica)
	s.vehicle.SetFalhaHidraulica(sample.FalhaHidraulica)
	if overTemp || sample.FalhaEletrica || sample.FalhaHidraulica {
		if !s.vehicle.Defeito() {
			logger.Warnf("Defeito armado: temp=%d ele=%v hid=%v",
				sample.Temperatura, sample.FalhaEletrica, sample.FalhaHidraulica)
		}
		s.vehicle.SetDefeito(true)
	}

	if !alert && !overTemp && !sample.FalhaEletrica && !sample.FalhaHidraulica {
		return
	}

	event := models.FaultEvent{
		Temp:            sample.Temperatura,
		AlertaTemp:      utils.BoolToInt(alert),
		DefeitoTemp:     utils.BoolToInt(overTemp),
		FalhaEletrica:   utils.BoolToInt(sample.FalhaEletrica),
		FalhaHidraulica: utils.BoolToInt(sample.FalhaHidraulica),
		Timestamp:       sample.Timestamp,
	}
	s.publish(event)
}

// publish envia o evento ao tópico do caminhão e a cópia ao gerente
func (s *Service) publish(event models.FaultEvent) {
	if payload, err := json.Marshal(event); err == nil {
		if err := s.transport.Publish(transport.TopicEventos(s.cfg.ID), payload); err != nil {
			logger.Errorf("Erro ao publicar evento de falha: %v", err)
		}
	}

	manager := models.ManagerFaultEvent{TruckID: s.cfg.ID, FaultEvent: event}
	if payload, err := json.Marshal(manager); err == nil {
		if err := s.transport.Publish(transport.TopicGerenteFalhas, payload); err != nil {
			logger.Errorf("Erro ao publicar evento ao gerente: %v", err)
		}
	}
}
