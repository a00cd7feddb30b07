package nav

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

// Service consome o buffer de amostras da navegação e publica as saídas
// dos atuadores a cada ciclo, em qualquer modo. Cada ciclo espera uma
// amostra até o período configurado e dorme o mesmo período ao final,
// que é o tempo de amostragem assumido pelo integrador.
type Service struct {
	cfg       config.TruckConfig
	vehicle   *state.VehicleState
	samples   *buffer.BoundedBuffer[models.SensorSample]
	transport transport.Transport

	controller *Controller

	// Espelho do setpoint corrente para leitura por outros serviços
	spMutex sync.RWMutex
	spX     float64
	spY     float64

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewService cria o controlador de navegação
func NewService(cfg config.TruckConfig, vehicle *state.VehicleState, samples *buffer.BoundedBuffer[models.SensorSample], tr transport.Transport) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:        cfg,
		vehicle:    vehicle,
		samples:    samples,
		transport:  tr,
		controller: NewController(),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.spX, s.spY = s.controller.Setpoint()
	return s
}

// Start inicia o worker de navegação
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	if err := s.transport.Subscribe(transport.TopicSetpoints(s.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de setpoints: %w", err)
	}

	logger.Infof("Iniciando controlador de navegação (caminhão %d)", s.cfg.ID)
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

	logger.Info("Parando controlador de navegação")
	s.cancel()
	s.running = false
}

// IsRunning verifica se o serviço está em execução
func (s *Service) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// Setpoint informa o destino corrente do controlador
func (s *Service) Setpoint() (int, int) {
	s.spMutex.RLock()
	defer s.spMutex.RUnlock()
	return utils.RoundToInt(s.spX), utils.RoundToInt(s.spY)
}

func (s *Service) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.processCycle()

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.cfg.NavPeriod):
		}
	}
}

// processCycle corre um ciclo de controle: amostra, setpoint, modo
func (s *Service) processCycle() {
	if sample, ok := s.samples.PopWait(s.ctx, s.cfg.NavPeriod); ok {
		s.controller.Observe(sample)
	}

	s.pollSetpoint()

	switch {
	case s.vehicle.Defeito():
		s.controller.ApplyFault()
	case !s.vehicle.Automatico():
		s.controller.ApplyManual(s.vehicle.CmdAcelera(), s.vehicle.CmdDireita(), s.vehicle.CmdEsquerda())
	default:
		s.controller.ApplyAutomatic()
	}

	accel, dir := s.controller.Outputs()
	s.vehicle.SetAceleracao(accel)
	s.vehicle.SetDirecao(dir)

	s.publish(accel, dir)

	x, y := s.controller.Setpoint()
	s.spMutex.Lock()
	s.spX, s.spY = x, y
	s.spMutex.Unlock()
}

// pollSetpoint aceita destinos novos vindos do tópico. As coordenadas
// são independentes: um payload só com x troca só o x.
func (s *Service) pollSetpoint() {
	payload, ok := s.transport.TryPop(transport.TopicSetpoints(s.cfg.ID))
	if !ok {
		return
	}

	text := string(payload)
	spX, spY := s.controller.Setpoint()
	x, okX := command.ExtractInt(text, "x")
	if okX {
		spX = float64(x)
	}
	y, okY := command.ExtractInt(text, "y")
	if okY {
		spY = float64(y)
	}

	if !okX && !okY {
		logger.Warnf("Setpoint sem coordenadas: %q", text)
		return
	}

	s.controller.SetSetpoint(spX, spY)
	logger.Infof("Novo setpoint: (%.0f, %.0f)", spX, spY)
}

// publish envia o relatório dos atuadores
func (s *Service) publish(accel, dir int) {
	report := models.ActuatorReport{
		Aceleracao: accel,
		Direcao:    dir,
		Automatico: utils.BoolToInt(s.vehicle.Automatico()),
		Defeito:    utils.BoolToInt(s.vehicle.Defeito()),
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.transport.Publish(transport.TopicAtuadores(s.cfg.ID), payload); err != nil {
		logger.Errorf("Erro ao publicar atuadores: %v", err)
	}
}
