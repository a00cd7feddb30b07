package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/state"
	"caminhao_go/internal/transport"
	"caminhao_go/pkg/logger"
)

// Pausa ao final de cada ciclo de interpretação
const cyclePause = 30 * time.Millisecond

// Service consome o buffer de comandos e aplica os efeitos no estado
// compartilhado. Comandos também podem chegar pelo tópico MQTT; nesse
// caso são empurrados para o buffer e tratados no ciclo seguinte, para
// que toda mensagem passe pelo mesmo caminho.
type Service struct {
	cfg       config.TruckConfig
	vehicle   *state.VehicleState
	samples   *buffer.BoundedBuffer[models.SensorSample]
	commands  *buffer.BoundedBuffer[string]
	transport transport.Transport

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewService cria o serviço de interpretação de comandos
func NewService(cfg config.TruckConfig, vehicle *state.VehicleState, samples *buffer.BoundedBuffer[models.SensorSample], commands *buffer.BoundedBuffer[string], tr transport.Transport) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:       cfg,
		vehicle:   vehicle,
		samples:   samples,
		commands:  commands,
		transport: tr,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start inicia o worker de comandos
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	if err := s.transport.Subscribe(transport.TopicComandos(s.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de comandos: %w", err)
	}

	logger.Infof("Iniciando interpretador de comandos (caminhão %d)", s.cfg.ID)
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

	logger.Info("Parando interpretador de comandos")
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

		s.processCycle()

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(cyclePause):
		}
	}
}

// processCycle executa um ciclo de interpretação
func (s *Service) processCycle() {
	// O pop de amostra marca o ritmo do ciclo; o valor não é usado aqui
	s.samples.PopWait(s.ctx, s.cfg.CommandPeriod)

	if text, ok := s.commands.PopWait(s.ctx, s.cfg.CommandPeriod); ok {
		s.handleCommand(text)
		return
	}

	// Fila vazia: comandos chegados pelo broker entram no buffer e
	// passam pelo mesmo caminho no próximo ciclo
	if payload, ok := s.transport.TryPop(transport.TopicComandos(s.cfg.ID)); ok {
		if err := s.commands.PushWait(s.ctx, string(payload)); err != nil {
			return
		}
	}
}

// handleCommand decodifica e aplica um comando de texto livre
func (s *Service) handleCommand(text string) {
	d := Parse(text)
	if d.Empty() {
		logger.Warnf("Comando não reconhecido: %q", text)
		return
	}

	d.Apply(s.vehicle)
	logger.Debugf("Comando aplicado: %q", text)

	if d.HasSetpoint {
		payload := fmt.Sprintf("x=%d,y=%d", d.SetpointX, d.SetpointY)
		if err := s.transport.Publish(transport.TopicSetpoints(s.cfg.ID), []byte(payload)); err != nil {
			logger.Errorf("Erro ao publicar setpoint: %v", err)
		}
	}
}
