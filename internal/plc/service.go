package plc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/config"
	"caminhao_go/internal/models"
	"caminhao_go/internal/transport"
	"caminhao_go/pkg/logger"
)

// Layout do bloco de dados do painel no PLC. A primeira parte é escrita
// pelo painel (botões e setpoint digitado); a segunda é escrita pelo
// caminhão para os displays.
const (
	panelDB = 10

	// Entradas do painel
	buttonsOffset   = 0
	controlOffset   = 1
	setpointXOffset = 2
	setpointYOffset = 6

	// Bits do byte de botões
	bitManual         = 0
	bitAutomatico     = 1
	bitRearme         = 2
	bitAcelera        = 3
	bitDireita        = 4
	bitEsquerda       = 5
	bitEnviarSetpoint = 6

	// Bits do byte de controle
	bitPainelAtivo = 0
	bitTruckOnline = 1

	// Área de escrita do caminhão
	writebackOffset = 12
	writebackSize   = 18
)

const defaultUpdateRate = 500 * time.Millisecond

// PanelService espelha o estado do caminhão no painel físico e converte
// os botões do painel em comandos de texto na fila compartilhada.
type PanelService struct {
	client    *S7Client
	config    config.PLCConfig
	truckID   int
	commands  *buffer.BoundedBuffer[string]
	transport transport.Transport

	lastButtons byte
	lastState   *models.StateReport
	heartbeat   byte

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewPanelService cria o serviço de ponte com o painel
func NewPanelService(cfg config.PLCConfig, truckID int, commands *buffer.BoundedBuffer[string], tr transport.Transport) *PanelService {
	if cfg.UpdateRate <= 0 {
		cfg.UpdateRate = defaultUpdateRate
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PanelService{
		client:    NewS7Client(cfg),
		config:    cfg,
		truckID:   truckID,
		commands:  commands,
		transport: tr,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start inicia a comunicação com o painel
func (s *PanelService) Start() error {
	if !s.config.Enabled {
		logger.Info("Serviço PLC desabilitado por configuração")
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	if err := s.transport.Subscribe(transport.TopicEstado(s.truckID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de estado: %w", err)
	}

	if err := s.client.Connect(); err != nil {
		return err
	}
	if err := s.client.CheckConnection(); err != nil {
		return err
	}

	// Sinalizar ao painel que o caminhão está online
	if err := s.client.WriteBool(panelDB, controlOffset, bitTruckOnline, true); err != nil {
		logger.Warnf("Não foi possível sinalizar presença ao painel: %v", err)
	}

	logger.Infof("Iniciando ponte com o painel (caminhão %d)", s.truckID)
	go s.run()

	s.running = true
	return nil
}

// Stop encerra a comunicação com o painel
func (s *PanelService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return
	}

	logger.Info("Parando ponte com o painel")
	s.cancel()
	s.client.Disconnect()
	s.running = false
}

// IsRunning verifica se o serviço está em execução
func (s *PanelService) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

func (s *PanelService) run() {
	ticker := time.NewTicker(s.config.UpdateRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick corre um ciclo completo: estado novo, displays, botões
func (s *PanelService) tick() {
	s.pollState()
	s.updateDisplays()
	s.readPanel()
}

// pollState absorve o último estado publicado pelo coletor de telemetria
func (s *PanelService) pollState() {
	payload, ok := s.transport.TryPop(transport.TopicEstado(s.truckID))
	if !ok {
		return
	}

	var report models.StateReport
	if err := json.Unmarshal(payload, &report); err != nil {
		logger.Warnf("Estado ilegível para o painel: %v", err)
		return
	}
	s.lastState = &report
}

// updateDisplays escreve o bloco de exibição do painel
func (s *PanelService) updateDisplays() {
	if s.lastState == nil {
		return
	}

	s.heartbeat++
	data := buildWriteback(*s.lastState, s.heartbeat)
	if err := s.client.WriteDataBlock(panelDB, writebackOffset, data); err != nil {
		logger.Errorf("Erro ao atualizar displays do painel: %v", err)
	}
}

// readPanel lê os botões e converte mudanças em comandos
func (s *PanelService) readPanel() {
	active, err := s.client.ReadBool(panelDB, controlOffset, bitPainelAtivo)
	if err != nil {
		logger.Errorf("Erro ao ler chave do painel: %v", err)
		return
	}
	if !active {
		s.lastButtons = 0
		return
	}

	data, err := s.client.ReadDataBlock(panelDB, buttonsOffset, 1)
	if err != nil {
		logger.Errorf("Erro ao ler botões do painel: %v", err)
		return
	}

	buttons := data[0]
	cmds, sendSetpoint := decodeButtons(s.lastButtons, buttons)
	for _, text := range cmds {
		s.pushCommand(text)
	}
	if sendSetpoint {
		s.pushSetpoint()
	}
	s.lastButtons = buttons
}

// decodeButtons converte a transição do byte de botões em comandos de
// texto. Botões de modo agem na borda de subida; os de retenção geram
// on/off a cada mudança de nível.
func decodeButtons(prev, curr byte) ([]string, bool) {
	var cmds []string

	rising := curr &^ prev
	if rising&(1<<bitManual) != 0 {
		cmds = append(cmds, "man")
	}
	if rising&(1<<bitAutomatico) != 0 {
		cmds = append(cmds, "auto")
	}
	if rising&(1<<bitRearme) != 0 {
		cmds = append(cmds, "rearme")
	}

	changed := curr ^ prev
	holds := []struct {
		bit  byte
		name string
	}{
		{bitAcelera, "acelera"},
		{bitDireita, "direita"},
		{bitEsquerda, "esquerda"},
	}
	for _, h := range holds {
		if changed&(1<<h.bit) == 0 {
			continue
		}
		if curr&(1<<h.bit) != 0 {
			cmds = append(cmds, h.name+" on")
		} else {
			cmds = append(cmds, h.name+" off")
		}
	}

	return cmds, rising&(1<<bitEnviarSetpoint) != 0
}

// pushSetpoint lê o destino digitado no painel e o envia como comando
func (s *PanelService) pushSetpoint() {
	x, err := s.client.ReadDInt(panelDB, setpointXOffset)
	if err != nil {
		logger.Errorf("Erro ao ler setpoint do painel: %v", err)
		return
	}
	y, err := s.client.ReadDInt(panelDB, setpointYOffset)
	if err != nil {
		logger.Errorf("Erro ao ler setpoint do painel: %v", err)
		return
	}

	s.pushCommand(fmt.Sprintf("x=%d,y=%d", x, y))
}

func (s *PanelService) pushCommand(text string) {
	s.commands.Push(text)
	logger.Infof("Comando do painel: %q", text)
}

// buildWriteback monta o bloco de exibição: posição, ângulo, temperatura,
// saídas dos atuadores, flags e um contador de vida.
func buildWriteback(report models.StateReport, heartbeat byte) []byte {
	data := make([]byte, writebackSize)

	binary.BigEndian.PutUint32(data[0:4], uint32(int32(report.X)))
	binary.BigEndian.PutUint32(data[4:8], uint32(int32(report.Y)))
	binary.BigEndian.PutUint16(data[8:10], uint16(int16(report.Ang)))
	binary.BigEndian.PutUint16(data[10:12], uint16(int16(report.Temp)))
	binary.BigEndian.PutUint16(data[12:14], uint16(int16(report.Aceleracao)))
	binary.BigEndian.PutUint16(data[14:16], uint16(int16(report.Direcao)))

	var flags byte
	if report.Automatico != 0 {
		flags |= 1 << 0
	}
	if report.Defeito != 0 {
		flags |= 1 << 1
	}
	if report.FalhaEletrica != 0 {
		flags |= 1 << 2
	}
	if report.FalhaHidraulica != 0 {
		flags |= 1 << 3
	}
	data[16] = flags
	data[17] = heartbeat

	return data
}
