package route

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"caminhao_go/internal/command"
	"caminhao_go/internal/config"
	"caminhao_go/internal/transport"
	"caminhao_go/pkg/logger"
	"caminhao_go/pkg/utils"
)

// Pausa entre varreduras dos tópicos de rota e posição
const pollPause = 100 * time.Millisecond

// Manager acompanha a rota: publica o waypoint corrente como setpoint,
// avança quando o caminhão chega perto e aceita rotas novas pelo tópico.
// No fim da rota o último waypoint é mantido.
type Manager struct {
	cfg       config.TruckConfig
	transport transport.Transport

	route *Route
	idx   int

	lastPublish time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex
}

// NewManager cria o gerenciador com a rota dada (pode ser vazia)
func NewManager(cfg config.TruckConfig, r *Route, tr transport.Transport) *Manager {
	if r == nil {
		r = NewRoute()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:       cfg,
		transport: tr,
		route:     r,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start inicia o gerenciador. A rota carregada é anunciada no tópico de
// rota e o primeiro waypoint vira setpoint imediatamente.
func (m *Manager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.running {
		return nil
	}

	if err := m.transport.Subscribe(transport.TopicRoute(m.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de rota: %w", err)
	}
	if err := m.transport.Subscribe(transport.TopicPosicao(m.cfg.ID)); err != nil {
		return fmt.Errorf("erro ao assinar tópico de posição: %w", err)
	}

	logger.Infof("Iniciando gerenciador de rota (caminhão %d, %d waypoints)", m.cfg.ID, m.route.Size())

	if m.route.Size() > 0 {
		m.announceRoute()
		m.publishSetpoint()
	}

	go m.run()

	m.running = true
	return nil
}

// Stop encerra o gerenciador
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.running {
		return
	}

	logger.Info("Parando gerenciador de rota")
	m.cancel()
	m.running = false
}

// IsRunning verifica se o serviço está em execução
func (m *Manager) IsRunning() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.running
}

// RouteText retorna a serialização da rota atual
func (m *Manager) RouteText() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.route.String()
}

// ReplaceRoute troca a rota pelo texto dado e volta ao primeiro
// waypoint. Retorna quantos waypoints foram carregados; texto sem nenhum
// waypoint válido é rejeitado e a rota atual é mantida.
func (m *Manager) ReplaceRoute(text string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.replaceLocked(text)
}

func (m *Manager) replaceLocked(text string) int {
	incoming := NewRoute()
	n := incoming.LoadFromString(text)
	if n == 0 {
		return 0
	}

	m.route = incoming
	m.idx = 0
	logger.Infof("Rota substituída: %d waypoints", n)
	return n
}

// CurrentWaypoint retorna o waypoint corrente, se houver
func (m *Manager) CurrentWaypoint() (Waypoint, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.route.At(m.idx)
}

func (m *Manager) run() {
	ticker := time.NewTicker(pollPause)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.processCycle()
		}
	}
}

// processCycle varre os tópicos e republica o setpoint no intervalo
func (m *Manager) processCycle() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.pollRouteLocked()
	m.pollPositionLocked()

	if m.route.Size() == 0 {
		return
	}
	if time.Since(m.lastPublish) >= m.cfg.RoutePublishInterval {
		m.publishSetpoint()
	}
}

// pollRouteLocked aceita uma rota nova vinda do tópico. O texto idêntico
// ao atual é ignorado para não reagir ao próprio anúncio.
func (m *Manager) pollRouteLocked() {
	payload, ok := m.transport.TryPop(transport.TopicRoute(m.cfg.ID))
	if !ok {
		return
	}

	text := string(payload)
	if text == m.route.String() {
		return
	}

	if m.replaceLocked(text) > 0 {
		m.announceRoute()
		m.publishSetpoint()
	}
}

// pollPositionLocked avança o waypoint quando a posição chega perto
func (m *Manager) pollPositionLocked() {
	payload, ok := m.transport.TryPop(transport.TopicPosicao(m.cfg.ID))
	if !ok {
		return
	}

	text := string(payload)
	x, okX := command.ExtractInt(text, "x")
	y, okY := command.ExtractInt(text, "y")
	if !okX || !okY {
		return
	}

	w, ok := m.route.At(m.idx)
	if !ok {
		return
	}

	dist := math.Hypot(w.X-float64(x), w.Y-float64(y))
	if dist > m.cfg.ReachThreshold {
		return
	}

	// No fim da rota o waypoint corrente é mantido
	if m.idx+1 < m.route.Size() {
		m.idx++
		logger.Infof("Waypoint alcançado, avançando para %d de %d", m.idx+1, m.route.Size())
		m.publishSetpoint()
	}
}

// publishSetpoint envia o waypoint corrente como setpoint
func (m *Manager) publishSetpoint() {
	w, ok := m.route.At(m.idx)
	if !ok {
		return
	}

	payload := fmt.Sprintf("x=%d,y=%d", utils.RoundToInt(w.X), utils.RoundToInt(w.Y))
	if err := m.transport.Publish(transport.TopicSetpoints(m.cfg.ID), []byte(payload)); err != nil {
		logger.Errorf("Erro ao publicar setpoint da rota: %v", err)
	}
	m.lastPublish = time.Now()
}

// announceRoute publica a serialização da rota no tópico de rota
func (m *Manager) announceRoute() {
	if err := m.transport.Publish(transport.TopicRoute(m.cfg.ID), []byte(m.route.String())); err != nil {
		logger.Errorf("Erro ao anunciar rota: %v", err)
	}
}
