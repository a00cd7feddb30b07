// Package server monta o caminhão completo: transporte, estado
// compartilhado, buffers, os cinco workers, os sinks de supervisão e o
// servidor HTTP/WebSocket que expõe tudo isso.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/command"
	"caminhao_go/internal/config"
	"caminhao_go/internal/discovery"
	"caminhao_go/internal/faults"
	"caminhao_go/internal/models"
	"caminhao_go/internal/nav"
	"caminhao_go/internal/plc"
	"caminhao_go/internal/redis"
	"caminhao_go/internal/route"
	"caminhao_go/internal/sensors"
	"caminhao_go/internal/state"
	"caminhao_go/internal/telemetry"
	"caminhao_go/internal/transport"
	"caminhao_go/internal/websocket"
	"caminhao_go/pkg/logger"
)

// Server encapsula o servidor HTTP e todos os componentes do caminhão
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *http.ServeMux

	transport transport.Transport
	vehicle   *state.VehicleState
	commands  *buffer.BoundedBuffer[string]

	sensorService    *sensors.Service
	commandService   *command.Service
	faultService     *faults.Service
	navService       *nav.Service
	telemetryService *telemetry.Service

	routeManager     *route.Manager
	redisService     *redis.Service
	plcService       *plc.PanelService
	wsHub            *websocket.Hub
	discoveryService *discovery.DiscoveryService

	serverInfo ServerInfo
}

// ServerInfo contém informações sobre o servidor
type ServerInfo struct {
	TruckID      int
	IP           string
	Port         int
	StartTime    time.Time
	Connections  int
	Version      string
	WebSocketURL string
	APIURL       string
}

// NewServer cria o servidor com todos os componentes montados, sem
// iniciar os workers
func NewServer(cfg *config.Config) (*Server, error) {
	server := &Server{
		config: cfg,
		router: http.NewServeMux(),
		serverInfo: ServerInfo{
			TruckID:   cfg.Truck.ID,
			StartTime: time.Now(),
			Version:   "1.0.0",
			Port:      cfg.Server.Port,
		},
	}

	ip, err := server.getLocalIP()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter IP local: %w", err)
	}
	server.serverInfo.IP = ip
	server.serverInfo.WebSocketURL = fmt.Sprintf("ws://%s:%d/ws", ip, cfg.Server.Port)
	server.serverInfo.APIURL = fmt.Sprintf("http://%s:%d/api", ip, cfg.Server.Port)

	if err := server.initComponents(); err != nil {
		return nil, err
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return server, nil
}

// initComponents instancia o transporte, os buffers e todos os serviços
func (s *Server) initComponents() error {
	cfg := s.config

	// Transporte: broker MQTT real ou filas em memória quando mockado
	if cfg.MQTT.Mock() {
		logger.Info("Broker MQTT desativado; transporte em memória")
		s.transport = transport.NewMemoryTransport(cfg.Truck.BufferCapacity)
	} else {
		clientID := fmt.Sprintf("caminhao-%d-%s", cfg.Truck.ID, uuid.New().String()[:8])
		tr, err := transport.NewMQTTTransport(cfg.MQTT, clientID, cfg.Truck.BufferCapacity)
		if err != nil {
			return fmt.Errorf("erro ao inicializar transporte MQTT: %w", err)
		}
		s.transport = tr
	}

	s.vehicle = state.New()
	s.commands = buffer.New[string](cfg.Truck.BufferCapacity)

	// Um buffer de amostras por consumidor; a fonte de sensores espelha
	// cada amostra filtrada em todos eles
	commandSamples := buffer.New[models.SensorSample](cfg.Truck.BufferCapacity)
	faultSamples := buffer.New[models.SensorSample](cfg.Truck.BufferCapacity)
	navSamples := buffer.New[models.SensorSample](cfg.Truck.BufferCapacity)
	telemetrySamples := buffer.New[models.SensorSample](cfg.Truck.BufferCapacity)
	outputs := []*buffer.BoundedBuffer[models.SensorSample]{
		commandSamples, faultSamples, navSamples, telemetrySamples,
	}

	s.wsHub = websocket.NewHub(cfg.Truck.ID, s.commands)
	go s.wsHub.Run()

	redisService, err := redis.NewService(cfg.Redis)
	if err != nil {
		return fmt.Errorf("erro ao inicializar serviço Redis: %w", err)
	}
	s.redisService = redisService

	s.sensorService = sensors.NewService(cfg.Truck, s.vehicle, outputs, s.transport)
	s.commandService = command.NewService(cfg.Truck, s.vehicle, commandSamples, s.commands, s.transport)
	s.faultService = faults.NewService(cfg.Truck, s.vehicle, faultSamples, s.transport)
	s.navService = nav.NewService(cfg.Truck, s.vehicle, navSamples, s.transport)
	s.telemetryService = telemetry.NewService(cfg.Truck, s.vehicle, telemetrySamples, s.commands,
		s.transport, s.navService, s.redisService, s.wsHub)

	// Rota inicial: arquivo ausente não impede a partida, o caminhão
	// fica parado aguardando setpoints
	r := route.NewRoute()
	if cfg.Truck.RoutePath != "" {
		if err := r.LoadFromFile(cfg.Truck.RoutePath); err != nil {
			logger.Warnf("Rota não carregada de %s: %v", cfg.Truck.RoutePath, err)
		} else {
			logger.Infof("Rota carregada de %s: %d waypoints", cfg.Truck.RoutePath, r.Size())
		}
	}
	s.routeManager = route.NewManager(cfg.Truck, r, s.transport)

	if cfg.PLC.Enabled {
		s.plcService = plc.NewPanelService(cfg.PLC, cfg.Truck.ID, s.commands, s.transport)
	}

	s.discoveryService = discovery.NewDiscoveryService(cfg.Truck.ID, cfg.Server.Port)

	return nil
}

// Start inicia os workers e o servidor HTTP. Bloqueia até o servidor
// HTTP encerrar.
func (s *Server) Start() error {
	if err := s.discoveryService.Start(); err != nil {
		logger.Warnf("Erro ao iniciar serviço de descoberta: %v", err)
		// Sem mDNS o caminhão segue operando
	}

	workers := []struct {
		name  string
		start func() error
	}{
		{"sensores", s.sensorService.Start},
		{"comandos", s.commandService.Start},
		{"falhas", s.faultService.Start},
		{"navegação", s.navService.Start},
		{"telemetria", s.telemetryService.Start},
		{"rota", s.routeManager.Start},
	}
	for _, w := range workers {
		if err := w.start(); err != nil {
			return fmt.Errorf("erro ao iniciar worker de %s: %w", w.name, err)
		}
	}

	if s.plcService != nil {
		if err := s.plcService.Start(); err != nil {
			logger.Errorf("Erro ao iniciar ponte com o painel PLC: %v", err)
			// O caminhão opera sem painel físico
		}
	}

	s.logServerInfo()

	logger.Infof("Iniciando servidor HTTP na porta %d", s.config.Server.Port)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("erro ao iniciar servidor HTTP: %w", err)
	}

	return nil
}

// Shutdown encerra graciosamente o servidor e todos os serviços
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Iniciando shutdown do servidor")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Erro ao encerrar servidor HTTP: %v", err)
	}

	if s.discoveryService != nil {
		s.discoveryService.Stop()
	}
	if s.plcService != nil {
		s.plcService.Stop()
	}
	if s.routeManager != nil {
		s.routeManager.Stop()
	}

	// A fonte para primeiro; os consumidores restantes apenas esgotam o
	// timeout dos seus pops e saem
	if s.sensorService != nil {
		s.sensorService.Stop()
	}
	if s.commandService != nil {
		s.commandService.Stop()
	}
	if s.faultService != nil {
		s.faultService.Stop()
	}
	if s.navService != nil {
		s.navService.Stop()
	}
	if s.telemetryService != nil {
		s.telemetryService.Stop()
	}

	if s.wsHub != nil {
		s.wsHub.Shutdown()
	}
	if s.redisService != nil {
		s.redisService.Shutdown()
	}
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			logger.Errorf("Erro ao encerrar transporte: %v", err)
		}
	}

	logger.Info("Shutdown completo")
	return nil
}

// getLocalIP obtém o endereço IPv4 local não loopback
func (s *Server) getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "localhost", nil
}

// GetServerInfo retorna informações sobre o servidor
func (s *Server) GetServerInfo() ServerInfo {
	info := s.serverInfo
	info.Connections = s.wsHub.ClientCount()
	return info
}

// logServerInfo exibe informações do servidor no log
func (s *Server) logServerInfo() {
	logger.Info("===============================================")
	logger.Infof("        Sistema ATR - Caminhão %d", s.config.Truck.ID)
	logger.Info("===============================================")
	logger.Infof("Versão: %s", s.serverInfo.Version)
	logger.Infof("Endereço IP: %s", s.serverInfo.IP)
	logger.Infof("Porta HTTP: %d", s.serverInfo.Port)
	logger.Infof("WebSocket URL: %s", s.serverInfo.WebSocketURL)
	logger.Infof("API URL: %s", s.serverInfo.APIURL)
	if s.config.MQTT.Mock() {
		logger.Info("Transporte: filas em memória")
	} else {
		logger.Infof("Transporte: broker MQTT %s", s.config.MQTT.BrokerURL())
	}
	logger.Infof("mDNS: %s.%s.%s",
		s.discoveryService.GetInstanceName(),
		discovery.ServiceType,
		discovery.ServiceDomain)
	logger.Info("===============================================")
	logger.Info("Caminhão pronto para operação!")
}
