package server

import (
	"encoding/json"
	"net/http"
	"time"

	"caminhao_go/internal/api"
	"caminhao_go/internal/discovery"
	"caminhao_go/internal/websocket"
)

// setupRoutes configura todas as rotas do servidor
func (s *Server) setupRoutes() {
	wsHandler := websocket.NewHandler(s.wsHub)

	apiRouter := api.NewRouter(s.config.Truck.ID, s.telemetryService, s.redisService,
		s.commands, s.routeManager, "/api")
	apiRouter.Setup()

	chain := api.Chain(api.LoggingMiddleware, api.RecoveryMiddleware, api.CorsMiddleware)

	// Endpoints do servidor
	s.router.Handle("/health", chain(http.HandlerFunc(s.healthHandler)))
	s.router.Handle("/info", chain(http.HandlerFunc(s.infoHandler)))
	s.router.Handle("/api/discover", chain(http.HandlerFunc(s.discoverHandler)))
	s.router.Handle("/api/server-info", chain(http.HandlerFunc(s.serverInfoHandler)))

	// WebSocket fora da cadeia de logging: o wrapper de status esconde o
	// http.Hijacker que o upgrade precisa
	s.router.Handle("/ws", wsHandler)
	s.router.Handle("/ws/health", chain(wsHandler.GetHealthHandler()))

	// API REST do caminhão
	s.router.Handle("/api/", apiRouter)
}

// healthHandler responde com o status de saúde dos serviços
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	running := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "offline"
	}

	workers := map[string]string{
		"sensores":   running(s.sensorService.IsRunning()),
		"comandos":   running(s.commandService.IsRunning()),
		"falhas":     running(s.faultService.IsRunning()),
		"navegacao":  running(s.navService.IsRunning()),
		"telemetria": running(s.telemetryService.IsRunning()),
		"rota":       running(s.routeManager.IsRunning()),
	}

	mqttStatus := "memoria"
	if !s.config.MQTT.Mock() {
		mqttStatus = "offline"
		if c, ok := s.transport.(interface{ IsConnected() bool }); ok && c.IsConnected() {
			mqttStatus = "ok"
		}
	}

	redisStatus := "disabled"
	if s.config.Redis.Enabled {
		redisStatus = running(s.redisService.IsConnected())
	}

	plcStatus := "disabled"
	if s.config.PLC.Enabled {
		plcStatus = running(s.plcService != nil && s.plcService.IsRunning())
	}

	status := "ok"
	for _, v := range workers {
		if v == "offline" {
			status = "degraded"
		}
	}
	if mqttStatus == "offline" {
		status = "degraded"
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"truck_id":  s.config.Truck.ID,
		"workers":   workers,
		"services": map[string]string{
			"mqtt":      mqttStatus,
			"redis":     redisStatus,
			"plc":       plcStatus,
			"websocket": "ok",
			"discovery": running(s.discoveryService.IsRunning()),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// infoHandler retorna informações básicas sobre o servidor
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	info := s.GetServerInfo()
	uptime := time.Since(info.StartTime).Round(time.Second)

	response := map[string]interface{}{
		"name":        "Sistema ATR",
		"version":     info.Version,
		"truckId":     info.TruckID,
		"ip":          info.IP,
		"port":        info.Port,
		"websocket":   info.WebSocketURL,
		"api":         info.APIURL,
		"startTime":   info.StartTime,
		"uptime":      uptime.String(),
		"connections": info.Connections,
	}

	json.NewEncoder(w).Encode(response)
}

// serverInfoHandler retorna informações completas sobre o servidor e os
// serviços de apoio
func (s *Server) serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	info := s.GetServerInfo()
	uptime := time.Since(info.StartTime).Round(time.Second)

	waypoint := map[string]interface{}{"active": false}
	if wp, ok := s.routeManager.CurrentWaypoint(); ok {
		waypoint = map[string]interface{}{
			"active": true,
			"x":      wp.X,
			"y":      wp.Y,
			"speed":  wp.Speed,
		}
	}

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":        "Sistema ATR",
			"version":     info.Version,
			"truckId":     info.TruckID,
			"ip":          info.IP,
			"port":        info.Port,
			"websocket":   info.WebSocketURL,
			"api":         info.APIURL,
			"startTime":   info.StartTime,
			"uptime":      uptime.String(),
			"connections": info.Connections,
		},
		"discovery": map[string]interface{}{
			"running":      s.discoveryService.IsRunning(),
			"instanceName": s.discoveryService.GetInstanceName(),
			"serviceType":  discovery.ServiceType,
		},
		"services": map[string]interface{}{
			"mqtt": map[string]interface{}{
				"mock":   s.config.MQTT.Mock(),
				"broker": s.config.MQTT.Broker,
				"port":   s.config.MQTT.Port,
			},
			"redis": map[string]interface{}{
				"enabled":   s.config.Redis.Enabled,
				"connected": s.redisService != nil && s.redisService.IsConnected(),
				"host":      s.config.Redis.Host,
				"port":      s.config.Redis.Port,
			},
			"plc": map[string]interface{}{
				"enabled": s.config.PLC.Enabled,
				"running": s.plcService != nil && s.plcService.IsRunning(),
				"host":    s.config.PLC.Host,
			},
		},
		"route": map[string]interface{}{
			"waypoint": waypoint,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// discoverHandler fornece informações para descoberta manual
func (s *Server) discoverHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	info := s.GetServerInfo()

	response := map[string]interface{}{
		"name":        "Sistema ATR",
		"truckId":     info.TruckID,
		"ip":          info.IP,
		"port":        info.Port,
		"wsUrl":       info.WebSocketURL,
		"apiUrl":      info.APIURL,
		"version":     info.Version,
		"wsEndpoint":  "/ws",
		"apiEndpoint": "/api",
	}

	json.NewEncoder(w).Encode(response)
}
