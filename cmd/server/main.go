package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"caminhao_go/internal/config"
	"caminhao_go/internal/server"
	"caminhao_go/pkg/logger"
)

func main() {
	truckID := flag.Int("truck-id", 0, "identificador do caminhão (sobrepõe config e ambiente)")
	routePath := flag.String("route", "", "arquivo de rota inicial (sobrepõe config e ambiente)")
	flag.Parse()

	// Configurar diretório de logs
	logDir := filepath.Join(".", "logs")
	os.MkdirAll(logDir, 0755)

	// Inicializar logger
	logger.Init()
	if err := logger.EnableFileLogging(logDir, "caminhao"); err != nil {
		logger.Warnf("Log em arquivo desativado: %v", err)
	}
	defer logger.Sync()

	displayBanner()

	logger.Info("Iniciando Sistema ATR")

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Erro ao carregar configurações", err)
	}

	// Flags têm precedência sobre ambiente e arquivo de configuração
	if *truckID > 0 {
		cfg.Truck.ID = *truckID
	}
	if *routePath != "" {
		cfg.Truck.RoutePath = *routePath
	}

	logger.SetLevel(logger.ParseLevel(cfg.Server.LogLevel))
	if cfg.Truck.Debug {
		logger.SetLevel(logger.DEBUG)
	}

	// Períodos de amostragem longos demais degradam o laço de controle
	if cfg.Truck.SensorPeriod > 100*time.Millisecond {
		logger.Warn("Período de sensores muito longo. Definindo para 50ms")
		cfg.Truck.SensorPeriod = 50 * time.Millisecond
	}

	logger.Infof("Configuração carregada: caminhão %d, rota %q", cfg.Truck.ID, cfg.Truck.RoutePath)
	if cfg.MQTT.Mock() {
		logger.Info("Broker MQTT: mock (transporte em memória)")
	} else {
		logger.Infof("Broker MQTT: %s", cfg.MQTT.BrokerURL())
	}

	// Criar e iniciar o servidor
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Erro ao criar servidor", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Erro ao iniciar o servidor", err)
		}
	}()

	// Shutdown gracioso em SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Desligando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Erro durante o shutdown do servidor", err)
	}

	logger.Info("Servidor encerrado com sucesso")
}

// displayBanner exibe um banner de inicialização
func displayBanner() {
	banner := `
 _______ _______  ______
 |_____|    |    |_____/
 |     |    |    |    \_   v1.0
                           SISTEMA DE CAMINHÃO AUTÔNOMO
 `
	fmt.Println(banner)
	fmt.Printf("Iniciando em %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
}
