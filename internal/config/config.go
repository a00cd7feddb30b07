package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server ServerConfig `json:"server"`
	Truck  TruckConfig  `json:"truck"`
	MQTT   MQTTConfig   `json:"mqtt"`
	Redis  RedisConfig  `json:"redis"`
	PLC    PLCConfig    `json:"plc"`
}

// ServerConfig contém configurações do servidor HTTP/WebSocket
type ServerConfig struct {
	Port            int           `json:"port"`
	LogLevel        string        `json:"logLevel"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// TruckConfig contém os parâmetros de operação do caminhão simulado
type TruckConfig struct {
	ID                   int           `json:"id"`
	RoutePath            string        `json:"routePath"`
	FilterOrder          int           `json:"filterOrder"`
	BufferCapacity       int           `json:"bufferCapacity"`
	SensorPeriod         time.Duration `json:"sensorPeriod"`
	CommandPeriod        time.Duration `json:"commandPeriod"`
	FaultPeriod          time.Duration `json:"faultPeriod"`
	NavPeriod            time.Duration `json:"navPeriod"`
	TelemetryPeriod      time.Duration `json:"telemetryPeriod"`
	RoutePublishInterval time.Duration `json:"routePublishInterval"`
	ReachThreshold       float64       `json:"reachThreshold"`
	Debug                bool          `json:"debug"`
}

// MQTTConfig contém configurações do broker MQTT. Broker "mock" ou vazio
// desativa o broker externo e o transporte passa a operar em memória.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RedisConfig contém configurações do Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	Enabled  bool   `json:"enabled"`
}

// PLCConfig contém configurações para comunicação com o PLC S71500
type PLCConfig struct {
	Enabled      bool          `json:"enabled"`
	Host         string        `json:"host"`
	Rack         int           `json:"rack"`
	Slot         int           `json:"slot"`
	UpdateRate   time.Duration `json:"updateRate"`
	ReadTimeout  time.Duration `json:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout"`
}

// Mock indica se o transporte deve operar sem broker externo
func (m MQTTConfig) Mock() bool {
	return m.Broker == "" || m.Broker == "mock"
}

// BrokerURL monta a URL de conexão com o broker
func (m MQTTConfig) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Broker, m.Port)
}

// Load carrega a configuração do arquivo ou usa valores padrão
func Load() (*Config, error) {
	config := getDefaultConfig()

	// Verificar se existe um arquivo de configuração
	if _, err := os.Stat("config.json"); err == nil {
		file, err := os.Open("config.json")
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	}

	// Sobrescrever com variáveis de ambiente, se existirem
	applyEnvironmentOverrides(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate verifica os parâmetros que precisam ser positivos antes de
// qualquer worker ser criado
func (c *Config) Validate() error {
	if c.Truck.BufferCapacity <= 0 {
		return fmt.Errorf("capacidade de buffer inválida: %d", c.Truck.BufferCapacity)
	}
	periods := map[string]time.Duration{
		"sensorPeriod":    c.Truck.SensorPeriod,
		"commandPeriod":   c.Truck.CommandPeriod,
		"faultPeriod":     c.Truck.FaultPeriod,
		"navPeriod":       c.Truck.NavPeriod,
		"telemetryPeriod": c.Truck.TelemetryPeriod,
	}
	for name, p := range periods {
		if p <= 0 {
			return fmt.Errorf("período inválido em %s: %v", name, p)
		}
	}
	if c.Truck.ReachThreshold <= 0 {
		return fmt.Errorf("limiar de chegada inválido: %f", c.Truck.ReachThreshold)
	}
	return nil
}

// applyEnvironmentOverrides sobrescreve configurações com variáveis de ambiente
func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Server.LogLevel = v
	}
	if v := os.Getenv("TRUCK_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			config.Truck.ID = id
		}
	}
	if v := os.Getenv("ROUTE_PATH"); v != "" {
		config.Truck.RoutePath = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		config.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.MQTT.Port = port
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		config.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Redis.Port = port
		}
	}
}
