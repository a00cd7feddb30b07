package config

import "time"

// getDefaultConfig retorna uma configuração padrão
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Truck: TruckConfig{
			ID:                   1,
			RoutePath:            "routes/example.route",
			FilterOrder:          5,
			BufferCapacity:       200,
			SensorPeriod:         50 * time.Millisecond,
			CommandPeriod:        50 * time.Millisecond,
			FaultPeriod:          100 * time.Millisecond,
			NavPeriod:            100 * time.Millisecond,
			TelemetryPeriod:      200 * time.Millisecond,
			RoutePublishInterval: 500 * time.Millisecond,
			ReachThreshold:       12.0,
			Debug:                false,
		},
		MQTT: MQTTConfig{
			Broker:   "localhost",
			Port:     1883,
			Username: "",
			Password: "",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			Prefix:   "atr_truck",
			Enabled:  true,
		},
		PLC: PLCConfig{
			Enabled:      false,
			Host:         "192.168.1.100",
			Rack:         0,
			Slot:         1,
			UpdateRate:   500 * time.Millisecond,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
}
