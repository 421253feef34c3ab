package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTP_PORT        string `env:"HTTP_PORT"`
	DB_STRING        string `env:"DB_STRING"`
	KAFKA_BROKERS    string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC      string `env:"KAFKA_TOPIC"`
	TX_RETRY_ATTEMPTS uint64 `env:"TX_RETRY_ATTEMPTS"`
	TX_RETRY_BASE_MS  int    `env:"TX_RETRY_BASE_MS"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:     os.Getenv("HTTP_PORT"),
		DB_STRING:     os.Getenv("DB_STRING"),
		KAFKA_BROKERS: os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:   os.Getenv("KAFKA_TOPIC"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "order.status"
	}

	cfg.TX_RETRY_ATTEMPTS = 3
	if v := os.Getenv("TX_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.TX_RETRY_ATTEMPTS = n
		}
	}

	cfg.TX_RETRY_BASE_MS = 25
	if v := os.Getenv("TX_RETRY_BASE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TX_RETRY_BASE_MS = n
		}
	}

	return cfg, nil
}
