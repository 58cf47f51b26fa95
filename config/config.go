// Package config reads the ledger configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings shared by the ledger commands. Empty Kafka or
// mirror settings disable the matching component.
type Config struct {
	Bucket       string   `env:"LEDGER_BUCKET" envDefault:"."`
	Database     string   `env:"LEDGER_DB" envDefault:"ledger.db"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"transactions"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"ledger-loader"`
	MirrorURL    string   `env:"MIRROR_DATABASE_URL"`
	Port         string   `env:"PORT" envDefault:"8080"`
	CORSOrigin   string   `env:"CORS_ORIGIN" envDefault:"*"`
	Currency     string   `env:"LEDGER_CURRENCY" envDefault:"EUR"`
	Strict       bool     `env:"LEDGER_STRICT" envDefault:"false"`
	Delimiter    string   `env:"LEDGER_DELIMITER" envDefault:";"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

// LoadFrom reads the configuration from vars instead of the process
// environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required with KAFKA_BROKERS")
	}
	if c.Delimiter == "" {
		return fmt.Errorf("LEDGER_DELIMITER cannot be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Kafka reports whether a kafka queue is configured.
func (c Config) Kafka() bool { return len(c.KafkaBrokers) > 0 }

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
