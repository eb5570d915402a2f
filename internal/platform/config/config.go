// Package config loads service configuration: struct defaults overlaid with
// environment variables, then validated.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	strs "kyc-intake/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Environment string `koanf:"environment" validate:"required"`
	Server      Server `koanf:"server"`
	Engine      Engine `koanf:"engine"`
	Log         Log    `koanf:"log"`
	Audit       Audit  `koanf:"audit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `koanf:"addr" validate:"required"`
}

// Engine points at the workflow engine REST API.
type Engine struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	WorkerID string        `koanf:"worker_id" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Audit configures the in-memory recent activity ring and the optional
// Kafka topic. No brokers means no Kafka sink.
type Audit struct {
	KafkaBrokers []string `koanf:"kafka_brokers"`
	Topic        string   `koanf:"topic" validate:"required"`
	Recent       int      `koanf:"recent" validate:"min=1"`
}

// KafkaEnabled reports whether audit events are also published to Kafka.
func (a Audit) KafkaEnabled() bool {
	return len(a.KafkaBrokers) > 0
}

// Default returns the configuration used when no environment overrides it.
func Default() Config {
	return Config{
		Environment: "development",
		Server:      Server{Addr: ":8080"},
		Engine: Engine{
			BaseURL:  "http://localhost:8080/engine-rest",
			WorkerID: "kyc-form-worker",
			Timeout:  10 * time.Second,
		},
		Log:   Log{Level: "info"},
		Audit: Audit{Topic: "kyc.audit", Recent: 50},
	}
}

// envKeys maps environment variables to config paths. Variables not listed
// here are ignored.
var envKeys = map[string]string{
	"APP_ENV":            "environment",
	"KYC_ADDR":           "server.addr",
	"CAMUNDA_BASE_URL":   "engine.base_url",
	"KYC_WORKER_ID":      "engine.worker_id",
	"KYC_ENGINE_TIMEOUT": "engine.timeout",
	"LOG_LEVEL":          "log.level",
	"KYC_KAFKA_BROKERS":  "audit.kafka_brokers",
	"KYC_AUDIT_TOPIC":    "audit.topic",
	"KYC_AUDIT_RECENT":   "audit.recent",
}

// FromEnv loads configuration from the process environment.
func FromEnv() (*Config, error) {
	return Load(os.Environ())
}

// Load builds configuration from defaults and the given KEY=value pairs.
func Load(environ []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: func() []string { return environ },
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok || value == "" {
				return "", nil
			}
			return path, value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	err = k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Audit.KafkaBrokers = strs.DedupeAndTrim(cfg.Audit.KafkaBrokers)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv exports variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}
