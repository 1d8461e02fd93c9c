package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type GRPC struct {
	Addr string `yaml:"addr"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // videochat-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Bus выбирает бекенд рассылки: memory — один инстанс, redis — общий брокер.
type Bus struct {
	Backend string `yaml:"backend"` // memory|redis
}

type Redis struct {
	Addr string `yaml:"addr"`
}

type WS struct {
	SendQueue int    `yaml:"sendQueue"` // размер исходящей очереди на соединение
	PingEvery string `yaml:"pingEvery"` // напр. "15s"
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Bus      Bus      `yaml:"bus"`
	Redis    Redis    `yaml:"redis"`
	WS       WS       `yaml:"ws"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	return LoadConfigFile(path)
}

func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "videochat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	switch c.Bus.Backend {
	case "":
		c.Bus.Backend = "memory"
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when bus.backend=redis")
		}
	default:
		return fmt.Errorf("unknown bus.backend %q", c.Bus.Backend)
	}
	if c.WS.SendQueue <= 0 {
		c.WS.SendQueue = 32
	}
	return nil
}

// PingInterval парсит ws.pingEvery с дефолтом.
func (c *Config) PingInterval() time.Duration {
	return parseDurationOr(15*time.Second, c.WS.PingEvery)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
