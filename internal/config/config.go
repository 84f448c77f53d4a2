package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config - application configuration loaded from YAML with env overrides
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database" validate:"required"`
	Redis    RedisConfig    `yaml:"redis"`
	Tariff   TariffConfig   `yaml:"tariff"`
	Rules    RulesConfig    `yaml:"rules" validate:"required"`
	Model    ModelConfig    `yaml:"model"`
	Data     DataConfig     `yaml:"data"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // dev/prod, controls logger and gin mode
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"` // empty disables the forecast cache
}

type TariffConfig struct {
	// UnitPrice is the flat tariff in currency units per kWh. It is the
	// single source for every cost figure in the API.
	UnitPrice float64 `yaml:"unit_price" validate:"gte=0"`
}

type RulesConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type ModelConfig struct {
	Path string `yaml:"path"`
}

type DataConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// Load reads the YAML config at path and applies defaults and
// environment overrides for deploy-specific values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "dev"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Tariff.UnitPrice == 0 {
		c.Tariff.UnitPrice = 0.12
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}
