package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Local      LocalConfig      `yaml:"local"`
	Logging    LoggingConfig    `yaml:"logging"`
	Owner      OwnerConfig      `yaml:"owner"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig описывает удалённый PostgreSQL; пустой url означает,
// что бэкенд не сконфигурирован и данные живут в локальном хранилище
type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// LocalConfig - путь к файлу локального хранилища (fallback)
type LocalConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type OwnerConfig struct {
	ID string `yaml:"id"`
}

type RecurrenceConfig struct {
	ResetTime string `yaml:"reset_time"` // HH:MM местного времени
}

type RateLimitConfig struct {
	RPM int `yaml:"rpm"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yml"
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	// переменная окружения важнее файла
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Local.Path == "" {
		c.Local.Path = "habitual.db"
	}
	if c.Owner.ID == "" {
		c.Owner.ID = "default"
	}
	if c.Recurrence.ResetTime == "" {
		c.Recurrence.ResetTime = "00:00"
	}
	if c.RateLimit.RPM == 0 {
		c.RateLimit.RPM = 100
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.MinConnections == 0 {
		c.Database.MinConnections = 2
	}
	if c.Database.IdleTimeout == 0 {
		c.Database.IdleTimeout = 5 * time.Minute
	}
}

// RemoteConfigured - бинарный переключатель хранилища
func (c *Config) RemoteConfigured() bool {
	return c.Database.URL != ""
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
