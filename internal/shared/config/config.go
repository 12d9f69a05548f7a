package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config — полная конфигурация сервиса
type Config struct {
	HTTP      HTTPConfig    `yaml:"http"`
	Database  DBConfig      `yaml:"database"`
	RabbitMQ  MQConfig      `yaml:"rabbitmq"`
	WebSocket WSConfig      `yaml:"websocket"`
	JWT       JWTConfig     `yaml:"jwt"`
	Storage   StorageConfig `yaml:"storage"`
	Log       LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Port                int `yaml:"port"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

type MQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
}

// WSConfig — параметры канала уведомлений
type WSConfig struct {
	SendBuffer          int   `yaml:"send_buffer"`
	WriteWaitSeconds    int   `yaml:"write_wait_seconds"`
	PongWaitSeconds     int   `yaml:"pong_wait_seconds"`
	PingIntervalSeconds int   `yaml:"ping_interval_seconds"`
	MaxMessageSize      int64 `yaml:"max_message_size"`
}

type JWTConfig struct {
	Secret           string `yaml:"secret"`
	Issuer           string `yaml:"issuer"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshTTLDays   int    `yaml:"refresh_ttl_days"`
}

// StorageConfig выбирает реализацию репозиториев: postgres | memory
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Default — значения по умолчанию, поверх которых ложатся YAML и ENV
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8000, ReadTimeoutSeconds: 15, WriteTimeoutSeconds: 15},
		Database: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "ridematch",
			Password: "ridematch",
			Database: "ridematch",
			SSLMode:  "disable",
			MaxConns: 20,
			MinConns: 2,
		},
		RabbitMQ: MQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
			Exchange: "ride_topic",
		},
		WebSocket: WSConfig{
			SendBuffer:          64,
			WriteWaitSeconds:    10,
			PongWaitSeconds:     60,
			PingIntervalSeconds: 30,
			MaxMessageSize:      8192,
		},
		JWT: JWTConfig{
			Issuer:           "ridematch",
			AccessTTLMinutes: 30,
			RefreshTTLDays:   7,
		},
		Storage: StorageConfig{Backend: BackendPostgres},
		Log:     LogConfig{Level: "INFO"},
	}
}

// Load — .env (если есть) → YAML из CONFIG_FILE (по умолчанию ./config/config.yaml) → ENV перекрывает
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("CONFIG_FILE", filepath.Join("config", "config.yaml"))
	if err := loadYAML(path, &cfg); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Port = getEnvInt("HTTP_PORT", cfg.HTTP.Port)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxConns = cast.ToInt32(getEnv("DB_MAX_CONNS", cast.ToString(cfg.Database.MaxConns)))

	cfg.RabbitMQ.Enabled = getEnvBool("RABBITMQ_ENABLED", cfg.RabbitMQ.Enabled)
	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)

	cfg.WebSocket.SendBuffer = getEnvInt("WS_SEND_BUFFER", cfg.WebSocket.SendBuffer)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.AccessTTLMinutes = getEnvInt("JWT_ACCESS_TTL_MINUTES", cfg.JWT.AccessTTLMinutes)
	cfg.JWT.RefreshTTLDays = getEnvInt("JWT_REFRESH_TTL_DAYS", cfg.JWT.RefreshTTLDays)

	cfg.Storage.Backend = strings.ToLower(getEnv("STORAGE_BACKEND", cfg.Storage.Backend))

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvBool("LOG_PRETTY", cfg.Log.Pretty)
}

// Validate проверяет то, без чего сервис стартовать не должен
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.JWT.AccessTTLMinutes <= 0 || c.JWT.RefreshTTLDays <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	switch c.Storage.Backend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return errors.New("config: websocket send buffer must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

func (c WSConfig) WriteWait() time.Duration {
	return time.Duration(c.WriteWaitSeconds) * time.Second
}

func (c WSConfig) PongWait() time.Duration {
	return time.Duration(c.PongWaitSeconds) * time.Second
}

func (c WSConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
