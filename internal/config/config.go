package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// EnvPrefix префикс переменных окружения, перекрывающих значения из файла
const EnvPrefix = "APPOINTMENT"

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server" envconfig:"SERVER"`
	Storage   StorageConfig   `toml:"storage" envconfig:"STORAGE"`
	Database  DatabaseConfig  `toml:"database" envconfig:"DATABASE"`
	Logs      LogsConfig      `toml:"logs" envconfig:"LOGS"`
	Metrics   MetricsConfig   `toml:"metrics" envconfig:"METRICS"`
	Directory DirectoryConfig `toml:"directory" envconfig:"DIRECTORY"`
	Sequence  SequenceConfig  `toml:"sequence" envconfig:"SEQUENCE"`
	Booking   BookingConfig   `toml:"booking" envconfig:"BOOKING"`
	RateLimit RateLimitConfig `toml:"ratelimit" envconfig:"RATELIMIT"`
	Events    EventsConfig    `toml:"events" envconfig:"EVENTS"`
	Jobs      JobsConfig      `toml:"jobs" envconfig:"JOBS"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

// StorageConfig выбор хранилища слотов и бронирований
type StorageConfig struct {
	Backend string `toml:"backend" split_words:"true"` // postgres | memory
}

type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" split_words:"true"`
	Level string `toml:"level" split_words:"true"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// DirectoryConfig справочник пациентов и врачей, пустой URL отключает обогащение именами
type DirectoryConfig struct {
	URL     string `toml:"url" split_words:"true"`
	Timeout int    `toml:"timeout" split_words:"true"` // секунды
}

// SequenceConfig счётчик номеров бронирований
type SequenceConfig struct {
	Backend       string `toml:"backend" split_words:"true"` // postgres | redis | memory
	RedisAddr     string `toml:"redis_addr" split_words:"true"`
	RedisPassword string `toml:"redis_password" split_words:"true"`
	RedisDB       int    `toml:"redis_db" split_words:"true"`
	RetentionDays int    `toml:"retention_days" split_words:"true"`
}

type BookingConfig struct {
	Timezone                  string `toml:"timezone" split_words:"true"`
	CancellationWindowMinutes int    `toml:"cancellation_window_minutes" split_words:"true"`
}

// CancellationWindow минимальный запас времени до приёма для отмены
func (b BookingConfig) CancellationWindow() time.Duration {
	return time.Duration(b.CancellationWindowMinutes) * time.Minute
}

// Location часовой пояс клиники
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// RateLimitConfig ограничение частоты создания бронирований на пациента, rps <= 0 отключает
type RateLimitConfig struct {
	RPS   float64 `toml:"rps" split_words:"true"`
	Burst int     `toml:"burst" split_words:"true"`
}

type EventsConfig struct {
	Enabled  bool   `toml:"enabled" split_words:"true"`
	AMQPURL  string `toml:"amqp_url" split_words:"true"`
	Exchange string `toml:"exchange" split_words:"true"`
}

type JobsConfig struct {
	SequenceCleanupCron  string `toml:"sequence_cleanup_cron" split_words:"true"`
	RateLimitCleanupCron string `toml:"ratelimit_cleanup_cron" split_words:"true"`
}

// Load читает TOML файл, затем .env и переменные окружения APPOINTMENT_*
// Отсутствующий файл не ошибка: сервис стартует на значениях по умолчанию
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 10)
	setInt(&c.Server.WriteTimeout, 10)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 15)

	setString(&c.Storage.Backend, BackendPostgres)

	setString(&c.Database.Host, "localhost")
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "appointment_service")

	setInt(&c.Directory.Timeout, 3)

	setString(&c.Sequence.Backend, c.Storage.Backend)
	setInt(&c.Sequence.RetentionDays, 7)

	setString(&c.Booking.Timezone, "UTC")
	setInt(&c.Booking.CancellationWindowMinutes, 120)

	setString(&c.Events.Exchange, "appointments")

	setString(&c.Jobs.SequenceCleanupCron, "0 3 * * *")
	setString(&c.Jobs.RateLimitCleanupCron, "*/10 * * * *")
}

// Validate отклоняет несогласованные значения
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendPostgres, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q: expected postgres or memory", c.Storage.Backend))
	}

	switch c.Sequence.Backend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("sequence.backend %q: expected postgres, redis or memory", c.Sequence.Backend))
	}

	if c.Storage.Backend == BackendMemory && c.Sequence.Backend != BackendMemory {
		problems = append(problems, "sequence.backend must be memory when storage.backend is memory")
	}
	if c.Sequence.Backend == BackendRedis && c.Sequence.RedisAddr == "" {
		problems = append(problems, "sequence.redis_addr is required for the redis backend")
	}
	if c.Storage.Backend == BackendPostgres && c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required for the postgres backend")
	}
	if c.Events.Enabled && c.Events.AMQPURL == "" {
		problems = append(problems, "events.amqp_url is required when events are enabled")
	}
	if c.Booking.CancellationWindowMinutes < 0 {
		problems = append(problems, "booking.cancellation_window_minutes must not be negative")
	}
	if _, err := c.Booking.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.timezone %q: %v", c.Booking.Timezone, err))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		problems = append(problems, "ratelimit.burst must be at least 1 when rps is set")
	}
	if _, err := cron.ParseStandard(c.Jobs.SequenceCleanupCron); err != nil {
		problems = append(problems, fmt.Sprintf("jobs.sequence_cleanup_cron %q: %v", c.Jobs.SequenceCleanupCron, err))
	}
	if _, err := cron.ParseStandard(c.Jobs.RateLimitCleanupCron); err != nil {
		problems = append(problems, fmt.Sprintf("jobs.ratelimit_cleanup_cron %q: %v", c.Jobs.RateLimitCleanupCron, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
