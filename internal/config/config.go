package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

// TimeZone - референсная таймзона сервиса.
// Все наивные даты из запросов интерпретируются в ней
var TimeZone *time.Location = time.UTC

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Stockholm"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Booking struct {
		// Базовая длительность одного слота
		SlotDurationMinutes int `env:"BOOKING_SLOT_DURATION_MINUTES" envDefault:"30"`
		// Сколько секунд неподтвержденная резервация блокирует свои слоты
		ReservationTimeoutSeconds int `env:"BOOKING_RESERVATION_TIMEOUT_SECONDS" envDefault:"300"`
		// Подпись сотрудника по умолчанию для бронирований из интеграций
		DefaultEmployee string `env:"BOOKING_DEFAULT_EMPLOYEE" envDefault:"sunea"`
		// Код офиса по умолчанию
		DefaultOfficeCode string `env:"BOOKING_DEFAULT_OFFICE_CODE" envDefault:"0248"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"af-booking.db"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"af_booking:af_booking"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"af-booking"`
		// Очередь входящих сообщений о соискателях (RASK)
		JobseekerQueue string `env:"RABBITMQ_JOBSEEKER_QUEUE" envDefault:"af-booking.jobseeker"`
	}

	Cache struct {
		Enabled bool `env:"CACHE_ENABLED"`
		Size    int  `env:"CACHE_SIZE" envDefault:"1000"`
		// Время жизни закэшированных свободных слотов
		TTLSeconds int `env:"CACHE_TTL_SECONDS" envDefault:"60"`
	}
}

func NewConfig() (*Config, error) {
	// .env нужен только для локальной разработки, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}
	TimeZone = loc

	// Разделение basic-клиентов
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	return cfg, nil
}

func (c *Config) SlotDuration() time.Duration {
	return time.Duration(c.Booking.SlotDurationMinutes) * time.Minute
}

func (c *Config) ReservationTimeout() time.Duration {
	return time.Duration(c.Booking.ReservationTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
