// Пакет config загружает настройки сервиса из переменных окружения и необязательного файла .env
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config содержит настройки API и консьюмера событий
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// HTTP
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// Postgres
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	// Redis
	RedisAddr string        `mapstructure:"REDIS_ADDR"`
	RedisTTL  time.Duration `mapstructure:"REDIS_TTL"`

	// NATS
	NATSURL     string `mapstructure:"NATS_URL"`
	NATSSubject string `mapstructure:"NATS_SUBJECT"`

	// ClickHouse и консьюмер
	ClickhouseDSN string `mapstructure:"CLICKHOUSE_DSN"`
	BatchSize     int    `mapstructure:"BATCH_SIZE"`
	ConsumerPort  string `mapstructure:"CONSUMER_PORT"`
	// FlushInterval задаёт, как часто консьюмер сбрасывает неполный пакет
	FlushInterval time.Duration `mapstructure:"FLUSH_INTERVAL"`
}

// Load читает конфигурацию; отсутствие файла .env не является ошибкой
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "appdb")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_TTL", time.Minute)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "inventory")
	v.SetDefault("CLICKHOUSE_DSN", "tcp://localhost:9000?database=appdb")
	v.SetDefault("BATCH_SIZE", 10)
	v.SetDefault("CONSUMER_PORT", "8081")
	v.SetDefault("FLUSH_INTERVAL", 5*time.Second)

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid BATCH_SIZE: %d", cfg.BatchSize)
	}
	return cfg, nil
}

// PostgresDSN собирает строку подключения для lib/pq
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Pretty сообщает, нужен ли человекочитаемый вывод логов
func (c *Config) Pretty() bool {
	return c.Env == "development"
}
