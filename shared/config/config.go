package config

import (
	"fmt"
	"log"
	"time"

	"headshot-server/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса кастомизации.
type Config struct {
	// Логирование
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (персистентность посещённых шагов)
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	VisitedStepTTL time.Duration `envconfig:"VISITED_STEP_TTL" default:"720h"`
	// Необязательный секрет БЕЗ envconfig тега
	RedisPassword string

	// Настройки RabbitMQ
	RabbitMQURL           string `envconfig:"RABBITMQ_URL" required:"true"`
	PackageUpdateExchange string `envconfig:"PACKAGE_UPDATE_EXCHANGE" default:"style_package_update_exchange"`

	// Настройки вычисления завершённости
	IncludeDefaultValues   bool          `envconfig:"COMPLETION_INCLUDE_DEFAULTS" default:"true"`
	ClothingColorsEditable bool          `envconfig:"CLOTHING_COLORS_EDITABLE_WHEN_MISSING" default:"true"`
	VisitedPersistDebounce time.Duration `envconfig:"VISITED_PERSIST_DEBOUNCE" default:"300ms"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации customization-service: %w", err)
	}

	// Обязательный секрет: пароль БД.
	dbPass, err := utils.ReadSecret("db_password")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword = dbPass

	// Необязательный секрет: пароль Redis.
	redisPass, err := utils.ReadSecret("redis_password")
	if err == nil {
		cfg.RedisPassword = redisPass
		log.Println("Redis password loaded from secret.")
	} else {
		log.Printf("Optional secret 'redis_password' not found or failed to read: %v. Assuming no password.", err)
	}

	log.Printf("Конфигурация Customization Service загружена (секреты из файлов):")
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  DB Max Conns: %d", cfg.DBMaxConns)
	log.Printf("  DB Idle Timeout: %v", cfg.DBIdleTimeout)
	log.Printf("  Redis Addr: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  Visited Step TTL: %v", cfg.VisitedStepTTL)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Package Update Exchange: %s", cfg.PackageUpdateExchange)
	log.Printf("  Include Default Values: %v", cfg.IncludeDefaultValues)
	log.Printf("  Visited Persist Debounce: %v", cfg.VisitedPersistDebounce)

	return &cfg, nil
}
