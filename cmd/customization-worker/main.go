package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"headshot-server/shared/catalog"
	"headshot-server/shared/config"
	sharedDatabase "headshot-server/shared/database"
	sharedLogger "headshot-server/shared/logger"
	sharedMessaging "headshot-server/shared/messaging"
	"headshot-server/shared/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// Порт для метрик Prometheus и health-чека
	metricsPort = "9091"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Customization Worker...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Подключение к PostgreSQL
	dbPool, err := setupDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Успешное подключение к PostgreSQL")

	// Применяем миграции схемы до старта каталога
	runner := migration.NewRunner(sharedDatabase.MigrationsFS, sharedDatabase.MigrationsPath, dbPool)
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = runner.Apply(migrateCtx)
	migrateCancel()
	if err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}
	logger.Info("Миграции схемы применены")

	// Подключение к RabbitMQ
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	logger.Info("Успешное подключение к RabbitMQ")

	// Репозиторий пакетов стилей и кэширующий каталог поверх него
	packageRepo := sharedDatabase.NewPgStylePackageRepository(dbPool, logger)

	catalogCtx, catalogCancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalogService, err := catalog.NewCatalogService(catalogCtx, packageRepo, logger)
	catalogCancel()
	if err != nil {
		logger.Fatal("Не удалось загрузить каталог пакетов стилей", zap.Error(err))
	}

	// Консьюмер событий обновления пакетов держит кэш каталога актуальным
	packageUpdateConsumer, err := sharedMessaging.NewPackageUpdateConsumer(
		rabbitConn,
		catalogService,
		logger,
		cfg.PackageUpdateExchange,
	)
	if err != nil {
		logger.Fatal("Не удалось создать PackageUpdateConsumer", zap.Error(err))
	}

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if err := packageUpdateConsumer.StartConsuming(consumerCtx); err != nil {
		logger.Fatal("Не удалось запустить консьюмер обновлений пакетов", zap.Error(err))
	}

	// HTTP-сервер только для метрик Prometheus и health
	metricsServer := startMetricsServer(logger)

	log.Println(" [*] Каталог загружен, ожидание событий обновления. Для выхода нажмите CTRL+C")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	// Сначала останавливаем консьюмер, чтобы не потерять обработку в полёте
	if err := packageUpdateConsumer.Stop(); err != nil {
		logger.Error("Ошибка при остановке консьюмера", zap.Error(err))
	}
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера метрик", zap.Error(err))
	}

	log.Println("Customization Worker успешно остановлен")
}

// startMetricsServer поднимает HTTP-сервер для эндпоинтов /metrics и /health
func startMetricsServer(logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	server := &http.Server{
		Addr:         ":" + metricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Запуск HTTP-сервера для метрик Prometheus и health", zap.String("port", metricsPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ошибка запуска HTTP-сервера для метрик", zap.Error(err))
		}
	}()

	return server
}

// setupDatabase инициализирует и возвращает пул соединений с БД
func setupDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	dsn := cfg.GetDSN()
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var dbPool *pgxpool.Pool
	maxRetries := 5
	retryDelay := 3 * time.Second

	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = dbPool.Ping(ctx)
			if err == nil {
				cancel()
				return dbPool, nil
			}
			dbPool.Close()
		}
		cancel()

		logger.Warn("Не удалось подключиться к PostgreSQL",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("не удалось подключиться к БД после %d попыток: %w", maxRetries, err)
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			// Логируем неожиданное закрытие соединения
			go func() {
				notifyClose := make(chan *amqp.Error)
				conn.NotifyClose(notifyClose)
				if closeErr := <-notifyClose; closeErr != nil {
					logger.Error("Соединение RabbitMQ закрыто неожиданно", zap.Error(closeErr))
				} else {
					logger.Info("Соединение RabbitMQ закрыто штатно")
				}
			}()
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
