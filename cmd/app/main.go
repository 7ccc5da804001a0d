package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	httpin "github.com/vertel/af-booking-service/internal/adapters/in/http"
	"github.com/vertel/af-booking-service/internal/adapters/in/rabbitmq"
	"github.com/vertel/af-booking-service/internal/adapters/out/cache"
	"github.com/vertel/af-booking-service/internal/adapters/out/edi"
	"github.com/vertel/af-booking-service/internal/adapters/out/logger"
	"github.com/vertel/af-booking-service/internal/adapters/out/sqlite"
	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
	"github.com/vertel/af-booking-service/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"database":        cfg.Database.Path,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация хранилища
	store, err := sqlite.NewStore(cfg.Database.Path, logger.WithModule("SqliteStore"))
	if err != nil {
		logger.Error("app.sqlite.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("app.sqlite.close_failed", out.LogFields{
				"error": err.Error(),
			})
		}
	}()

	slotRepository := sqlite.NewSlotRepository(store)
	appointmentRepository := sqlite.NewAppointmentRepository(store)
	partnerRepository := sqlite.NewPartnerRepository(store)

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		lruCache, err := cache.NewLRUCacheAdapter(cfg, logger.WithModule("CacheAdapter"))
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = lruCache
	}

	// Публикация EDI-событий только если включен RabbitMQ
	var ediAdapter out.EdiPort
	if cfg.RabbitMQ.Enabled {
		publisher, err := edi.NewAmqpPublisher(cfg, logger.WithModule("EdiPublisher"))
		if err != nil {
			logger.Error("app.edi.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		ediAdapter = publisher

		defer func() {
			if err := publisher.Stop(); err != nil {
				logger.Error("app.edi.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	// Инициализация сервиса
	bookingService := services.NewBookingService(
		slotRepository,
		appointmentRepository,
		partnerRepository,
		cacheAdapter,
		ediAdapter,
		cfg,
		logger.WithModule("BookingService"),
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := httpin.NewBookingController(
		bookingService,
		cfg,
		logger.WithModule("HttpController"),
	)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewJobseekerListener(
			bookingService,
			cfg,
			logger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		// Добавляем остановку RabbitMQ в defer
		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	// Дополнительное логирование для разработки
	if cfg.IsLocal() {
		logger.Debug("app.config.debug", out.LogFields{
			"config": map[string]interface{}{
				"http": map[string]string{
					"host": cfg.HTTP.Host,
					"port": cfg.HTTP.Port,
				},
				"database": map[string]string{
					"path": cfg.Database.Path,
				},
				"rabbitmq": map[string]interface{}{
					"enabled": cfg.RabbitMQ.Enabled,
					"url":     cfg.RabbitMQ.URL,
					"queue":   cfg.RabbitMQ.JobseekerQueue,
				},
				"cache": map[string]interface{}{
					"enabled": cfg.Cache.Enabled,
					"size":    cfg.Cache.Size,
				},
			},
		})
	}
}
