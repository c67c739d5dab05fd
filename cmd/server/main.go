package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"road-topology-go/internal/command"
	"road-topology-go/internal/config"
	"road-topology-go/internal/database"
	"road-topology-go/internal/handler"
	"road-topology-go/internal/pipeline"
	"road-topology-go/internal/repository"
	"road-topology-go/internal/rpc"
	"road-topology-go/internal/service"
	"road-topology-go/internal/temporal"
	"road-topology-go/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	cfg := config.LoadConfig()

	// Инициализируем логгер
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Запуск Road Topology API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище сессий
	repo, healthCheck, closeDB := openRepository(cfg, logger)
	defer closeDB()

	cell := command.NewCell()

	opts := pipelineOptions(cfg)
	if _, err := pipeline.New(opts, logrus.NewEntry(logger)); err != nil {
		logger.Fatalf("Некорректные параметры детектора: %v", err)
	}

	detector := service.NewDetectorService(repo, cell, opts, logger)
	sessions := service.NewSessionService(repo, logger)

	// Канал управления
	if sender := openSender(cfg, logger); sender != nil {
		defer sender.Close()
		go func() {
			if err := transport.Publish(ctx, cell, sender, cfg.Transport.Interval, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Отправка команд завершилась с ошибкой: %v", err)
			}
		}()
	}

	// gRPC сервис управления
	grpcServer := grpc.NewServer()
	rpc.Register(grpcServer, rpc.NewServer(cell, logger))
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatalf("Ошибка запуска gRPC сервера: %v", err)
	}
	go func() {
		logger.Infof("gRPC сервер запущен на %s", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("gRPC сервер остановлен: %v", err)
		}
	}()

	// Настраиваем Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	handler.NewSessionHandler(detector, sessions, cfg.Detector.MaxMaskPixels, logger).RegisterRoutes(api)
	handler.NewCommandHandler(cell, logger).RegisterRoutes(api)
	handler.NewHealthHandler(healthCheck, logger).RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Road Topology API Server",
			"version": handler.Version,
			"status":  "running",
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Сервер запущен на %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Ошибка остановки HTTP сервера: %v", err)
	}
	grpcServer.GracefulStop()
}

// openRepository подключает PostgreSQL или хранилище в памяти
func openRepository(cfg *config.Config, logger *logrus.Logger) (repository.SessionRepository, func() error, func()) {
	if !cfg.Database.Enabled {
		logger.Warn("База данных отключена, сессии хранятся в памяти")
		return repository.NewMemoryRepository(), func() error { return nil }, func() {}
	}

	logger.Info("Подключение к базе данных...")
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	logger.Info("Выполнение миграций базы данных...")
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Ошибка выполнения миграций: %v", err)
	}

	if err := database.HealthCheck(db); err != nil {
		logger.Fatalf("База данных недоступна: %v", err)
	}
	logger.Info("База данных успешно подключена и готова к работе")

	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Errorf("Ошибка закрытия базы данных: %v", err)
		}
	}
	return repository.NewSessionRepository(db), func() error { return database.HealthCheck(db) }, closeDB
}

// openSender открывает канал управления по TRANSPORT_KIND, nil если канал отключен
func openSender(cfg *config.Config, logger *logrus.Logger) transport.Sender {
	var (
		sender transport.Sender
		err    error
	)

	switch cfg.Transport.Kind {
	case "udp":
		sender, err = transport.NewUDPSender(cfg.Transport.Address)
	case "serial":
		sender, err = transport.NewSerialSender(cfg.Transport.SerialPort, cfg.Transport.BaudRate)
	case "none", "":
		logger.Info("Канал управления отключен")
		return nil
	default:
		logger.Fatalf("Неизвестный тип канала управления: %s", cfg.Transport.Kind)
	}
	if err != nil {
		logger.Fatalf("Ошибка открытия канала управления: %v", err)
	}

	logger.WithField("kind", cfg.Transport.Kind).Info("Канал управления открыт")
	return sender
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		CellSize:        cfg.Detector.CellSize,
		CenterHalfWidth: cfg.Detector.CenterHalfWidth,
		TwoLaneFraction: cfg.Classifier.TwoLaneFraction,
		DilateEdges:     cfg.Detector.DilateEdges,
		Classifier: temporal.Config{
			Capacity:            cfg.Classifier.Capacity,
			DominanceFraction:   cfg.Classifier.DominanceFraction,
			FourWayDeadzone:     cfg.Classifier.FourWayDeadzone,
			LaneChangeThreshold: cfg.Classifier.LaneChangeThreshold,
		},
	}
}

// corsMiddleware добавляет заголовки CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
