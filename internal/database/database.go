package database

import (
	"errors"
	"fmt"
	"time"

	"road-topology-go/internal/config"
	"road-topology-go/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errNotInitialized = errors.New("database connection is not initialized")

// DSN строка подключения к PostgreSQL
func DSN(cfg *config.Config) string {
	db := cfg.Database
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode,
	)
}

// Connect подключается к базе данных PostgreSQL
func Connect(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	// Логгер GORM пишет через logrus
	newLogger := gormlogger.New(
		logger,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Настройка пула соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Подключение к PostgreSQL установлено")
	return db, nil
}

// Migrate выполняет автомиграции
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errNotInitialized
	}

	if err := db.AutoMigrate(&model.Session{}, &model.FrameRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// HealthCheck проверяет состояние подключения к базе данных
func HealthCheck(db *gorm.DB) error {
	if db == nil {
		return errNotInitialized
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
