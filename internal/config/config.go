package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config структура конфигурации приложения
type Config struct {
	Server struct {
		Port        int
		Host        string
		GRPCPort    int
		Environment string
	}
	Database struct {
		Enabled  bool // без базы сессии хранятся в памяти
		Host     string
		Port     string
		Name     string
		User     string
		Password string
		SSLMode  string
	}
	Detector struct {
		CellSize        int
		CenterHalfWidth int
		DilateEdges     bool
		MaxMaskPixels   int
	}
	Classifier struct {
		Capacity            int
		DominanceFraction   float64
		TwoLaneFraction     float64
		FourWayDeadzone     float64
		LaneChangeThreshold float64
	}
	Transport struct {
		Kind       string // none, udp или serial
		Address    string
		SerialPort string
		BaudRate   int
		Interval   time.Duration
	}
	Logging struct {
		Level string
	}
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() *Config {
	cfg := &Config{}

	// Конфигурация сервера
	cfg.Server.Port = getEnvInt("SERVER_PORT", 8080)
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.GRPCPort = getEnvInt("GRPC_PORT", 9090)
	cfg.Server.Environment = getEnv("ENVIRONMENT", "development")

	// Конфигурация базы данных
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", true)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.Name = getEnv("DB_NAME", "road_topology")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres123")
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", "disable")

	// Конфигурация детектора
	cfg.Detector.CellSize = getEnvInt("DETECTOR_CELL_SIZE", 8)
	cfg.Detector.CenterHalfWidth = getEnvInt("DETECTOR_CENTER_HALF_WIDTH", 0)
	cfg.Detector.DilateEdges = getEnvBool("DETECTOR_DILATE_EDGES", false)
	cfg.Detector.MaxMaskPixels = getEnvInt("DETECTOR_MAX_MASK_PIXELS", 4096*4096)

	cfg.Classifier.Capacity = getEnvInt("CLASSIFIER_CAPACITY", 10)
	cfg.Classifier.DominanceFraction = getEnvFloat("CLASSIFIER_DOMINANCE_FRACTION", 0.8)
	cfg.Classifier.TwoLaneFraction = getEnvFloat("CLASSIFIER_TWO_LANE_FRACTION", 0.2)
	cfg.Classifier.FourWayDeadzone = getEnvFloat("CLASSIFIER_FOUR_WAY_DEADZONE", 0.5)
	cfg.Classifier.LaneChangeThreshold = getEnvFloat("CLASSIFIER_LANE_CHANGE_THRESHOLD", 0.03)

	// Конфигурация канала управления
	cfg.Transport.Kind = strings.ToLower(getEnv("TRANSPORT_KIND", "none"))
	cfg.Transport.Address = getEnv("TRANSPORT_ADDRESS", "127.0.0.1:5005")
	cfg.Transport.SerialPort = getEnv("TRANSPORT_SERIAL_PORT", "/dev/ttyUSB0")
	cfg.Transport.BaudRate = getEnvInt("TRANSPORT_BAUD_RATE", 115200)
	cfg.Transport.Interval = getEnvDuration("TRANSPORT_INTERVAL", 50*time.Millisecond)

	// Конфигурация логирования
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	return cfg
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает int значение переменной окружения или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
