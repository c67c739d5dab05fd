package handler

import (
	"net/http"

	"road-topology-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version версия сервиса
const Version = "1.0.0"

// HealthHandler проверка состояния сервиса
type HealthHandler struct {
	check  func() error
	logger *logrus.Logger
}

// NewHealthHandler создает обработчик, check проверяет базу данных
func NewHealthHandler(check func() error, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{check: check, logger: logger}
}

// RegisterRoutes регистрирует маршруты API
func (h *HealthHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.CheckHealth)
}

// CheckHealth проверяет состояние сервиса
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	if err := h.check(); err != nil {
		h.logger.Errorf("База данных недоступна: %v", err)
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
			Status:   "unhealthy",
			Database: err.Error(),
			Version:  Version,
		})
		return
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Database: "ok",
		Version:  Version,
	})
}
