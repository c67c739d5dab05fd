package handler

import (
	"net/http"

	"road-topology-go/internal/command"
	"road-topology-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CommandHandler ручное управление командой
type CommandHandler struct {
	cell   *command.Cell
	logger *logrus.Logger
}

// NewCommandHandler создает новый экземпляр CommandHandler
func NewCommandHandler(cell *command.Cell, logger *logrus.Logger) *CommandHandler {
	return &CommandHandler{cell: cell, logger: logger}
}

// RegisterRoutes регистрирует маршруты API
func (h *CommandHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/command", h.GetCommand)
	api.PUT("/command/override", h.SetOverride)
	api.DELETE("/command/override", h.ReleaseOverride)
}

// GetCommand возвращает текущую команду
func (h *CommandHandler) GetCommand(c *gin.Context) {
	cmd := h.cell.Load()
	c.JSON(http.StatusOK, models.CommandResponse{
		Thrust:   cmd.Thrust,
		Steering: cmd.Steering,
		Blink:    cmd.Blink,
		Manual:   h.cell.Manual(),
	})
}

// SetOverride включает ручную команду
func (h *CommandHandler) SetOverride(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат команды: " + err.Error()})
		return
	}
	if req.Blink < -1 || req.Blink > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blink должен быть -1, 0 или 1"})
		return
	}

	h.cell.Override(command.Command{Thrust: req.Thrust, Steering: req.Steering, Blink: req.Blink})
	h.logger.WithFields(logrus.Fields{
		"thrust":   req.Thrust,
		"steering": req.Steering,
		"blink":    req.Blink,
	}).Info("Включено ручное управление")

	c.Status(http.StatusNoContent)
}

// ReleaseOverride отключает ручное управление
func (h *CommandHandler) ReleaseOverride(c *gin.Context) {
	h.cell.Release()
	h.logger.Info("Ручное управление отключено")
	c.Status(http.StatusNoContent)
}
