package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"road-topology-go/internal/edgemask"
	"road-topology-go/internal/service"
	"road-topology-go/internal/tilemap"
	"road-topology-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxMaskBytes ограничение на размер загружаемой маски
const maxMaskBytes = 32 << 20

// SessionHandler обрабатывает HTTP запросы для работы с сессиями и кадрами
type SessionHandler struct {
	detector  *service.DetectorService
	sessions  *service.SessionService
	maxPixels int
	logger    *logrus.Logger
}

// NewSessionHandler создает новый экземпляр SessionHandler.
// maxPixels ограничивает площадь загружаемой маски, 0 означает tilemap.MaxPixels.
func NewSessionHandler(detector *service.DetectorService, sessions *service.SessionService, maxPixels int, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		detector:  detector,
		sessions:  sessions,
		maxPixels: maxPixels,
		logger:    logger,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *SessionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.POST("/sessions/:id/frames", h.ProcessFrame)
	api.GET("/sessions/:id/frames", h.ListFrames)
	api.GET("/sessions/:id/tilemap.png", h.GetTilemap)
}

// CreateSession создает сессию обработки
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат запроса: " + err.Error()})
		return
	}

	session, err := h.detector.CreateSession(req)
	if err != nil {
		if errors.Is(err, tilemap.ErrInvalidCellSize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Ошибка создания сессии: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка создания сессии"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions возвращает список сессий с пагинацией
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	sessions, total, err := h.sessions.ListSessions(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения списка сессий"})
		return
	}

	c.JSON(http.StatusOK, models.ListSessionsResponse{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		Size:     size,
	})
}

// GetSession возвращает сессию со статистикой
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession удаляет сессию
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.detector.DeleteSession(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Сессия удалена"})
}

// ProcessFrame принимает маску кадра файлом mask в multipart форме
// или сырыми байтами в теле с параметрами width и height
func (h *SessionHandler) ProcessFrame(c *gin.Context) {
	sessionID := c.Param("id")

	mask, err := readMask(c, h.maxPixels)
	if err != nil {
		h.logger.WithField("session", sessionID).Warnf("Некорректная маска: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.detector.ProcessFrame(sessionID, mask)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFrames возвращает последние кадры сессии
func (h *SessionHandler) ListFrames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	frames, err := h.sessions.ListFrames(c.Param("id"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ListFramesResponse{Frames: frames, Total: len(frames)})
}

// GetTilemap отдает отрисовку карты последнего кадра
func (h *SessionHandler) GetTilemap(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.detector.RenderTilemap(c.Param("id"), &buf); err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *SessionHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Сессия не найдена"})
	case errors.Is(err, tilemap.ErrMaskSize), errors.Is(err, tilemap.ErrTooLarge), errors.Is(err, tilemap.ErrInvalidCellSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("Ошибка обработки запроса %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка"})
	}
}

func readMask(c *gin.Context, maxPixels int) (tilemap.EdgeMask, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("mask")
		if err != nil {
			return tilemap.EdgeMask{}, errors.New("файл mask обязателен")
		}
		f, err := file.Open()
		if err != nil {
			return tilemap.EdgeMask{}, err
		}
		defer f.Close()

		mask, _, err := edgemask.Decode(io.LimitReader(f, maxMaskBytes), maxPixels)
		return mask, err
	}

	width, errW := strconv.Atoi(c.Query("width"))
	height, errH := strconv.Atoi(c.Query("height"))
	if errW != nil || errH != nil {
		return tilemap.EdgeMask{}, errors.New("для сырой маски нужны параметры width и height")
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMaskBytes))
	if err != nil {
		return tilemap.EdgeMask{}, err
	}
	return edgemask.FromRaw(data, width, height, maxPixels)
}
