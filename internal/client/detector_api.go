package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"road-topology-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// DetectorAPIClient клиент HTTP API детектора
type DetectorAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewDetectorAPIClient создает новый клиент, baseURL вида http://host:8080/api/v1
func NewDetectorAPIClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *DetectorAPIClient {
	return &DetectorAPIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CreateSession создает сессию обработки
func (c *DetectorAPIClient) CreateSession(name string, cellSize int) (*models.SessionResponse, error) {
	payload, err := json.Marshal(models.CreateSessionRequest{Name: name, CellSize: cellSize})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	var session models.SessionResponse
	if err := c.do(http.MethodPost, "/sessions", "application/json", bytes.NewReader(payload), http.StatusCreated, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SendMask отправляет файл маски кадра
func (c *DetectorAPIClient) SendMask(sessionID, filename string, data []byte) (*models.FrameResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("mask", filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания form field для маски: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("ошибка записи маски: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("ошибка закрытия multipart writer: %w", err)
	}

	var frame models.FrameResponse
	path := fmt.Sprintf("/sessions/%s/frames", sessionID)
	if err := c.do(http.MethodPost, path, writer.FormDataContentType(), &body, http.StatusOK, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// GetSession возвращает сессию со статистикой
func (c *DetectorAPIClient) GetSession(sessionID string) (*models.SessionResponse, error) {
	var session models.SessionResponse
	if err := c.do(http.MethodGet, "/sessions/"+sessionID, "", nil, http.StatusOK, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CheckHealth проверяет состояние API
func (c *DetectorAPIClient) CheckHealth() (*models.HealthResponse, error) {
	c.logger.Debug("Проверка здоровья API детектора")

	var health models.HealthResponse
	if err := c.do(http.MethodGet, "/health", "", nil, http.StatusOK, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *DetectorAPIClient) do(method, path, contentType string, body io.Reader, wantStatus int, out interface{}) error {
	url := c.baseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("ошибка создания HTTP запроса: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debugf("Отправка %s запроса на %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("API вернул ошибку: статус %d, тело: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("ошибка парсинга JSON ответа: %w", err)
	}
	return nil
}
