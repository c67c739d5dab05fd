package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"road-topology-go/internal/command"
	"road-topology-go/internal/pipeline"
	"road-topology-go/internal/repository"
	"road-topology-go/internal/service"
	"road-topology-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	cell   *command.Cell
}

func newTestServer(t *testing.T, health func() error) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := repository.NewMemoryRepository()
	cell := command.NewCell()
	detector := service.NewDetectorService(repo, cell, pipeline.DefaultOptions(), logger)
	sessions := service.NewSessionService(repo, logger)

	router := gin.New()
	api := router.Group("/api/v1")
	NewSessionHandler(detector, sessions, 0, logger).RegisterRoutes(api)
	NewCommandHandler(cell, logger).RegisterRoutes(api)
	NewHealthHandler(health, logger).RegisterRoutes(api)

	return testServer{router: router, cell: cell}
}

func (s testServer) do(t *testing.T, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s testServer) createSession(t *testing.T) models.SessionResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "application/json", bytes.NewBufferString(`{"name":"track"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session models.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session
}

// corridorPNG прямая дорога 10x6 клеток по 8 пикселей со стенками в столбцах 2 и 7
func corridorPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 80, 48))
	for ty := 0; ty < 6; ty++ {
		for _, tx := range []int{2, 7} {
			img.SetGray(tx*8+4, ty*8+4, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	session := s.createSession(t)
	assert.Equal(t, "track", session.Name)
	assert.Equal(t, 8, session.CellSize)

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	s := newTestServer(t, func() error { return nil })

	w := s.do(t, http.MethodPost, "/api/v1/sessions", "application/json", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sessions", "application/json", bytes.NewBufferString(`{"name":"x","cell_size":-3}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessFrameMultipart(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	session := s.createSession(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("mask", "frame.png")
	require.NoError(t, err)
	_, err = part.Write(corridorPNG(t))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := s.do(t, http.MethodPost, "/api/v1/sessions/"+session.ID+"/frames", writer.FormDataContentType(), &body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var frame models.FrameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame))
	assert.Equal(t, "forward", frame.TopologyName)
	assert.InDelta(t, 1.0/3.0, frame.Offset, 1e-9)
	assert.Equal(t, 12, frame.BoundaryEdgePixels)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID+"/frames?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var frames models.ListFramesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frames))
	assert.Equal(t, 1, frames.Total)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID+"/tilemap.png", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	_, err = png.Decode(w.Body)
	assert.NoError(t, err)
}

func TestProcessFrameRaw(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	session := s.createSession(t)
	path := "/api/v1/sessions/" + session.ID + "/frames"

	raw := make([]byte, 16*16)
	w := s.do(t, http.MethodPost, path+"?width=16&height=16", "application/octet-stream", bytes.NewReader(raw))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, path+"?width=16&height=15", "application/octet-stream", bytes.NewReader(raw))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path, "application/octet-stream", bytes.NewReader(raw))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sessions/unknown/frames?width=16&height=16", "application/octet-stream", bytes.NewReader(raw))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessFrameRejectsOversizedMasks(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	session := s.createSession(t)
	path := "/api/v1/sessions/" + session.ID + "/frames"

	t.Run("multipart png larger than pixel limit", func(t *testing.T) {
		var img bytes.Buffer
		require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 8000, 8000))))

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("mask", "huge.png")
		require.NoError(t, err)
		_, err = part.Write(img.Bytes())
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		w := s.do(t, http.MethodPost, path, writer.FormDataContentType(), &body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("raw dimensions whose product overflows", func(t *testing.T) {
		w := s.do(t, http.MethodPost, path+"?width=4294967296&height=4294967296", "application/octet-stream", bytes.NewReader(nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	w := s.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var frames models.ListFramesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frames))
	assert.Zero(t, frames.Total)
}

func TestListAndDeleteSessions(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	session := s.createSession(t)
	s.createSession(t)

	w := s.do(t, http.MethodGet, "/api/v1/sessions?page=1&size=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.ListSessionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Sessions, 1)

	w = s.do(t, http.MethodDelete, "/api/v1/sessions/"+session.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/sessions/"+session.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommandOverride(t *testing.T) {
	s := newTestServer(t, func() error { return nil })

	w := s.do(t, http.MethodPut, "/api/v1/command/override", "application/json",
		bytes.NewBufferString(`{"thrust":50,"steering":-5,"blink":1}`))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, command.Command{Thrust: 50, Steering: -5, Blink: 1}, s.cell.Load())

	w = s.do(t, http.MethodGet, "/api/v1/command", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Manual)
	assert.EqualValues(t, 50, resp.Thrust)

	w = s.do(t, http.MethodPut, "/api/v1/command/override", "application/json", bytes.NewBufferString(`{"blink":3}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/command/override", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, s.cell.Manual())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, func() error { return nil })
	w := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s = newTestServer(t, func() error { return errors.New("connection refused") })
	w = s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
