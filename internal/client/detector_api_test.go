package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"road-topology-go/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *DetectorAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewDetectorAPIClient(srv.URL+"/api/v1", 5*time.Second, logger)
}

func TestCreateSessionAndSendMask(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sessions":
			var req models.CreateSessionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.SessionResponse{ID: "s1", Name: req.Name, CellSize: req.CellSize})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sessions/s1/frames":
			file, header, err := r.FormFile("mask")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "frame.png", header.Filename)
			assert.Equal(t, []byte("png-bytes"), data)
			_ = json.NewEncoder(w).Encode(models.FrameResponse{Index: 4, DecisionName: "left", Decision: -1})
		default:
			http.NotFound(w, r)
		}
	})

	session, err := client.CreateSession("track", 16)
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, 16, session.CellSize)

	frame, err := client.SendMask("s1", "frame.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Index)
	assert.Equal(t, -1, frame.Decision)
}

func TestErrorStatus(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
	})

	_, err := client.CheckHealth()
	assert.ErrorContains(t, err, "503")
}
