package service

import (
	"bytes"
	"image/png"
	"io"
	"testing"

	"road-topology-go/internal/command"
	"road-topology-go/internal/pipeline"
	"road-topology-go/internal/repository"
	"road-topology-go/internal/temporal"
	"road-topology-go/internal/tilemap"
	"road-topology-go/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const cell = 8

// junctionMask прямая дорога с развилкой влево и вправо вверху кадра
func junctionMask() tilemap.EdgeMask {
	rows := []string{
		"##########",
		"..........",
		"..........",
		"###....###",
		"..#....#..",
		"..#....#..",
		"..#....#..",
		"..#....#..",
		"..#....#..",
		"..#....#..",
	}
	mask := tilemap.NewEdgeMask(len(rows[0])*cell, len(rows)*cell)
	for ty, row := range rows {
		for tx, r := range row {
			if r == '#' {
				mask.Pix[(ty*cell+cell/2)*mask.Width+tx*cell+cell/2] = 255
			}
		}
	}
	return mask
}

type fixture struct {
	repo     repository.SessionRepository
	cell     *command.Cell
	detector *DetectorService
	sessions *SessionService
}

func newFixture() fixture {
	repo := repository.NewMemoryRepository()
	cell := command.NewCell()
	logger := quietLogger()
	return fixture{
		repo:     repo,
		cell:     cell,
		detector: NewDetectorService(repo, cell, pipeline.DefaultOptions(), logger),
		sessions: NewSessionService(repo, logger),
	}
}

func TestCreateSessionUsesDefaultCellSize(t *testing.T) {
	f := newFixture()

	resp, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "track"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 8, resp.CellSize)

	_, err = f.detector.CreateSession(models.CreateSessionRequest{Name: "bad", CellSize: -1})
	assert.ErrorIs(t, err, tilemap.ErrInvalidCellSize)
}

func TestProcessFramePublishesDecision(t *testing.T) {
	f := newFixture()
	s, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "track"})
	require.NoError(t, err)

	var last *models.FrameResponse
	for i := 0; i < 10; i++ {
		last, err = f.detector.ProcessFrame(s.ID, junctionMask())
		require.NoError(t, err)
	}

	assert.Equal(t, 9, last.Index)
	assert.Equal(t, "left|right", last.TopologyName)
	assert.Equal(t, "right", last.DecisionName)
	assert.Equal(t, int8(temporal.BlinkRight), f.cell.Load().Blink)

	got, err := f.sessions.GetSession(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stats.TotalFrames)
	assert.Equal(t, 1, got.Stats.LastDecision)
	assert.InDelta(t, 1.0/3.0, got.Stats.MeanOffset, 1e-9)

	frames, err := f.sessions.ListFrames(s.ID, 3)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, 7, frames[0].Index)
	assert.Equal(t, 9, frames[2].Index)
}

func TestProcessFrameUnknownSession(t *testing.T) {
	f := newFixture()

	_, err := f.detector.ProcessFrame("missing", junctionMask())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.sessions.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPipelineRestoredAfterRestart(t *testing.T) {
	f := newFixture()
	s, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "track", CellSize: 8})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.detector.ProcessFrame(s.ID, junctionMask())
		require.NoError(t, err)
	}

	restarted := NewDetectorService(f.repo, command.NewCell(), pipeline.DefaultOptions(), quietLogger())
	resp, err := restarted.ProcessFrame(s.ID, junctionMask())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Index)
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newFixture()
	a, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "a"})
	require.NoError(t, err)
	b, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "b"})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err = f.detector.ProcessFrame(a.ID, junctionMask())
		require.NoError(t, err)
	}
	resp, err := f.detector.ProcessFrame(b.ID, junctionMask())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Index)
	assert.Equal(t, "none", resp.DecisionName)
}

func TestRenderTilemap(t *testing.T) {
	f := newFixture()
	s, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "track"})
	require.NoError(t, err)
	_, err = f.detector.ProcessFrame(s.ID, junctionMask())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.detector.RenderTilemap(s.ID, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestDeleteSession(t *testing.T) {
	f := newFixture()
	s, err := f.detector.CreateSession(models.CreateSessionRequest{Name: "track"})
	require.NoError(t, err)

	require.NoError(t, f.detector.DeleteSession(s.ID))
	assert.ErrorIs(t, f.detector.DeleteSession(s.ID), ErrSessionNotFound)

	_, err = f.detector.ProcessFrame(s.ID, junctionMask())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessions(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"c", "a", "b"} {
		_, err := f.detector.CreateSession(models.CreateSessionRequest{Name: name})
		require.NoError(t, err)
	}

	sessions, total, err := f.sessions.ListSessions(1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, sessions, 2)
}
