package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Detector.CellSize)
	assert.Equal(t, 4096*4096, cfg.Detector.MaxMaskPixels)
	assert.Equal(t, 10, cfg.Classifier.Capacity)
	assert.InDelta(t, 0.8, cfg.Classifier.DominanceFraction, 1e-12)
	assert.InDelta(t, 0.2, cfg.Classifier.TwoLaneFraction, 1e-12)
	assert.InDelta(t, 0.5, cfg.Classifier.FourWayDeadzone, 1e-12)
	assert.InDelta(t, 0.03, cfg.Classifier.LaneChangeThreshold, 1e-12)
	assert.Equal(t, "none", cfg.Transport.Kind)
	assert.Equal(t, 50*time.Millisecond, cfg.Transport.Interval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DETECTOR_DILATE_EDGES", "true")
	t.Setenv("DETECTOR_MAX_MASK_PIXELS", "307200")
	t.Setenv("CLASSIFIER_CAPACITY", "20")
	t.Setenv("CLASSIFIER_LANE_CHANGE_THRESHOLD", "0.05")
	t.Setenv("TRANSPORT_KIND", "UDP")
	t.Setenv("TRANSPORT_INTERVAL", "100ms")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Detector.DilateEdges)
	assert.Equal(t, 640*480, cfg.Detector.MaxMaskPixels)
	assert.Equal(t, 20, cfg.Classifier.Capacity)
	assert.InDelta(t, 0.05, cfg.Classifier.LaneChangeThreshold, 1e-12)
	assert.Equal(t, "udp", cfg.Transport.Kind)
	assert.Equal(t, 100*time.Millisecond, cfg.Transport.Interval)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("CLASSIFIER_DOMINANCE_FRACTION", "most")
	t.Setenv("DETECTOR_DILATE_EDGES", "maybe")
	t.Setenv("TRANSPORT_INTERVAL", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 0.8, cfg.Classifier.DominanceFraction, 1e-12)
	assert.False(t, cfg.Detector.DilateEdges)
	assert.Equal(t, 50*time.Millisecond, cfg.Transport.Interval)
}
