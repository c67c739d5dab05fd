package database

import (
	"testing"

	"road-topology-go/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.Name = "roads"
	cfg.Database.User = "car"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "disable"

	assert.Equal(t, "host=db port=5433 user=car password=secret dbname=roads sslmode=disable", DSN(cfg))
}

func TestNilConnection(t *testing.T) {
	assert.ErrorIs(t, Migrate(nil), errNotInitialized)
	assert.ErrorIs(t, HealthCheck(nil), errNotInitialized)
	assert.NoError(t, Close(nil))
}
