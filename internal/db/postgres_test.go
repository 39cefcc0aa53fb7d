package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5432"
	cfg.Database.User = "uniconnect"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "uniconnect"
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = "1h"
	return cfg
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(20), pc.MaxConns)
	assert.Equal(t, int32(5), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, healthCheckPeriod, pc.HealthCheckPeriod)
}

func TestPoolConfig_MinConnsNeverExceedMax(t *testing.T) {
	cfg := testConfig()
	cfg.Database.MaxOpenConns = 4
	cfg.Database.MaxIdleConns = 10

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, int32(4), pc.MinConns)
}

func TestPoolConfig_InvalidLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "forever"

	_, err := poolConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection max lifetime")
}
