package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("church")
	require.NoError(t, err)

	assert.Equal(t, "church", conf.ServiceName)
	assert.Equal(t, "localhost", conf.DB.Host)
	assert.Equal(t, "5432", conf.DB.Port)
	assert.Equal(t, "church", conf.DB.DBName)
	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, 24, conf.JWT.ExpirationHours)
	assert.True(t, conf.Link.KeepCategoryOnUnlink)
	assert.Equal(t, 7*24*time.Hour, conf.Invite.TTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_LOG_LEVEL", "warn")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "10s")
	t.Setenv("LINK_KEEP_CATEGORY_ON_UNLINK", "false")
	t.Setenv("INVITE_TTL", "48h")

	conf, err := Load("church")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", conf.DB.Host)
	assert.Equal(t, 25, conf.DB.MaxOpenConns)
	assert.Equal(t, logger.Warn, conf.DB.LogLevel)
	assert.Equal(t, 10*time.Second, conf.Server.RequestTimeout)
	assert.False(t, conf.Link.KeepCategoryOnUnlink)
	assert.Equal(t, 48*time.Hour, conf.Invite.TTL)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	t.Setenv("LINK_KEEP_CATEGORY_ON_UNLINK", "maybe")

	conf, err := Load("church")
	require.NoError(t, err)

	assert.Equal(t, 10, conf.DB.MaxIdleConns)
	assert.True(t, conf.Link.KeepCategoryOnUnlink)
}
