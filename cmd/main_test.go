package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"patientms/internal/config"
)

func TestCORSConfig(t *testing.T) {
	wildcard := corsConfig([]string{"*"})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.Empty(t, wildcard.AllowOrigins)
	assert.NoError(t, wildcard.Validate())

	listed := corsConfig([]string{"http://a.test", "https://b.test"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.test", "https://b.test"}, listed.AllowOrigins)
	assert.NoError(t, listed.Validate())
}

func TestNewLoggerLevel(t *testing.T) {
	logger := newLogger(&config.Config{Env: "production", LogLevel: "warn"})
	assert.Equal(t, "warn", logger.GetLevel().String())

	logger = newLogger(&config.Config{Env: "production", LogLevel: "nonsense"})
	assert.Equal(t, "info", logger.GetLevel().String())
}
