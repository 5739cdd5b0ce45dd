package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("WS_EVENT_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.WSEventBurst)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "memory", cfg.PresenceDriver)
	assert.Zero(t, cfg.WSEventsPerSecond)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateDrivers(t *testing.T) {
	cfg := Config{JWTSecret: "x", StoreDriver: "mongo", PresenceDriver: "memory"}
	assert.Error(t, cfg.Validate())

	cfg.StoreDriver = "memory"
	cfg.PresenceDriver = "etcd"
	assert.Error(t, cfg.Validate())

	cfg.PresenceDriver = "redis"
	assert.NoError(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}
