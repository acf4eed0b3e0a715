package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("EXAM_SIGNING_KEY", "from-the-environment-123")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
auth:
  signing_key: ${EXAM_SIGNING_KEY}
answer_key_cache:
  ttl: 30s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-the-environment-123", cfg.Auth.SigningKey)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "fs", cfg.Storage.Driver)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, TTLDuration(cfg.AnswerKeyCache.TTL, time.Minute))
}

func TestValidateCollectsProblems(t *testing.T) {
	_, err := Parse([]byte(`
database:
  driver: oracle
storage:
  driver: s3
kafka:
  brokers: ["localhost:9092"]
`))
	require.Error(t, err)
	for _, want := range []string{"auth.signing_key", "database.driver", "storage.s3.bucket", "kafka.topic"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
}
