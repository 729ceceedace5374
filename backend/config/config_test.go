package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := fromViper(newViper())

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 10*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, 0.6, cfg.QuizPassRatio)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.WebhookSecret)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("SUMMARY_CACHE_TTL", "30s")
	t.Setenv("QUIZ_PASS_RATIO", "0.75")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")

	cfg := fromViper(newViper())

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "mongo", cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
	assert.Equal(t, 0.75, cfg.QuizPassRatio)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "lms", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=lms port=5433 sslmode=require", cfg.PostgresDSN())
}

func TestQuizPassRatioRange(t *testing.T) {
	for _, ratio := range []float64{0, 0.6, 1} {
		assert.NoError(t, (&Config{QuizPassRatio: ratio}).Validate(), "ratio %v", ratio)
	}
	for _, ratio := range []float64{-0.1, 1.5, 60} {
		assert.Error(t, (&Config{QuizPassRatio: ratio}).Validate(), "ratio %v", ratio)
	}

	t.Setenv("QUIZ_PASS_RATIO", "6")
	cfg, err := LoadConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
