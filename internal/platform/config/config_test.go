package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, runtime.NumCPU(), cfg.Auth.HashConcurrency)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.Audit.KafkaWriteTimeout)
	assert.False(t, cfg.Server.TrustProxyHeaders)
}

func TestLoadFrom_MissingSecretIsFatal(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	_, err = LoadFrom(map[string]string{"JWT_SECRET": ""})
	require.Error(t, err)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET":                "s3cret",
		"PORT":                      "8081",
		"AUTH_TOKEN_TTL":            "15m",
		"AUTH_BCRYPT_COST":          "12",
		"AUTH_HASH_CONCURRENCY":     "3",
		"AUTH_STORE":                "redis",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"AUDIT_KAFKA_BROKERS":       " kafka-1:9092, kafka-2:9092,kafka-1:9092,",
		"AUDIT_KAFKA_WRITE_TIMEOUT": "2s",
		"TRUST_PROXY_HEADERS":       "true",
	})
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 3, cfg.Auth.HashConcurrency)
	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.Audit.KafkaWriteTimeout)
	assert.True(t, cfg.Server.TrustProxyHeaders)
}

func TestLoadFrom_StoreValidation(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{
			name:    "postgres needs DATABASE_URL",
			environ: map[string]string{"JWT_SECRET": "k", "AUTH_STORE": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "redis needs REDIS_URL",
			environ: map[string]string{"JWT_SECRET": "k", "AUTH_STORE": "redis"},
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown driver",
			environ: map[string]string{"JWT_SECRET": "k", "AUTH_STORE": "mongo"},
			wantErr: "unknown AUTH_STORE",
		},
		{
			name:    "bad port",
			environ: map[string]string{"JWT_SECRET": "k", "PORT": "70000"},
			wantErr: "PORT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
