package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DatastoreMongo, cfg.Datastore)
	assert.Equal(t, "http://localhost:5000", cfg.PublicOrigin)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.RejectSelfFollow)
	assert.Equal(t, []byte("s3cret"), cfg.Secret())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATASTORE", "memory")
	t.Setenv("PORT", "8081")
	t.Setenv("PUBLIC_ORIGIN", "https://social.example.com/")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("REJECT_SELF_FOLLOW", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "https://social.example.com", cfg.PublicOrigin)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.RejectSelfFollow)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.NotEmpty(t, cfg.Secret())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"mongo without secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown datastore", func(c *Config) { c.Datastore = "redis" }, "DATASTORE"},
		{"cloudinary without url", func(c *Config) { c.Storage = StorageCloudinary }, "CLOUDINARY_URL"},
		{"unknown storage", func(c *Config) { c.Storage = "s3" }, "STORAGE"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "TOKEN_TTL"},
		{"no origin", func(c *Config) { c.PublicOrigin = "" }, "PUBLIC_ORIGIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.JWTSecret = "x"
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
