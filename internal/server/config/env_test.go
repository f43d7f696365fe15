package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	origDotEnv := loadDotEnv
	loadDotEnv = func() {}
	t.Cleanup(func() { loadDotEnv = origDotEnv })

	t.Setenv("ADDRESS", "127.0.0.1:9999")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("BLOB_BACKEND", "minio")
	t.Setenv("SERVE_REQUIRE_OWNER", "false")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("SWEEP_INTERVAL", "10m")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "127.0.0.1:9999", c.EndpointAddrHTTP)
	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, int64(1024), c.MaxUploadSize)
	assert.Equal(t, BlobBackendMinio, c.BlobBackend)
	assert.False(t, c.ServeRequireOwner)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.AllowedOrigins)
	assert.Equal(t, 2.5, c.RateLimitPerSecond)
	assert.Equal(t, 40, c.RateLimitBurst, "malformed value keeps the default")
	assert.Equal(t, 10*time.Minute, c.SweepInterval)
}

func TestParseEnv_LoadsDotEnvFirst(t *testing.T) {
	called := false
	origDotEnv := loadDotEnv
	loadDotEnv = func() { called = true }
	t.Cleanup(func() { loadDotEnv = origDotEnv })

	parseEnv(&Config{})
	assert.True(t, called)
}
