package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays Config with environment variables. A .env file in the
// working directory is loaded first if present; variables already set in
// the process environment take precedence over it. Malformed numeric or
// duration values are ignored and the previous value is kept.
func parseEnv(c *Config) {
	loadDotEnv()

	envString("ADDRESS", &c.EndpointAddrHTTP)
	envString("DATABASE_DSN", &c.DatabaseDSN)
	envString("JWT_SECRET", &c.SecretKey)
	envString("SESSION_SECRET", &c.SessionSecret)
	envDuration("TOKEN_TTL", &c.TokenValidityDuration)
	envBool("SECURE_COOKIES", &c.SecureCookies)

	envString("UPLOAD_DIR", &c.UploadDir)
	envInt64("MAX_UPLOAD_SIZE", &c.MaxUploadSize)
	envString("BLOB_BACKEND", &c.BlobBackend)
	envBool("SERVE_REQUIRE_OWNER", &c.ServeRequireOwner)

	envString("S3_ACCESS_KEY", &c.S3AccessKey)
	envString("S3_SECRET_KEY", &c.S3SecretKey)
	envString("S3_BUCKET", &c.S3Bucket)
	envString("S3_REGION", &c.S3Region)
	envString("S3_ENDPOINT", &c.S3BaseEndpoint)

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitPerSecond = f
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_BURST"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}

	envDuration("SWEEP_INTERVAL", &c.SweepInterval)
	envDuration("SWEEP_GRACE_PERIOD", &c.SweepGracePeriod)

	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FORMAT", &c.LogFormat)
	envString("LOG_FILE", &c.LogFile)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt64(key string, dst *int64) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
