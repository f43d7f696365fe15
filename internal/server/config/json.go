package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mediavault/internal/flagx"
	"github.com/dmitrijs2005/mediavault/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Pointer fields
// distinguish "absent" from zero values so that only keys present in the
// file override earlier layers. Durations accept "168h" or nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	SessionSecret         *string         `json:"session_secret"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	SecureCookies         *bool           `json:"secure_cookies"`
	UploadDir             *string         `json:"upload_dir"`
	MaxUploadSize         *int64          `json:"max_upload_size"`
	BlobBackend           *string         `json:"blob_backend"`
	ServeRequireOwner     *bool           `json:"serve_require_owner"`
	S3AccessKey           *string         `json:"s3_access_key"`
	S3SecretKey           *string         `json:"s3_secret_key"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	AllowedOrigins        []string        `json:"allowed_origins"`
	RateLimitPerSecond    *float64        `json:"rate_limit_per_second"`
	RateLimitBurst        *int            `json:"rate_limit_burst"`
	SweepInterval         *timex.Duration `json:"sweep_interval"`
	SweepGracePeriod      *timex.Duration `json:"sweep_grace_period"`
	LogLevel              *string         `json:"log_level"`
	LogFormat             *string         `json:"log_format"`
	LogFile               *string         `json:"log_file"`
}

// parseJson loads the file named by -c/-config, if any, and overlays its
// values onto config. An unreadable file or invalid JSON panics: a config
// file that was asked for but cannot be used is a startup error.
func parseJson(config *Config) {

	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.SessionSecret, c.SessionSecret)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setIf(&config.SecureCookies, c.SecureCookies)
	setIf(&config.UploadDir, c.UploadDir)
	setIf(&config.MaxUploadSize, c.MaxUploadSize)
	setIf(&config.BlobBackend, c.BlobBackend)
	setIf(&config.ServeRequireOwner, c.ServeRequireOwner)
	setIf(&config.S3AccessKey, c.S3AccessKey)
	setIf(&config.S3SecretKey, c.S3SecretKey)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setIf(&config.RateLimitPerSecond, c.RateLimitPerSecond)
	setIf(&config.RateLimitBurst, c.RateLimitBurst)
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.SweepGracePeriod != nil {
		config.SweepGracePeriod = c.SweepGracePeriod.Duration
	}
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.LogFile, c.LogFile)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
