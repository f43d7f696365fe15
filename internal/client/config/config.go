package config

import "time"

// Config holds runtime settings for the mediavault CLI.
//
// Fields:
//   - ServerURL: base URL of the mediavault HTTP API.
//   - RequestTimeout: upper bound for a single API call; uploads and
//     downloads are not limited by it.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - CacheFile: sqlite file holding the last fetched listing.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	CacheFile           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.CacheFile = "mediavault-cache.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
