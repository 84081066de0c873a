// Package config handles configuration for the server component,
// including defaults, environment overlay, JSON overlay, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the matchmaking server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - RedisAddr: address of the Redis event stream. Empty disables publishing.
//   - RedisStream: name of the Redis stream events are appended to.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - CoprocessorKey: hex-encoded 32-byte key sealing the mock co-processor's store.
//   - TokenValidityDuration: access token lifetime.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	RedisAddr             string
	RedisStream           string
	SecretKey             string
	CoprocessorKey        string
	TokenValidityDuration time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = ""
	c.RedisAddr = ""
	c.RedisStream = "matchmaking-events"
	c.SecretKey = "secretKey"
	c.CoprocessorKey = "0000000000000000000000000000000000000000000000000000000000000000"
	c.TokenValidityDuration = 30 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
