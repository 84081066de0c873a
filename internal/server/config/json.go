package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/flagx"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// Durations are accepted in Go duration string form ("30m").
type JsonConfig struct {
	EndpointAddr          string `json:"endpoint_addr"`
	DatabaseDSN           string `json:"database_dsn"`
	RedisAddr             string `json:"redis_addr"`
	RedisStream           string `json:"redis_stream"`
	SecretKey             string `json:"secret_key"`
	CoprocessorKey        string `json:"coprocessor_key"`
	TokenValidityDuration string `json:"token_validity_duration"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flag into the provided Config. Absent flag means nothing to
// load. An unreadable or invalid file panics; a broken explicit config is
// a deployment error, not something to limp past.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFile()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.RedisStream != "" {
		config.RedisStream = c.RedisStream
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.CoprocessorKey != "" {
		config.CoprocessorKey = c.CoprocessorKey
	}
	if c.TokenValidityDuration != "" {
		d, err := time.ParseDuration(c.TokenValidityDuration)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
}
