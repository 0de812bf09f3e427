package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string
	Port        int

	LogsPath    string
	LogLevel    string
	LogToStdout bool

	PostgresHost   string
	PostgresPort   string
	PostgresDBName string

	RedisHost string
	RedisPort string

	PrometheusMetricsHost string
	PrometheusMetricsPort int

	// LoginRateLimitAllowedPerMin: how many login requests per minute
	// are allowed from a single IP address
	LoginRateLimitAllowedPerMin int

	// AuthProviderBaseURL is the base URL of the external identity
	// provider used for browser logins
	AuthProviderBaseURL string
	// AuthRedirectURL is the callback URL registered with the provider
	AuthRedirectURL string
}

type Toml struct {
	Development Config
	Production  Config
}

func (t *Toml) Get(env string) *Config {
	if env == "production" || env == "prod" {
		return &t.Production
	}
	return &t.Development
}

// Load reads the TOML config file from path and returns the
// section for the given environment
func Load(env, path string) (*Config, error) {
	var tomlConf Toml
	if _, err := toml.DecodeFile(path, &tomlConf); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg := tomlConf.Get(env)
	cfg.Environment = env

	return cfg, nil
}
