// Package config defines environment configuration structs and loaders.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ServerEnvConfig
	ClientEnvConfig
	BundleEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the evaluation service listener.
type ServerEnvConfig struct {
	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8400"`
	// Weight vectors are small; the limit leaves headroom for batched
	// evaluation requests.
	BodySizeLimit int `env:"SERVER_BODY_LIMIT" envDefault:"16777216"`
}

// ClientEnvConfig configures the evaluation client.
type ClientEnvConfig struct {
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
	RetryMax      int           `env:"CLIENT_RETRY_MAX" envDefault:"3"`
	RetryWait     time.Duration `env:"CLIENT_RETRY_WAIT" envDefault:"500ms"`
}

// BundleEnvConfig says where the plan bundle comes from. A URL takes
// precedence over a local path when both are set.
type BundleEnvConfig struct {
	BundlePath string `env:"PLAN_BUNDLE_PATH" envDefault:"plan.json.zst"`
	BundleURL  string `env:"PLAN_BUNDLE_URL"`
}
