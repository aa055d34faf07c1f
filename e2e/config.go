package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR points the suite at an already-running relay
	// (host:port). Empty means the suite starts one in-process.
	RelayAddr string `envconfig:"RELAY_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_READ_TIMEOUT bounds each wait for a single frame, in seconds
	ReadTimeoutSeconds int `envconfig:"E2E_READ_TIMEOUT" default:"5"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
