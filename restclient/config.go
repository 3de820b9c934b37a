package restclient

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/adamwoolhether/httpkit/internal/validate"
)

// EnvPrefix prefixes the environment variables read by [LoadConfig].
const EnvPrefix = "HTTPKIT"

// Config is the environment driven part of a client's configuration.
type Config struct {
	Timeout              time.Duration `envconfig:"TIMEOUT" default:"60s" validate:"gt=0"`
	UserAgent            string        `envconfig:"USER_AGENT"`
	ThrottleRPS          int           `envconfig:"THROTTLE_RPS" validate:"gte=0"`
	ThrottleBurst        int           `envconfig:"THROTTLE_BURST" validate:"required_with=ThrottleRPS,gte=0"`
	Backend              Backend       `envconfig:"BACKEND" default:"resty" validate:"oneof=resty native"`
	ReachabilityInterval time.Duration `envconfig:"REACHABILITY_INTERVAL" default:"30s" validate:"gt=0"`
}

// LoadConfig reads the HTTPKIT_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration's fields.
func (c Config) Validate() error {
	if err := validate.Check(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
