package barbershop

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config describes one shop run.
type Config struct {
	Chairs          int           `mapstructure:"chairs" toml:"chairs" validate:"gt=0"`
	Customers       int           `mapstructure:"customers" toml:"customers" validate:"gte=0"`
	ServiceMin      time.Duration `mapstructure:"service_min" toml:"service_min" validate:"gte=0"`
	ServiceMax      time.Duration `mapstructure:"service_max" toml:"service_max" validate:"gtefield=ServiceMin"`
	ArrivalDelay    time.Duration `mapstructure:"arrival_delay" toml:"arrival_delay" validate:"gte=0"`
	Seed            uint64        `mapstructure:"seed" toml:"seed"`
	CheckInvariants bool          `mapstructure:"check_invariants" toml:"check_invariants"`
}

// DefaultConfig returns the timing used when nothing else is configured.
// Chairs and Customers have no sensible default and must be supplied.
func DefaultConfig() Config {
	return Config{
		ServiceMin:   100 * time.Millisecond,
		ServiceMax:   500 * time.Millisecond,
		ArrivalDelay: time.Second,
	}
}

// ConfigError is the InvalidConfiguration class: fatal before anything runs.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// ValidateConfig validates the given config.
func ValidateConfig(validate *validator.Validate, cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	cerr := &ConfigError{}
	for _, fe := range verrs {
		cerr.Problems = append(cerr.Problems, describe(fe))
	}
	return cerr
}

// Validate validates cfg with a fresh validator.
func (cfg *Config) Validate() error {
	return ValidateConfig(validator.New(), cfg)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
}
