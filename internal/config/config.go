// Package config defines process configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// GIGMATCH_CONFIG, then GIGMATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// CatalogPath points at the JSON catalog snapshot.
	CatalogPath string `koanf:"catalog_path"`

	// EventConcurrency bounds how many events are scored at once.
	EventConcurrency int `koanf:"event_concurrency" validate:"min=1"`

	// ParticipantConcurrency bounds history lookups in flight per event.
	ParticipantConcurrency int `koanf:"participant_concurrency" validate:"min=1"`

	// ResultLimit caps the ranked list; 0 returns every upcoming event.
	ResultLimit int `koanf:"result_limit" validate:"min=0"`

	// GenrePenalty weighs genres held by only one side of a comparison.
	GenrePenalty float64 `koanf:"genre_penalty" validate:"min=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		EventConcurrency:       runtime.NumCPU() * 4,
		ParticipantConcurrency: 8,
		ResultLimit:            0,
		GenrePenalty:           0.2,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance reports fields by their koanf key.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("koanf")
		})
	})
	return validate
}

// Validate reports the first invalid field. Level and format names are
// matched case-insensitively.
func (c *Config) Validate() error {
	norm := *c
	norm.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	norm.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	err := validatorInstance().Struct(&norm)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	fe := fieldErrs[0]
	if fe.Param() == "" {
		return fmt.Errorf("%w: %s %v fails %s", ErrInvalidConfig, fe.Field(), fe.Value(), fe.Tag())
	}
	return fmt.Errorf("%w: %s %v fails %s=%s", ErrInvalidConfig, fe.Field(), fe.Value(), fe.Tag(), fe.Param())
}
