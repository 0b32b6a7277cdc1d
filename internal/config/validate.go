package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/keymaster/internal/model"
)

var validate = validator.New()

// flagNames maps config fields to the flag that sets them.
var flagNames = map[string]string{
	"Slot":            "slot",
	"Player":          "player",
	"FrameRate":       "frame-rate",
	"AutosaveSeconds": "autosave",
	"LogLevel":        "log-level",
	"LogFormat":       "log-format",
	"MetricsAddr":     "metrics-addr",
}

// Validate checks cfg and reports every invalid field in one error.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := flagNames[e.Field()]
		if name == "" {
			name = strings.ToLower(e.Field())
		}
		msgs = append(msgs, fmt.Sprintf("--%s %s", name, describe(e)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "excludesall":
		return "contains invalid characters"
	case "hostname_port":
		return "must be host:port"
	default:
		return "is invalid"
	}
}
