package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers the decision point's validation rules.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("ip_or_cidr", validateIPOrCIDR); err != nil {
		return fmt.Errorf("failed to register ip_or_cidr validator: %w", err)
	}
	return nil
}

// validateIPOrCIDR accepts a bare IP address or a CIDR range, used for
// ip_whitelist entries.
func validateIPOrCIDR(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if _, _, err := net.ParseCIDR(value); err == nil {
		return true
	}
	return net.ParseIP(value) != nil
}

// Validate checks cfg against its struct tags and the ip_whitelist entries.
// Call it after SetDefaults.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}

	for _, entry := range cfg.IPWhitelist {
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("ip_whitelist: %q is not a valid IP or CIDR range", entry)
		}
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "ip_or_cidr":
		return fmt.Sprintf("%s must be a valid IP address or CIDR range", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
