package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf keys, so messages name the
// same path a yaml file or APP_ variable uses.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})
	v.RegisterStructValidation(validateStudy, StudyConfig{})
	v.RegisterStructValidation(validateRetry, RetryConfig{})

	return v
}

// Validate checks the whole configuration. The service refuses to start on
// any failure, so every problem is reported at once.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// A sweep slower than the session TTL would keep expired sessions around
// for more than a full TTL.
func validateStudy(sl validator.StructLevel) {
	s := sl.Current().Interface().(StudyConfig)
	if s.SessionTTL > 0 && s.SweepInterval > s.SessionTTL {
		sl.ReportError(s.SweepInterval, "sweep_interval", "SweepInterval", "ltefield", "session_ttl")
	}
}

func validateRetry(sl validator.StructLevel) {
	r := sl.Current().Interface().(RetryConfig)
	if r.MaxInterval > 0 && r.InitialInterval > r.MaxInterval {
		sl.ReportError(r.InitialInterval, "initial_interval", "InitialInterval", "ltefield", "max_interval")
	}
}

func formatValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		lines = append(lines, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, requiredIfCondition(e.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// requiredIfCondition turns "Driver sqlite" into "driver is sqlite".
func requiredIfCondition(param string) string {
	field, value, ok := strings.Cut(param, " ")
	if !ok {
		return param
	}

	return fmt.Sprintf("%s is %s", toKey(field), value)
}

// formatFieldPath drops the root struct: "Config.hygraph.page_size"
// becomes "hygraph.page_size".
func formatFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}

// toKey converts a Go field name to its koanf spelling: "SessionTTL" to
// "session_ttl".
func toKey(name string) string {
	var b strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}
