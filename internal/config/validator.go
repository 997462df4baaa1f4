package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "loop.work_delay_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.StateFile) == "" {
		errors = append(errors, ValidationError{
			Field:   "state_file",
			Value:   c.StateFile,
			Message: "must not be empty",
		})
	}

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "listen_addr",
			Value:   c.ListenAddr,
			Message: "must be host:port",
		})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %v", ValidLogLevels()),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of %v", ValidLogFormats()),
		})
	}

	durations := []struct {
		field string
		value int
	}{
		{"loop.idle_interval_ms", c.Loop.IdleIntervalMs},
		{"loop.work_delay_ms", c.Loop.WorkDelayMs},
		{"loop.settle_delay_ms", c.Loop.SettleDelayMs},
	}
	for _, d := range durations {
		if d.value < 0 {
			errors = append(errors, ValidationError{
				Field:   d.field,
				Value:   d.value,
				Message: "must be non-negative",
			})
		}
	}

	if c.Dashboard.RefreshSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "dashboard.refresh_seconds",
			Value:   c.Dashboard.RefreshSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Dashboard.LogTail < 0 {
		errors = append(errors, ValidationError{
			Field:   "dashboard.log_tail",
			Value:   c.Dashboard.LogTail,
			Message: "must be non-negative",
		})
	}

	return errors
}
