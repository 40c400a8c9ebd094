package schema

import "fmt"

// ConfigError reports a malformed or incomplete country schema. It is fatal
// and surfaced at load time, before any network interaction.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schema: invalid config field %q: %s", e.Field, e.Reason)
}

// UnknownCountryError reports a lookup for a country code with no registered
// or built-in schema.
type UnknownCountryError struct {
	Code string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("schema: no configuration for country %q", e.Code)
}
