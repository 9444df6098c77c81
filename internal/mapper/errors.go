package mapper

import (
	"fmt"

	"podmanager/internal/domain"
)

// ConfigurationError reports a mapping convention that cannot be applied. It
// indicates a defect in the mapper declarations, not a transient condition.
type ConfigurationError struct {
	Kind     domain.Kind
	Property string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("mapping configuration error for %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("mapping configuration error for %s.%s: %v", e.Kind, e.Property, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
