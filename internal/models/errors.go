package models

import "fmt"

// ConfigurationError reports malformed or self-contradictory problem input.
// It is fatal: no search is started when the problem fails validation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// InfeasibleInstance reports that no feasible schedule exists under the given
// fleet, demand and endurance constraints.
type InfeasibleInstance struct {
	Customer int
	Reason   string
}

func (e *InfeasibleInstance) Error() string {
	if e.Customer > 0 {
		return fmt.Sprintf("infeasible instance: customer %d: %s", e.Customer, e.Reason)
	}
	return fmt.Sprintf("infeasible instance: %s", e.Reason)
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
