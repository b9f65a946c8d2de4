package payroll

import "errors"

var (
	ErrRunNotFound        = errors.New("payroll run not found")
	ErrRunFinalized       = errors.New("payroll run is already finalized")
	ErrFinalizeInProgress = errors.New("payroll run is being finalized by another request")
	ErrUnresolvedFlags    = errors.New("payroll has unresolved anomaly flags")
	ErrPeriodFinalized    = errors.New("date falls inside a finalized payroll run")
	ErrOverrideNotFound   = errors.New("daily override not found")
	ErrTaxConfigNotFound  = errors.New("tax config not found")
)

// ConfigurationError reports missing or invalid tax or rate configuration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
