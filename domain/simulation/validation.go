package simulation

// ValidationReport collects validation findings before sampling begins.
// Errors reject the run; warnings (e.g. sub-minimum iteration counts) do not.
type ValidationReport struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidationReport returns an empty, valid report
func NewValidationReport() ValidationReport {
	return ValidationReport{IsValid: true}
}

// AddError records a rejection and marks the report invalid
func (r *ValidationReport) AddError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a non-fatal finding
func (r *ValidationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
