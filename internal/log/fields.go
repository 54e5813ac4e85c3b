package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldKey         = "key"
	FieldPrincipal   = "principal"
	FieldTermMonths  = "term_months"
	FieldAnnualRate  = "annual_rate_percent"
	FieldPayment     = "payment"
	FieldRows        = "rows"
	FieldCarryPolicy = "carry_policy"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentResolver = "resolver"
	ComponentSchedule = "schedule"
	ComponentStorage  = "storage"
	ComponentReport   = "report"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpLoad     = "load"
	OpGenerate = "generate"
	OpResolve  = "resolve"
	OpRender   = "render"
	OpMigrate  = "migrate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds the error field when err is non-nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithLoan adds the loan parameter fields. Amounts are passed as their
// two-decimal string form.
func (f LogFields) WithLoan(principal string, termMonths int, annualRate string, payment string) LogFields {
	f[FieldPrincipal] = principal
	f[FieldTermMonths] = termMonths
	f[FieldAnnualRate] = annualRate
	f[FieldPayment] = payment
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
