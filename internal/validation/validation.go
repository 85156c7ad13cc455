package validation

import (
	"fmt"
	"time"
)

// FieldError describes a single failed field. Validation reports every
// violated field at once, not just the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field errors during request validation.
type Errors struct {
	fields []FieldError
}

// Add records a failed field.
func (e *Errors) Add(field, format string, args ...interface{}) {
	e.fields = append(e.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any field failed.
func (e *Errors) HasErrors() bool {
	return len(e.fields) > 0
}

// Fields returns all collected errors.
func (e *Errors) Fields() []FieldError {
	return e.fields
}

// Require adds an error when value is empty.
func (e *Errors) Require(field, value string) {
	if value == "" {
		e.Add(field, "%s wajib diisi", field)
	}
}

// OneOf adds an error when value is not one of the allowed choices.
// Empty values are left to Require.
func (e *Errors) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, "%s harus salah satu dari %v", field, allowed)
}

// Date parses an ISO calendar date (YYYY-MM-DD), adding an error when the
// value does not parse. The zero time is returned for invalid input.
func (e *Errors) Date(field, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		e.Add(field, "%s harus tanggal valid (YYYY-MM-DD)", field)
		return time.Time{}
	}
	return t
}

// Positive adds an error when a supplied quantity is not greater than zero.
func (e *Errors) Positive(field string, value *float64) {
	if value != nil && *value <= 0 {
		e.Add(field, "%s harus lebih dari 0", field)
	}
}

// NonNegative adds an error when a supplied quantity is negative.
func (e *Errors) NonNegative(field string, value *float64) {
	if value != nil && *value < 0 {
		e.Add(field, "%s tidak boleh negatif", field)
	}
}
