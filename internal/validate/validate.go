// Package validate implements a small field-rule validator: handlers register
// named rules per field and collect all violations in one pass, so a response
// can report every bad field instead of failing on the first.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError describes a single rule violation on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors aggregates all rule violations found in one Validate pass.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the violations keyed by field name.
func (e Errors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, taken := out[fe.Field]; !taken {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// StringRule checks a string value and returns a violation message, or "" when ok.
type StringRule func(value string) string

// IntRule checks an integer value and returns a violation message, or "" when ok.
type IntRule func(value int64) string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required rejects empty or whitespace-only strings.
func Required() StringRule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "is required"
		}
		return ""
	}
}

// MinLength rejects strings shorter than n runes. Empty strings pass so the
// rule composes with Required rather than duplicating it.
func MinLength(n int) StringRule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("must be at least %d characters", n)
		}
		return ""
	}
}

// MaxLength rejects strings longer than n runes.
func MaxLength(n int) StringRule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}
		return ""
	}
}

// Email rejects values that do not look like an email address.
func Email() StringRule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !emailPattern.MatchString(value) {
			return "must be a valid email address"
		}
		return ""
	}
}

// Min rejects integers below n.
func Min(n int64) IntRule {
	return func(value int64) string {
		if value < n {
			return fmt.Sprintf("must be at least %d", n)
		}
		return ""
	}
}

// Max rejects integers above n.
func Max(n int64) IntRule {
	return func(value int64) string {
		if value > n {
			return fmt.Sprintf("must be at most %d", n)
		}
		return ""
	}
}

// Validator accumulates field checks. Zero value is ready to use.
type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{}
}

// String runs the given rules against a string field, recording the first
// violation per rule set.
func (v *Validator) String(field, value string, rules ...StringRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errs = append(v.errs, FieldError{Field: field, Message: msg})
			return v
		}
	}
	return v
}

// Int runs the given rules against an integer field.
func (v *Validator) Int(field string, value int64, rules ...IntRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errs = append(v.errs, FieldError{Field: field, Message: msg})
			return v
		}
	}
	return v
}

// Err returns the accumulated violations as an error, or nil when all checks passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}
