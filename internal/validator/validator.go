// Package validator collects per-field input errors.  Callers run a series
// of Check calls and inspect Valid/Errors afterwards; the first message
// recorded for a field wins.
package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var phoneRX = regexp.MustCompile(`^[0-9+\-() ]+$`)

// Validator holds the field errors found so far.
type Validator struct {
	Errors map[string]string
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no errors have been recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records message for key unless key already has one.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message only if ok is false.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// In returns true if value is one of list.
func In(value string, list ...string) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// Length reports whether s has between min and max characters.
func Length(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// Between reports whether n lies in [min, max].
func Between[T int | float64](n, min, max T) bool {
	return n >= min && n <= max
}

// IsID reports whether s is a syntactically valid entity identifier.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// IsEmail reports whether s is a bare address with a dotted domain.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// IsPhone reports whether s contains only phone-number characters.
func IsPhone(s string) bool {
	return phoneRX.MatchString(s)
}
