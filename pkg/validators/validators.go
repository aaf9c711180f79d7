// Package validators holds the field-level rules shared by the
// registration and reservation forms.
package validators

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Unbounded marks a Length limit as not enforced.
const Unbounded = -1

// Length checks that a string's length lies in [Min, Max]. Either
// bound may be Unbounded.
type Length struct {
	Min int
	Max int
}

func (l Length) Validate(value string) error {
	n := utf8.RuneCountInString(value)
	if n < l.Min || (l.Max != Unbounded && n > l.Max) {
		return fmt.Errorf("Field must be between %d and %d characters long.", l.Min, l.Max)
	}
	return nil
}

// passwordSymbols is the fixed set a password must draw one symbol from.
const passwordSymbols = "$!?%#@&"

var errPassword = errors.New("Field must contain a number, a capital letter, a lowercase letter, and one of the following: $, !, ?, %, #, @, &.")

// Password checks the complexity rule: at least one uppercase letter,
// one lowercase letter, one digit, and one symbol from the fixed set.
type Password struct{}

func (Password) Validate(value string) error {
	var upper, lower, digit, symbol bool
	for _, c := range value {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		}
	}
	if !(upper && lower && digit && symbol) {
		return errPassword
	}
	return nil
}

// AfterDate checks that a date is not before a reference date. Use
// Today() for the "no reservations in the past" rule and After() for
// cross-field ordering.
type AfterDate struct {
	reference time.Time
	message   string
}

// Today returns a rule anchored at the current calendar date.
func Today() AfterDate {
	return AfterDate{reference: time.Now(), message: "Must be after current date."}
}

// After returns a rule anchored at another field's date.
func After(reference time.Time) AfterDate {
	return AfterDate{reference: reference, message: "From Date must be before To Date."}
}

func (a AfterDate) Validate(value time.Time) error {
	if dayOrdinal(value) < dayOrdinal(a.reference) {
		return errors.New(a.message)
	}
	return nil
}

// dayOrdinal collapses a time to its calendar date so that wall-clock
// and zone differences cannot shift the comparison.
func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
