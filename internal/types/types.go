// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// the form controller, storage backends, and the console can all import
// types without depending on each other.
package types

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the text form a date of birth is stored in.
const DateLayout = "2006-01-02"

// The two values offered by the gender selector.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Student represents one row of the student records table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty,
//     so a zero time.Time counts as a missing date of birth.
type Student struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"   validate:"required"`
	Email  string    `json:"email"  validate:"required"`
	Phone  string    `json:"phone"  validate:"required"`
	Gender string    `json:"gender" validate:"required,oneof=Male Female"`
	DOB    time.Time `json:"dob"    validate:"required"`
	Stream string    `json:"stream" validate:"required"`
}

// FormatDate renders t as a stored date string (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate splits a stored YYYY-MM-DD string into its year, month and
// day components and returns the calendar date at midnight UTC.
//
// Anything trailing the day (for example a time part written by another
// tool) is rejected rather than silently dropped.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) || s[4] != '-' || s[7] != '-' {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}

	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in %q", s)
	}
	day, err := strconv.Atoi(s[8:])
	if err != nil || day < 1 {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 2001-02-30 into March; treat that as invalid.
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}

	return date, nil
}

// DateOnly truncates t to its calendar date in UTC, keeping t's own
// year/month/day as seen in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
