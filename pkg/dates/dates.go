// Package dates converts between the API's day-first date format and the
// month-first format the record store expects, validating real calendar
// dates in both directions.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedDate means the input does not match the DD-MM-YYYY /
	// MM-DD-YYYY shape: exactly three hyphen-separated 2/2/4 digit groups.
	ErrMalformedDate = errors.New("malformed date")

	// ErrInvalidCalendarDate means the groups parsed but do not name a real
	// calendar date (month 13, Feb 29 on a non-leap year, ...).
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
)

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// ToInternal converts an external DD-MM-YYYY date to the internal MM-DD-YYYY
// representation used by the record store.
func ToInternal(external string) (string, error) {
	day, month, year, err := split(external, true)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d-%02d-%04d", month, day, year), nil
}

// ToExternal converts an internal MM-DD-YYYY date back to the external
// DD-MM-YYYY representation. ToExternal(ToInternal(x)) == x for valid x.
func ToExternal(internal string) (string, error) {
	month, day, year, err := split(internal, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year), nil
}

// ComparableValue maps an external DD-MM-YYYY date to a YYYYMMDD integer so
// that chronological order matches numeric order.
func ComparableValue(external string) (int, error) {
	day, month, year, err := split(external, true)
	if err != nil {
		return 0, err
	}
	return year*10000 + month*100 + day, nil
}

// split parses the three groups and validates them as a calendar date.
// dayFirst selects which of the first two groups is the day.
func split(value string, dayFirst bool) (first, second, year int, err error) {
	if !datePattern.MatchString(value) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}

	parts := strings.Split(value, "-")
	first, _ = strconv.Atoi(parts[0])
	second, _ = strconv.Atoi(parts[1])
	year, _ = strconv.Atoi(parts[2])

	day, month := first, second
	if !dayFirst {
		day, month = second, first
	}

	if !isRealDate(year, month, day) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, value)
	}
	return first, second, year, nil
}

// isRealDate checks the triple against the proleptic Gregorian calendar.
// time.Date normalizes out-of-range components (Feb 30 becomes Mar 2), so a
// date is real only when the round trip preserves every component.
func isRealDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == time.Month(month) && t.Day() == day
}
