package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInternal(t *testing.T) {
	internal, err := ToInternal("31-01-2025")
	assert.NoError(t, err)
	assert.Equal(t, "01-31-2025", internal)
}

func TestRoundTrip(t *testing.T) {
	externals := []string{"01-01-2025", "31-12-1999", "29-02-2024", "15-07-2030"}
	for _, external := range externals {
		internal, err := ToInternal(external)
		assert.NoError(t, err, external)

		back, err := ToExternal(internal)
		assert.NoError(t, err, external)
		assert.Equal(t, external, back)
	}
}

func TestMalformedInput(t *testing.T) {
	cases := []string{
		"2025-01-31",  // year first
		"1-01-2025",   // one-digit day
		"01/01/2025",  // wrong separator
		"01-01-25",    // two-digit year
		"01-01-2025-", // trailing group
		"01-2025",     // missing group
		"aa-bb-cccc",
		"",
	}
	for _, c := range cases {
		_, err := ToInternal(c)
		assert.ErrorIs(t, err, ErrMalformedDate, c)

		_, err = ToExternal(c)
		assert.ErrorIs(t, err, ErrMalformedDate, c)
	}
}

func TestInvalidCalendarDates(t *testing.T) {
	cases := []string{
		"00-01-2025", // day zero
		"32-01-2025",
		"31-04-2025", // April has 30 days
		"01-00-2025", // month zero
		"01-13-2025",
	}
	for _, c := range cases {
		_, err := ToInternal(c)
		assert.ErrorIs(t, err, ErrInvalidCalendarDate, c)
	}
}

func TestLeapYearHandling(t *testing.T) {
	_, err := ToInternal("29-02-2025")
	assert.ErrorIs(t, err, ErrInvalidCalendarDate)

	internal, err := ToInternal("29-02-2024")
	assert.NoError(t, err)
	assert.Equal(t, "02-29-2024", internal)

	// Century rule: 1900 was not a leap year, 2000 was.
	_, err = ToInternal("29-02-1900")
	assert.ErrorIs(t, err, ErrInvalidCalendarDate)
	_, err = ToInternal("29-02-2000")
	assert.NoError(t, err)
}

func TestComparableValue(t *testing.T) {
	start, err := ComparableValue("01-01-2025")
	assert.NoError(t, err)
	end, err := ComparableValue("31-01-2025")
	assert.NoError(t, err)

	assert.Equal(t, 20250101, start)
	assert.Equal(t, 20250131, end)
	assert.Less(t, start, end)
}
