package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackendRoundTrip(t *testing.T) {
	backend := ToBackend("2024-05-01")
	assert.Equal(t, "01/05/2024", backend)
	assert.Equal(t, "2024-05-01", ToDisplay(backend))
}

func TestToBackend(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "Standard", in: "2024-12-31", expected: "31/12/2024"},
		{name: "Leap day", in: "2024-02-29", expected: "29/02/2024"},
		{name: "Empty", in: "", expected: ""},
		{name: "Not a leap year", in: "2023-02-29", expected: "2023-02-29"},
		{name: "Month out of range", in: "2024-13-01", expected: "2024-13-01"},
		{name: "Already backend", in: "01/05/2024", expected: "01/05/2024"},
		{name: "Garbage", in: "mañana", expected: "mañana"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToBackend(tc.in))
		})
	}
}

func TestToDisplay(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "Standard", in: "31/12/2024", expected: "2024-12-31"},
		{name: "Unpadded components", in: "1/5/2024", expected: "2024-05-01"},
		{name: "Invalid day", in: "32/01/2024", expected: "32/01/2024"},
		{name: "ISO input", in: "2024-05-01", expected: "2024-05-01"},
		{name: "Empty", in: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToDisplay(tc.in))
		})
	}
}

func TestLong(t *testing.T) {
	assert.Equal(t, "miércoles, 1 mayo 2024", Long("2024-05-01", "es"))
	assert.Equal(t, "miércoles, 1 mayo 2024", Long("01/05/2024", "es"))
	assert.Equal(t, "Wednesday, 1 May 2024", Long("2024-05-01", "en"))
	assert.Equal(t, "domingo, 31 diciembre 2023", Long("31/12/2023", "fr"), "unknown locale falls back to Spanish")
	assert.Equal(t, "not-a-date", Long("not-a-date", "es"))
}

func TestValidISO(t *testing.T) {
	assert.True(t, ValidISO("2024-05-01"))
	assert.False(t, ValidISO("01/05/2024"))
	assert.False(t, ValidISO("2024-5-1"))
	assert.False(t, ValidISO("2024-04-31"))
}

func TestISO(t *testing.T) {
	iso, ok := ISO("5/1/2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-05", iso)

	_, ok = ISO("")
	assert.False(t, ok)
}

func TestToday(t *testing.T) {
	// 23:30 UTC on April 30th is already May 1st in Madrid.
	now := time.Date(2024, 4, 30, 23, 30, 0, 0, time.UTC)
	madrid := time.FixedZone("CEST", 2*60*60)

	assert.Equal(t, "2024-04-30", Today(now, time.UTC))
	assert.Equal(t, "2024-05-01", Today(now, madrid))
}
