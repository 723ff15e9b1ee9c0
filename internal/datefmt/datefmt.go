// Package datefmt converts calendar days between the UI's YYYY-MM-DD form and
// the reservation service's DD/MM/YYYY form. Every conversion works on the
// year/month/day components only, so no time zone can shift the day.
package datefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	backendRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseDay extracts the components of a date given in either format.
// ok is false for malformed input or a day that does not exist.
func ParseDay(s string) (year, month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if m := isoRe.FindStringSubmatch(s); m != nil {
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else if m := backendRe.FindStringSubmatch(s); m != nil {
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else {
		return 0, 0, 0, false
	}
	if !exists(year, month, day) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// ValidISO reports whether s is a real calendar day written as YYYY-MM-DD.
func ValidISO(s string) bool {
	if !isoRe.MatchString(s) {
		return false
	}
	_, _, _, ok := ParseDay(s)
	return ok
}

// ToBackend turns "2024-05-01" into "01/05/2024".
// Malformed input is returned unchanged.
func ToBackend(iso string) string {
	if !isoRe.MatchString(strings.TrimSpace(iso)) {
		return iso
	}
	y, m, d, ok := ParseDay(iso)
	if !ok {
		return iso
	}
	return fmt.Sprintf("%02d/%02d/%04d", d, m, y)
}

// ToDisplay turns "01/05/2024" into "2024-05-01".
// Malformed input is returned unchanged.
func ToDisplay(backend string) string {
	if !backendRe.MatchString(strings.TrimSpace(backend)) {
		return backend
	}
	y, m, d, ok := ParseDay(backend)
	if !ok {
		return backend
	}
	return formatISO(y, m, d)
}

// ISO normalises a date in either format to YYYY-MM-DD.
func ISO(s string) (string, bool) {
	y, m, d, ok := ParseDay(s)
	if !ok {
		return "", false
	}
	return formatISO(y, m, d), true
}

// Today returns the current calendar day in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return formatISO(now.Year(), int(now.Month()), now.Day())
}

func formatISO(y, m, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func exists(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 || y < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
