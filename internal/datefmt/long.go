package datefmt

import (
	"fmt"
	"time"
)

type names struct {
	weekdays [7]string
	months   [12]string
}

// Spanish is the default, matching the UI copy.
var locales = map[string]names{
	"es": {
		weekdays: [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	},
	"en": {
		weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
	},
}

// Long renders a date in either format as "<weekday>, <d> <month> <yyyy>",
// e.g. "miércoles, 1 mayo 2024". Unknown locales fall back to Spanish.
// Malformed input is returned unchanged.
func Long(s, locale string) string {
	y, m, d, ok := ParseDay(s)
	if !ok {
		return s
	}
	n, found := locales[locale]
	if !found {
		n = locales["es"]
	}
	// Noon UTC built from components only; the weekday cannot drift.
	wd := time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC).Weekday()
	return fmt.Sprintf("%s, %d %s %04d", n.weekdays[wd], d, n.months[m-1], y)
}
