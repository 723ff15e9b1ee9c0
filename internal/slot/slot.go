// Package slot holds the booking-day rules: the grid of bookable start
// times, the availability window for a room and day, the end times a chosen
// start allows, and the duration gate applied before submission.
package slot

import (
	"fmt"
	"time"

	"roomy-backend/internal/datefmt"
	"roomy-backend/internal/model"
)

const (
	OpenMinute  = 9 * 60  // 09:00
	CloseMinute = 18 * 60 // 18:00
	Step        = 30

	MinDuration   = 30
	MaxDuration   = 180
	MaxEndOptions = MaxDuration / Step
)

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Generate returns every bookable start time of a business day:
// 09:00, 09:30, ..., 17:30. The last start still fits one step before close.
func Generate() []string {
	out := make([]string, 0, (CloseMinute-OpenMinute)/Step)
	for m := OpenMinute; m+Step <= CloseMinute; m += Step {
		out = append(out, FormatClock(m))
	}
	return out
}

// Available returns the generated slots of date that do not overlap any of
// the given reservations for room. Reservations for other rooms or days are
// ignored, so callers may pass an unfiltered list. Dates may be in either
// YYYY-MM-DD or DD/MM/YYYY form. The result is never nil.
func Available(room model.Room, date string, reservations []model.Reservation) ([]string, error) {
	if !room.Valid() {
		return nil, &ValidationError{Field: "sala", Message: fmt.Sprintf("sala desconocida: %q", room)}
	}
	day, ok := datefmt.ISO(date)
	if !ok {
		return nil, &ValidationError{Field: "fecha", Message: fmt.Sprintf("fecha inválida: %q", date)}
	}

	type interval struct{ start, end int }
	var busy []interval
	for _, r := range reservations {
		if r.Room != room {
			continue
		}
		if d, ok := datefmt.ISO(r.Date); !ok || d != day {
			continue
		}
		start, err := ParseClock(r.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(r.EndTime)
		if err != nil || end <= start {
			continue
		}
		busy = append(busy, interval{start, end})
	}

	free := make([]string, 0, (CloseMinute-OpenMinute)/Step)
	for m := OpenMinute; m+Step <= CloseMinute; m += Step {
		taken := false
		for _, b := range busy {
			// [m, m+Step) overlaps [b.start, b.end)
			if m < b.end && m+Step > b.start {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, FormatClock(m))
		}
	}
	return free, nil
}

// Normalize keeps the entries of starts that lie on the generated grid,
// in grid order and without duplicates.
func Normalize(starts []string) []string {
	set := make(map[string]struct{}, len(starts))
	for _, s := range starts {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(starts))
	for _, s := range Generate() {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// EndTimes lists the end times that can follow start, given the free start
// slots of the same room and day. Each candidate closes a run of consecutive
// free slots beginning at start, so no candidate crosses another booking.
// At most MaxEndOptions entries are returned, in ascending order.
func EndTimes(start string, available []string) []string {
	out := make([]string, 0, MaxEndOptions)
	if start == "" {
		return out
	}
	s, err := ParseClock(start)
	if err != nil {
		return out
	}

	free := make(map[string]struct{}, len(available))
	for _, a := range available {
		free[a] = struct{}{}
	}

	for m := s; len(out) < MaxEndOptions; m += Step {
		if _, ok := free[FormatClock(m)]; !ok {
			break
		}
		end := m + Step
		if end > CloseMinute || end-s > MaxDuration {
			break
		}
		out = append(out, FormatClock(end))
	}
	return out
}
