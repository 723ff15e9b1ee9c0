package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomy-backend/internal/model"
)

func TestGenerate(t *testing.T) {
	slots := Generate()

	require.Len(t, slots, 18)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "17:30", slots[len(slots)-1])
	assert.NotContains(t, slots, "18:00")
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	for _, bad := range []string{"", "9:30", "09:60", "24:00", "0930", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestAvailable(t *testing.T) {
	booked := []model.Reservation{
		{Room: "Sala1", Date: "01/05/2024", StartTime: "10:00", EndTime: "11:00"},
		{Room: "Sala2", Date: "01/05/2024", StartTime: "09:00", EndTime: "12:00"},
		{Room: "Sala1", Date: "02/05/2024", StartTime: "13:00", EndTime: "14:00"},
	}

	testCases := []struct {
		name         string
		room         model.Room
		date         string
		reservations []model.Reservation
		excluded     []string
		included     []string
		count        int
	}{
		{
			name:         "Booked hour is removed",
			room:         "Sala1",
			date:         "2024-05-01",
			reservations: booked,
			excluded:     []string{"10:00", "10:30"},
			included:     []string{"09:30", "11:00"},
			count:        16,
		},
		{
			name:         "Backend date format is accepted",
			room:         "Sala1",
			date:         "01/05/2024",
			reservations: booked,
			excluded:     []string{"10:00", "10:30"},
			count:        16,
		},
		{
			name:     "No reservations means every slot is free",
			room:     "Sala3",
			date:     "2024-05-01",
			included: []string{"09:00", "17:30"},
			count:    18,
		},
		{
			name:         "Other rooms and days are ignored",
			room:         "Sala1",
			date:         "2024-05-02",
			reservations: booked,
			excluded:     []string{"13:00", "13:30"},
			included:     []string{"10:00", "14:00"},
			count:        16,
		},
		{
			name: "Reservation off the grid blocks every slot it touches",
			room: "Sala4",
			date: "2024-05-01",
			reservations: []model.Reservation{
				{Room: "Sala4", Date: "2024-05-01", StartTime: "10:15", EndTime: "10:45"},
			},
			excluded: []string{"10:00", "10:30"},
			included: []string{"09:30", "11:00"},
			count:    16,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			free, err := Available(tc.room, tc.date, tc.reservations)
			require.NoError(t, err)
			assert.Len(t, free, tc.count)
			for _, s := range tc.excluded {
				assert.NotContains(t, free, s)
			}
			for _, s := range tc.included {
				assert.Contains(t, free, s)
			}
			assert.IsIncreasing(t, free)
		})
	}
}

func TestAvailable_FullyBooked(t *testing.T) {
	full := []model.Reservation{
		{Room: "Sala5", Date: "2024-05-01", StartTime: "09:00", EndTime: "12:00"},
		{Room: "Sala5", Date: "2024-05-01", StartTime: "12:00", EndTime: "15:00"},
		{Room: "Sala5", Date: "2024-05-01", StartTime: "15:00", EndTime: "18:00"},
	}

	free, err := Available("Sala5", "2024-05-01", full)
	require.NoError(t, err)
	assert.NotNil(t, free)
	assert.Empty(t, free)
}

func TestAvailable_InvalidInput(t *testing.T) {
	_, err := Available("Sala11", "2024-05-01", nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sala", ve.Field)

	_, err = Available("Sala1", "2024-02-30", nil)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "fecha", ve.Field)
}

func TestAvailable_RejectsRoomAliases(t *testing.T) {
	booked := []model.Reservation{
		{Room: "Sala1", Date: "01/05/2024", StartTime: "10:00", EndTime: "11:00"},
	}
	for _, room := range []model.Room{"Sala+1", "Sala01", " Sala1"} {
		free, err := Available(room, "2024-05-01", booked)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, string(room))
		assert.Equal(t, "sala", ve.Field)
		assert.Nil(t, free)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"11:00", "09:00", "18:00", "09:00", "10:15", "17:30"})
	assert.Equal(t, []string{"09:00", "11:00", "17:30"}, got)
	assert.Empty(t, Normalize(nil))
}

func TestEndTimes(t *testing.T) {
	all := Generate()

	testCases := []struct {
		name      string
		start     string
		available []string
		expected  []string
	}{
		{
			name:      "Late start is capped by closing time",
			start:     "16:00",
			available: all,
			expected:  []string{"16:30", "17:00", "17:30", "18:00"},
		},
		{
			name:      "Early start is capped at six options",
			start:     "09:00",
			available: all,
			expected:  []string{"09:30", "10:00", "10:30", "11:00", "11:30", "12:00"},
		},
		{
			name:      "Last slot allows a single option",
			start:     "17:30",
			available: all,
			expected:  []string{"18:00"},
		},
		{
			name:      "Run stops before the next booking",
			start:     "09:00",
			available: []string{"09:00", "09:30", "11:00", "11:30"},
			expected:  []string{"09:30", "10:00"},
		},
		{
			name:      "No start chosen",
			start:     "",
			available: all,
			expected:  []string{},
		},
		{
			name:      "Start not available",
			start:     "10:00",
			available: []string{"09:00", "11:00"},
			expected:  []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EndTimes(tc.start, tc.available))
		})
	}
}
