package model

import (
	"fmt"
	"strings"
)

// Room identifies one of the fixed meeting rooms ("Sala1".."Sala10").
type Room string

const roomCount = 10

// Rooms returns every bookable room in display order.
func Rooms() []Room {
	rooms := make([]Room, roomCount)
	for i := range rooms {
		rooms[i] = Room(fmt.Sprintf("Sala%d", i+1))
	}
	return rooms
}

var knownRooms = func() map[Room]bool {
	m := make(map[Room]bool, roomCount)
	for _, r := range Rooms() {
		m[r] = true
	}
	return m
}()

// Valid reports whether r is exactly one of the fixed rooms.
func (r Room) Valid() bool {
	return knownRooms[r]
}

// ParseRoom converts raw input into a Room, rejecting unknown identifiers.
func ParseRoom(s string) (Room, error) {
	r := Room(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown room %q", s)
	}
	return r, nil
}

// Reservation is a booking as exchanged with the reservation service.
// Date is DD/MM/YYYY on that wire.
type Reservation struct {
	ID        string `json:"_id,omitempty"`
	OwnerID   string `json:"usuarioId,omitempty"`
	Room      Room   `json:"sala"`
	Date      string `json:"fecha"`
	StartTime string `json:"horaInicio"`
	EndTime   string `json:"horaFin"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ReservationRequest is the booking form as submitted by the UI.
// Date is YYYY-MM-DD.
type ReservationRequest struct {
	Room      Room   `json:"sala"`
	Date      string `json:"fecha"`
	StartTime string `json:"horaInicio"`
	EndTime   string `json:"horaFin"`
}
