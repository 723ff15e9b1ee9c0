// Package booking drives a reservation from the form to the reservation
// service: availability lookups, end-time choices, submission and the
// user's dashboard.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"roomy-backend/config"
	"roomy-backend/internal/datefmt"
	"roomy-backend/internal/model"
	"roomy-backend/internal/reservas"
	"roomy-backend/internal/slot"
)

var (
	ErrSubmissionInFlight = errors.New("a reservation is already being submitted")
	ErrConflict           = errors.New("the room is already booked at that time")
	ErrNotFound           = errors.New("reservation not found")
	ErrPastReservation    = errors.New("past reservations cannot be cancelled")
	ErrUpstream           = errors.New("reservation service unavailable")
)

// User-facing messages.
const (
	MsgCreated       = "¡Reserva creada exitosamente!"
	MsgDeleted       = "Reserva eliminada exitosamente"
	msgCreateFailed  = "Error al crear la reserva"
	msgConflict      = "La sala ya está reservada en ese horario"
	msgInFlight      = "Ya hay una reserva en curso"
	msgNotFound      = "La reserva no existe"
	msgPast          = "No se pueden eliminar reservas pasadas"
	msgLoadFailed    = "Error al cargar las reservas"
	msgDeleteFailed  = "Error al eliminar la reserva"
	notifyTitleNew   = "Reserva confirmada"
	notifyTitleGone  = "Reserva cancelada"
	defaultLocale    = "es"
	defaultCacheTTL  = 30 * time.Second
	defaultSubmitTTL = 15 * time.Second
	upcomingLimit    = 3
)

// Status places a reservation's day relative to today.
type Status string

const (
	StatusPast     Status = "pasada"
	StatusToday    Status = "hoy"
	StatusUpcoming Status = "proxima"
)

// Reservations is the part of the reservation service the planner uses.
type Reservations interface {
	Availability(ctx context.Context, caller *model.User, room model.Room, date string) (*reservas.AvailabilityResponse, error)
	List(ctx context.Context, caller *model.User, room model.Room, date string) ([]model.Reservation, error)
	Mine(ctx context.Context, caller *model.User) ([]model.Reservation, error)
	Create(ctx context.Context, caller *model.User, req model.ReservationRequest) (*model.Reservation, error)
	Delete(ctx context.Context, caller *model.User, id string) error
}

// Notifier delivers a short message to every device of a user.
type Notifier interface {
	Notify(userID, title, body string)
}

// Options tunes a Planner. Zero values fall back to defaults.
//
// Source selects how free slots are computed: config.AvailabilityFromService
// trusts the service's list, config.AvailabilityFromReservations derives it
// from the day's reservations.
type Options struct {
	Location      *time.Location
	Locale        string
	CacheTTL      time.Duration
	SubmitTimeout time.Duration
	Source        string
	Now           func() time.Time
}

// Entry is one row of a user's dashboard.
type Entry struct {
	model.Reservation
	DateISO   string `json:"fechaISO"`
	LongDate  string `json:"fechaLarga"`
	Status    Status `json:"estado"`
	Deletable bool   `json:"eliminable"`
}

// Summary holds the dashboard's headline figures.
type Summary struct {
	Total    int     `json:"total"`
	Today    int     `json:"hoy"`
	Rooms    int     `json:"salas"`
	Upcoming []Entry `json:"proximas"`
}

// Summarize computes the figures for entries, which must be sorted as
// Dashboard returns them. Upcoming holds the first three reservations from
// today onwards.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries), Upcoming: []Entry{}}
	rooms := make(map[model.Room]struct{})
	for _, e := range entries {
		rooms[e.Room] = struct{}{}
		if e.Status == StatusToday {
			s.Today++
		}
		if e.Status != StatusPast && len(s.Upcoming) < upcomingLimit {
			s.Upcoming = append(s.Upcoming, e)
		}
	}
	s.Rooms = len(rooms)
	return s
}

// Planner is safe for concurrent use.
type Planner struct {
	client   Reservations
	notifier Notifier
	opts     Options

	slots    *cache.Cache
	inflight *cache.Cache
	fetches  singleflight.Group
}

// NewPlanner creates a planner. notifier may be nil.
func NewPlanner(client Reservations, notifier Notifier, opts Options) *Planner {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Locale == "" {
		opts.Locale = defaultLocale
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaultSubmitTTL
	}
	if opts.Source == "" {
		opts.Source = config.AvailabilityFromService
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Planner{
		client:   client,
		notifier: notifier,
		opts:     opts,
		slots:    cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		inflight: cache.New(opts.SubmitTimeout, time.Minute),
	}
}

// Today returns the current day as YYYY-MM-DD in the planner's location.
func (p *Planner) Today() string {
	return datefmt.Today(p.opts.Now(), p.opts.Location)
}

// Availability returns the free start times of room on isoDate. Invalid
// input yields a *slot.ValidationError; a failing reservation service
// yields an empty list.
func (p *Planner) Availability(ctx context.Context, user *model.User, room model.Room, isoDate string) ([]string, error) {
	free, err := p.availability(ctx, user, room, isoDate)
	var verr *slot.ValidationError
	if errors.As(err, &verr) {
		return nil, err
	}
	if err != nil {
		log.Printf("Error fetching availability for %s on %s: %v", room, isoDate, err)
		return []string{}, nil
	}
	return free, nil
}

func (p *Planner) availability(ctx context.Context, user *model.User, room model.Room, isoDate string) ([]string, error) {
	if !room.Valid() {
		return nil, &slot.ValidationError{Field: "sala", Message: "Sala desconocida"}
	}
	if !datefmt.ValidISO(isoDate) {
		return nil, &slot.ValidationError{Field: "fecha", Message: "Fecha inválida"}
	}

	key := cacheKey(room, isoDate)
	if cached, found := p.slots.Get(key); found {
		return append([]string(nil), cached.([]string)...), nil
	}

	// Concurrent misses for the same room and day share one upstream call,
	// which outlives the cancellation of whichever caller started it.
	v, err, _ := p.fetches.Do(key, func() (interface{}, error) {
		return p.fetch(context.WithoutCancel(ctx), user, room, isoDate)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

func (p *Planner) fetch(ctx context.Context, user *model.User, room model.Room, isoDate string) ([]string, error) {
	backendDate := datefmt.ToBackend(isoDate)
	var free []string
	switch p.opts.Source {
	case config.AvailabilityFromReservations:
		list, err := p.client.List(ctx, user, room, backendDate)
		if err != nil {
			return nil, err
		}
		free, err = slot.Available(room, isoDate, list)
		if err != nil {
			return nil, err
		}
	default:
		resp, err := p.client.Availability(ctx, user, room, backendDate)
		if err != nil {
			return nil, err
		}
		free = slot.Normalize(resp.Available)
	}

	p.slots.Set(cacheKey(room, isoDate), free, cache.DefaultExpiration)
	return free, nil
}

// EndTimes lists the end times a booking of room on isoDate starting at
// start may choose.
func (p *Planner) EndTimes(ctx context.Context, user *model.User, room model.Room, isoDate, start string) ([]string, error) {
	free, err := p.Availability(ctx, user, room, isoDate)
	if err != nil {
		return nil, err
	}
	return slot.EndTimes(start, free), nil
}

// Submit validates req (Date as YYYY-MM-DD) and books it for user. Only one
// submission per user may be in progress at a time.
func (p *Planner) Submit(ctx context.Context, user *model.User, req model.ReservationRequest) (*model.Reservation, error) {
	if err := slot.ValidateRequest(req, p.Today()); err != nil {
		return nil, err
	}

	if err := p.inflight.Add(user.ID, struct{}{}, cache.DefaultExpiration); err != nil {
		return nil, ErrSubmissionInFlight
	}
	defer p.inflight.Delete(user.ID)

	ctx, cancel := context.WithTimeout(ctx, p.opts.SubmitTimeout)
	defer cancel()

	upstream := req
	upstream.Date = datefmt.ToBackend(req.Date)
	res, err := p.client.Create(ctx, user, upstream)
	if errors.Is(err, reservas.ErrConflict) {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err != nil {
		log.Printf("Error creating reservation for user %s: %v", user.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	p.slots.Delete(cacheKey(req.Room, req.Date))
	p.notify(user.ID, notifyTitleNew, p.describe(req.Room, req.Date, req.StartTime, req.EndTime))
	return res, nil
}

// Cancel deletes one of user's own reservations, provided its day has not
// passed.
func (p *Planner) Cancel(ctx context.Context, user *model.User, id string) error {
	mine, err := p.client.Mine(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var target *model.Reservation
	for i := range mine {
		if mine[i].ID == id {
			target = &mine[i]
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}
	if !slot.Deletable(target.Date, p.opts.Now(), p.opts.Location) {
		return ErrPastReservation
	}

	if err := p.client.Delete(ctx, user, id); err != nil {
		if errors.Is(err, reservas.ErrNotFound) {
			return ErrNotFound
		}
		log.Printf("Error deleting reservation %s for user %s: %v", id, user.ID, err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	isoDate, _ := datefmt.ISO(target.Date)
	p.slots.Delete(cacheKey(target.Room, isoDate))
	p.notify(user.ID, notifyTitleGone, p.describe(target.Room, target.Date, target.StartTime, target.EndTime))
	return nil
}

// Dashboard returns user's reservations ordered by day and start time.
func (p *Planner) Dashboard(ctx context.Context, user *model.User) ([]Entry, error) {
	mine, err := p.client.Mine(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	today := p.Today()
	entries := make([]Entry, 0, len(mine))
	for _, r := range mine {
		isoDate, ok := datefmt.ISO(r.Date)
		if !ok {
			isoDate = r.Date
		}
		status := statusOn(isoDate, ok, today)
		entries = append(entries, Entry{
			Reservation: r,
			DateISO:     isoDate,
			LongDate:    datefmt.Long(r.Date, p.opts.Locale),
			Status:      status,
			Deletable:   status != StatusPast,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DateISO != entries[j].DateISO {
			return entries[i].DateISO < entries[j].DateISO
		}
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

// Apply runs a on f and, when the room or day changed, loads the new
// availability into the result.
func (p *Planner) Apply(ctx context.Context, user *model.User, f Form, a Action) Form {
	next := Reduce(f, a)
	if next.Room == f.Room && next.Date == f.Date {
		return next
	}
	if next.Room == "" || next.Date == "" {
		return next
	}
	free, err := p.availability(ctx, user, next.Room, next.Date)
	if err != nil {
		log.Printf("Error loading availability for %s on %s: %v", next.Room, next.Date, err)
		return Reduce(next, AvailabilityFailed{})
	}
	return Reduce(next, AvailabilityLoaded{Slots: free})
}

// SubmitForm submits the reservation f describes and records the outcome on
// the returned form.
func (p *Planner) SubmitForm(ctx context.Context, user *model.User, f Form) (Form, *model.Reservation, error) {
	if f.Loading {
		return f, nil, ErrSubmissionInFlight
	}
	f = Reduce(f, SubmitStarted{})
	res, err := p.Submit(ctx, user, f.Request())
	if err != nil {
		return Reduce(f, SubmitFailed{Message: Message(err)}), nil, err
	}
	return Reduce(f, SubmitSucceeded{Message: MsgCreated}), res, nil
}

// Message turns an error returned by the planner into text fit for the user.
// Upstream details are only surfaced for conflicts.
func Message(err error) string {
	var verr *slot.ValidationError
	var serr *reservas.StatusError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrConflict):
		if errors.As(err, &serr) && serr.Message != "" {
			return serr.Message
		}
		return msgConflict
	case errors.Is(err, ErrSubmissionInFlight):
		return msgInFlight
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrPastReservation):
		return msgPast
	}
	return msgCreateFailed
}

// FailureMessage is Message for errors of the given operation: "create",
// "delete" or "load".
func FailureMessage(op string, err error) string {
	if errors.Is(err, ErrUpstream) {
		switch op {
		case "delete":
			return msgDeleteFailed
		case "load":
			return msgLoadFailed
		}
	}
	return Message(err)
}

func (p *Planner) describe(room model.Room, date, start, end string) string {
	return fmt.Sprintf("%s, %s, %s-%s", room, datefmt.Long(date, p.opts.Locale), start, end)
}

func (p *Planner) notify(userID, title, body string) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(userID, title, body)
}

// statusOn compares days as YYYY-MM-DD strings. Unparseable dates count as
// past so they are never offered for cancellation.
func statusOn(isoDate string, valid bool, today string) Status {
	switch {
	case !valid || isoDate < today:
		return StatusPast
	case isoDate == today:
		return StatusToday
	}
	return StatusUpcoming
}

func cacheKey(room model.Room, isoDate string) string {
	return string(room) + "|" + isoDate
}
