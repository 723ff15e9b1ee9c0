package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"roomy-backend/internal/auth"
	"roomy-backend/internal/booking"
	"roomy-backend/internal/store"
)

// SessionSettings describes the session cookie handed to browsers.
type SessionSettings struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
	// UIURL is where the browser lands after signing in or out.
	UIURL string
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	planner  *booking.Planner
	identity auth.Identity
	profiles auth.ProfileSource
	session  SessionSettings
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options, planner *booking.Planner, identity auth.Identity, profiles auth.ProfileSource, session SessionSettings) *Handler {
	if session.CookieName == "" {
		session.CookieName = "roomy_session"
	}
	if session.UIURL == "" {
		session.UIURL = "/"
	}
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		planner:  planner,
		identity: identity,
		profiles: profiles,
		session:  session,
	}
}
