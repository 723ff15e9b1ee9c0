package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"roomy-backend/config"
	"roomy-backend/internal/auth"
	"roomy-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	perSec, burst := cfg.RateLimitPerSec, cfg.RateLimitBurst
	if perSec <= 0 {
		perSec = 10
	}
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(rate.Limit(perSec), burst)

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	requireSession := mw.RequireSession(h.identity, h.session.CookieName, auth.ErrUnauthenticated)

	authGroup := r.Group("/auth")
	authGroup.Use(rateLimiter)
	{
		authGroup.GET("/google", h.GoogleLogin)
		authGroup.GET("/google/callback", h.GoogleCallback)
		authGroup.GET("/me", requireSession, h.Me)
		authGroup.POST("/logout", h.Logout)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, GetRooms)
		api.GET("/slots", caching, GetSlots)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		private := api.Group("")
		private.Use(requireSession)
		{
			private.GET("/availability", h.GetAvailability)
			private.GET("/end-times", h.GetEndTimes)

			private.GET("/reservas", h.ListReservations)
			private.POST("/reservas", h.CreateReservation)
			private.DELETE("/reservas/:id", h.DeleteReservation)

			private.POST("/form", h.ApplyFormAction)
			private.POST("/form/submit", h.SubmitForm)

			private.GET("/subscriptions", h.GetSubscription)
			private.PUT("/subscriptions", h.PutSubscription)
			private.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
