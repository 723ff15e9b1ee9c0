package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roomy-backend/internal/mw"
)

const (
	stateCookie = "roomy_oauth_state"
	stateMaxAge = 600
)

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.session.Secure, true)
}

// GoogleLogin sends the browser to Google's consent page.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, stateCookie, state, stateMaxAge)
	c.Redirect(http.StatusFound, h.profiles.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow, opens a session and returns the
// browser to the UI.
func (h *Handler) GoogleCallback(c *gin.Context) {
	want, err := c.Cookie(stateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	h.setCookie(c, stateCookie, "", -1)

	if e := c.Query("error"); e != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": e})
		return
	}

	profile, err := h.profiles.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.Printf("Google sign-in failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No se pudo iniciar sesión con Google"})
		return
	}

	token, _, err := h.identity.Login(c.Request.Context(), *profile)
	if err != nil {
		writeError(c, "login", err)
		return
	}

	h.setCookie(c, h.session.CookieName, token, int(h.session.TTL.Seconds()))
	c.Redirect(http.StatusFound, h.session.UIURL)
}

// Me returns the signed-in user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": mw.CurrentUser(c)})
}

// Logout revokes the caller's session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token := mw.Token(c, h.session.CookieName); token != "" {
		if err := h.identity.Logout(c.Request.Context(), token); err != nil {
			writeError(c, "logout", err)
			return
		}
	}
	h.setCookie(c, h.session.CookieName, "", -1)
	c.Status(http.StatusNoContent)
}
