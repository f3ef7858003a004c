package api

import (
	"net/http"

	"github.com/calvinwijaya/blackjack-web/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var errNoSession = errors.New("no session cookie")

// sessionEntry resolves the session cookie of the request
func (h *Handlers) sessionEntry(r *http.Request) (*store.Entry, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, errNoSession
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil, errors.Wrap(err, "malformed session cookie")
	}
	return h.store.GetSession(cookie.Value)
}

// setSessionCookie ties the browser session to a game session. The cookie
// has no expiry so it ends with the browser session.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
