package theme

import (
	"net/http"
	"time"

	"github.com/webhooks-analytics/console/internal/shared"
)

// Persister reads and writes the preference outside the request.
type Persister interface {
	Load(r *http.Request) (string, bool)
	Save(w http.ResponseWriter, r *http.Request, p Preference) error
}

// CookiePersister keeps the preference in a long-lived cookie named SlotName.
type CookiePersister struct {
	MaxAge time.Duration
	Secure bool
}

// Load implements Persister.
func (c CookiePersister) Load(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SlotName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Save implements Persister.
func (c CookiePersister) Save(w http.ResponseWriter, _ *http.Request, p Preference) error {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SlotName,
		Value:    string(p),
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionPersister keeps the preference on the Redis-backed session.
type SessionPersister struct{}

// Load implements Persister.
func (SessionPersister) Load(r *http.Request) (string, bool) {
	value := shared.SessionFromContext(r.Context()).Get(SlotName)
	return value, value != ""
}

// Save implements Persister.
func (SessionPersister) Save(_ http.ResponseWriter, r *http.Request, p Preference) error {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return shared.ErrSessionMissing
	}
	sess.Set(SlotName, string(p))
	return nil
}

// Chain loads from the first persister holding a value and saves to all of them.
type Chain []Persister

// Load implements Persister.
func (c Chain) Load(r *http.Request) (string, bool) {
	for _, p := range c {
		if value, ok := p.Load(r); ok {
			return value, true
		}
	}
	return "", false
}

// Save implements Persister.
func (c Chain) Save(w http.ResponseWriter, r *http.Request, pref Preference) error {
	var firstErr error
	for _, p := range c {
		if err := p.Save(w, r, pref); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
