package theme

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// ClientHint is the request header carrying the browser's color scheme.
	ClientHint = "Sec-CH-Prefers-Color-Scheme"
	// SystemCookie mirrors the browser's prefers-color-scheme media query for browsers
	// that do not send ClientHint. It is written by theme.js.
	SystemCookie = "webhooks-system-scheme"
)

type storeContextKey struct{}

// WithStore stores the request's preference store in context.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// FromContext returns the request store, or nil outside the middleware.
func FromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}

// Current returns the request preference, light when no store is present.
func Current(ctx context.Context) Preference {
	if store := FromContext(ctx); store != nil {
		return store.Get()
	}
	return Light
}

// SystemPrefersDark reads the client hint sent by the browser, falling back to the
// scheme cookie set by the page script.
func SystemPrefersDark(r *http.Request) bool {
	value := strings.Trim(strings.TrimSpace(r.Header.Get(ClientHint)), `"`)
	if value == "" {
		if c, err := r.Cookie(SystemCookie); err == nil {
			value = c.Value
		}
	}
	return strings.EqualFold(value, "dark")
}

// Middleware resolves the preference for each request and persists any change made
// while the request is handled.
func Middleware(persister Persister, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Accept-CH", ClientHint)
			w.Header().Set("Critical-CH", ClientHint)
			w.Header().Add("Vary", ClientHint)

			persisted, _ := persister.Load(r)
			store := NewStore(Resolve(persisted, SystemPrefersDark(r)))
			r = r.WithContext(WithStore(r.Context(), store))

			unsubscribe := store.Subscribe(func(p Preference) {
				if err := persister.Save(w, r, p); err != nil && logger != nil {
					logger.Warn("persist theme preference", slog.Any("error", err))
				}
			})
			defer unsubscribe()

			next.ServeHTTP(w, r)
		})
	}
}
