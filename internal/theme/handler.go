package theme

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/webhooks-analytics/console/internal/platform/httpx"
)

// ToggleObserver is notified after each toggle.
type ToggleObserver interface {
	ObserveThemeToggle(p Preference)
}

// ToggleHandler flips the request preference. Fetch callers receive JSON; form posts are
// redirected back to the page they came from.
func ToggleHandler(observer ToggleObserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := FromContext(r.Context())
		if store == nil {
			httpx.Problem(w, http.StatusInternalServerError, "Theme Unavailable", "preference store missing")
			return
		}
		next := store.Toggle()
		if observer != nil {
			observer.ObserveThemeToggle(next)
		}
		if wantsJSON(r) {
			httpx.JSON(w, http.StatusOK, map[string]string{"theme": string(next), "class": next.Class()})
			return
		}
		http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// backTarget returns the same-origin path of the referer, or "/".
func backTarget(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
