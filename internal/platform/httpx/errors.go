package httpx

import (
	"context"
	"errors"
	"net/http"
)

// Mapping binds a sentinel error to the problem reported for it.
type Mapping struct {
	Err    error
	Status int
	Title  string
}

// RespondError writes the problem of the first mapping matching err. Deadlines map to
// 504; anything else is an opaque 500.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			Problem(w, m.Status, m.Title, err.Error())
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		Problem(w, http.StatusGatewayTimeout, "Timeout", "request deadline exceeded")
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
