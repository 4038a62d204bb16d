package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGone = errors.New("gone")

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestRespondErrorMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("load: %w", errGone), Mapping{Err: errGone, Status: http.StatusServiceUnavailable, Title: "Gone"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	p := decodeProblem(t, rec)
	assert.Equal(t, "Gone", p.Title)
	assert.Equal(t, "load: gone", p.Detail)
}

func TestRespondErrorDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	rec = httptest.NewRecorder()
	RespondError(rec, errors.New("secret internals"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, decodeProblem(t, rec).Detail)
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]int{"n": 1})
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
