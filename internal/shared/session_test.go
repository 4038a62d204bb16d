package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "console_session", "session-secret", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.True(t, mr.Exists("console:session:"+sess.ID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "console_session", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "dark", loaded.Get("theme"))
	assert.False(t, loaded.Dirty())
}

func TestSessionSetSameValueStaysClean(t *testing.T) {
	sess := newSession("abc")
	sess.isNew, sess.dirty = false, false
	sess.Set("k", "v")
	assert.True(t, sess.Dirty())
	sess.dirty = false
	sess.Set("k", "v")
	assert.False(t, sess.Dirty())
	sess.Delete("missing")
	assert.False(t, sess.Dirty())
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "console_session", Value: sm.sign("expired")})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "expired", sess.ID)
	assert.Empty(t, sess.Get("theme"))
	assert.True(t, sess.Dirty())
}

func TestSessionTamperedCookieIsReplaced(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	victim := newSession("victim")
	victim.Set("theme", "dark")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), victim))
	require.True(t, mr.Exists("console:session:victim"))

	for _, value := range []string{"victim", "victim.forged", ".sig"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "console_session", Value: value})
		sess, err := sm.Load(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, "victim", sess.ID, value)
		assert.Empty(t, sess.Get("theme"), value)
	}
}

func TestCSRFTokens(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := newSession("abc")

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(sess, token))
	assert.ErrorIs(t, m.VerifyToken(sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(nil, token), ErrCSRFTokenMissing)

	_, err = m.EnsureToken(nil)
	assert.ErrorIs(t, err, ErrSessionMissing)
}

func TestSessionFromContext(t *testing.T) {
	assert.Nil(t, SessionFromContext(context.Background()))
	sess := newSession("abc")
	assert.Same(t, sess, SessionFromContext(ContextWithSession(context.Background(), sess)))
}
