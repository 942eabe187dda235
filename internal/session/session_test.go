package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testHashKey  = []byte("very-very-very-very-secret-key32")
	testBlockKey = []byte("a-lot-of-secret!")
)

func TestManager_EnsureThenID(t *testing.T) {
	m := NewManager(testHashKey, testBlockKey)

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	id, err := m.Ensure(res, req)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	setCookie := res.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, DefaultCookieName+"=")
	assert.Contains(t, setCookie, "HttpOnly")

	next := httptest.NewRequest(http.MethodPost, "/", nil)
	next.Header.Set("Cookie", setCookie)

	got, err := m.ID(next)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	again := httptest.NewRecorder()
	same, err := m.Ensure(again, next)
	require.NoError(t, err)
	assert.Equal(t, id, same)
	assert.Empty(t, again.Header().Get("Set-Cookie"), "existing session is reused")
}

func TestManager_ID(t *testing.T) {
	m := NewManager(testHashKey, testBlockKey)

	t.Run("no cookie", func(t *testing.T) {
		_, err := m.ID(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "forged"})
		_, err := m.ID(req)
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("cookie from other keys", func(t *testing.T) {
		other := NewManager(nil, nil)
		res := httptest.NewRecorder()
		_, err := other.Ensure(res, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Cookie", res.Header().Get("Set-Cookie"))
		_, err = m.ID(req)
		require.ErrorIs(t, err, ErrNoSession)
	})
}

func TestManager_Options(t *testing.T) {
	m := NewManager(testHashKey, testBlockKey, WithCookieName("sid"), WithSecure(true))
	res := httptest.NewRecorder()
	_, err := m.Ensure(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	setCookie := res.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, "sid=")
	assert.Contains(t, setCookie, "Secure")
}

func TestManager_Prepare(t *testing.T) {
	m := NewManager(testHashKey, testBlockKey)

	id, cookie, err := m.Prepare(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	require.NotNil(t, cookie, "a new session comes with its cookie")
	assert.Equal(t, DefaultCookieName, cookie.Name)

	next := httptest.NewRequest(http.MethodPost, "/", nil)
	next.AddCookie(cookie)

	same, none, err := m.Prepare(next)
	require.NoError(t, err)
	assert.Equal(t, id, same)
	assert.Nil(t, none)
}
