package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adyen/storefront-e2e/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWith(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/inventory.html", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestSessionStore_StartAndLookup(t *testing.T) {
	store := NewSessionStore()
	w := httptest.NewRecorder()
	user := services.User{Username: "standard_user", Persona: services.PersonaStandard}

	sess := store.Start(w, user)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	got, ok := store.Lookup(requestWith(cookies))
	require.True(t, ok)
	assert.Equal(t, user, got.User)
	assert.Equal(t, 0, got.Cart.Len())
}

func TestSessionStore_LookupUnknown(t *testing.T) {
	store := NewSessionStore()

	tests := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{name: "no cookie"},
		{name: "unknown id", cookies: []*http.Cookie{{Name: SessionCookieName, Value: "nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := store.Lookup(requestWith(tt.cookies))
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_UpdateReturnsSnapshot(t *testing.T) {
	store := NewSessionStore()
	w := httptest.NewRecorder()
	sess := store.Start(w, services.User{Username: "standard_user"})

	// GIVEN a snapshot taken before the update
	before, ok := store.Lookup(requestWith(w.Result().Cookies()))
	require.True(t, ok)

	// WHEN the stored session changes
	after, ok := store.Update(sess.ID, func(ss *ShopperSession) { ss.Cart.Add(4) })
	require.True(t, ok)

	// THEN the old snapshot is unaffected
	assert.Equal(t, 1, after.Cart.Len())
	assert.Equal(t, 0, before.Cart.Len())

	// and changing a snapshot does not reach the store
	after.Cart.Add(5)
	again, _ := store.Lookup(requestWith(w.Result().Cookies()))
	assert.Equal(t, []int{4}, again.Cart.IDs())
}

func TestSessionStore_UpdateUnknown(t *testing.T) {
	store := NewSessionStore()

	_, ok := store.Update("missing", func(*ShopperSession) { t.Error("fn should not run") })

	assert.False(t, ok)
}

func TestSessionStore_SessionsAreIsolated(t *testing.T) {
	store := NewSessionStore()
	a := store.Start(httptest.NewRecorder(), services.User{Username: "standard_user"})
	b := store.Start(httptest.NewRecorder(), services.User{Username: "standard_user"})

	store.Update(a.ID, func(ss *ShopperSession) { ss.Cart.Add(4) })

	got, _ := store.Update(b.ID, func(*ShopperSession) {})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 0, got.Cart.Len())
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_End(t *testing.T) {
	store := NewSessionStore()
	start := httptest.NewRecorder()
	store.Start(start, services.User{Username: "standard_user"})
	r := requestWith(start.Result().Cookies())

	w := httptest.NewRecorder()
	store.End(w, r)

	_, ok := store.Lookup(r)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
