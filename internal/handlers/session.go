package handlers

import (
	"net/http"
	"sync"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/services"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the shopper session ID
const SessionCookieName = "session-id"

// ShopperSession is the server-side state of a logged-in shopper
type ShopperSession struct {
	ID        string
	User      services.User
	Cart      models.Cart
	Shipping  models.Shipping
	LastOrder string
}

func (s *ShopperSession) snapshot() ShopperSession {
	c := *s
	c.Cart = s.Cart.Clone()
	return c
}

// SessionStore keeps shopper sessions in memory, keyed by cookie value
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*ShopperSession
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*ShopperSession{}}
}

// Start creates a session for user and sets its cookie
func (s *SessionStore) Start(w http.ResponseWriter, user services.User) ShopperSession {
	sess := &ShopperSession{ID: uuid.NewString(), User: user}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	snap := sess.snapshot()
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return snap
}

// Lookup returns a copy of the session named by the request cookie
func (s *SessionStore) Lookup(r *http.Request) (ShopperSession, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ShopperSession{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cookie.Value]
	if !ok {
		return ShopperSession{}, false
	}
	return sess.snapshot(), true
}

// Update applies fn to the stored session and returns the result
func (s *SessionStore) Update(id string, fn func(*ShopperSession)) (ShopperSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ShopperSession{}, false
	}
	fn(sess)
	return sess.snapshot(), true
}

// End drops the session named by the request cookie and expires the cookie
func (s *SessionStore) End(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
