package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap"
)

// Error codes carried in the login page query string
const (
	errUsernameRequired = "username"
	errPasswordRequired = "password"
	errLockedOut        = "locked"
	errMismatch         = "mismatch"
	errUnauthenticated  = "unauthenticated"
)

type loginData struct {
	pageData
	Username  string
	Usernames []string
}

// serveLogin renders the login form. A logged-in shopper goes straight to
// the catalog.
func (s *Storefront) serveLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.Lookup(r); ok && r.URL.Query().Get("error") == "" {
		redirect(w, r, "/inventory.html")
		return
	}

	q := r.URL.Query()
	data := loginData{
		pageData:  pageData{Title: "Swag Labs", ErrorClose: "/"},
		Username:  q.Get("username"),
		Usernames: s.auth.Usernames(),
	}
	if msg := loginMessage(q.Get("error"), q.Get("path")); msg != "" {
		data.Error = "Epic sadface: " + msg
	}
	s.render(w, r, "login.html", data)
}

func loginMessage(code, path string) string {
	switch code {
	case errUsernameRequired:
		return services.ErrUsernameRequired.Error()
	case errPasswordRequired:
		return services.ErrPasswordRequired.Error()
	case errLockedOut:
		return services.ErrLockedOut.Error()
	case errMismatch:
		return services.ErrCredentialsMismatch.Error()
	case errUnauthenticated:
		return "You can only access '" + cleanPath(path) + "' when you are logged in."
	}
	return ""
}

// cleanPath keeps only the path part of a user supplied location
func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (s *Storefront) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	username := r.PostForm.Get("user-name")
	password := r.PostForm.Get("password")

	user, err := s.auth.Authenticate(username, password)
	if err != nil {
		code := errMismatch
		switch {
		case errors.Is(err, services.ErrUsernameRequired):
			code = errUsernameRequired
		case errors.Is(err, services.ErrPasswordRequired):
			code = errPasswordRequired
		case errors.Is(err, services.ErrLockedOut):
			code = errLockedOut
		}
		s.log.Info("login rejected", zap.String("username", username), zap.String("reason", code))

		q := url.Values{}
		q.Set("error", code)
		q.Set("username", username)
		redirect(w, r, "/?"+q.Encode())
		return
	}

	if err := s.throttle(r.Context(), user); err != nil {
		return
	}

	s.sessions.Start(w, user)
	s.log.Info("login accepted", zap.String("username", user.Username), zap.String("persona", string(user.Persona)))
	redirect(w, r, "/inventory.html")
}

func (s *Storefront) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(w, r)
	redirect(w, r, "/")
}
