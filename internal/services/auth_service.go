package services

import (
	"errors"
	"sort"
)

// SharedPassword is accepted for every known user
const SharedPassword = "secret_sauce"

// Authentication errors. The messages are shown to the shopper verbatim.
var (
	ErrUsernameRequired    = errors.New("Username is required")
	ErrPasswordRequired    = errors.New("Password is required")
	ErrLockedOut           = errors.New("Sorry, this user has been locked out.")
	ErrCredentialsMismatch = errors.New("Username and password do not match any user in this service")
)

// Persona changes how the storefront behaves for a user
type Persona string

// Personas of the demo users
const (
	PersonaStandard  Persona = "standard"
	PersonaLockedOut Persona = "locked_out"
	PersonaProblem   Persona = "problem"
	PersonaGlitch    Persona = "performance_glitch"
	PersonaError     Persona = "error"
	PersonaVisual    Persona = "visual"
)

// User is an account of the demo storefront
type User struct {
	Username string
	Persona  Persona
}

// AuthService checks shopper credentials
type AuthService interface {
	Authenticate(username, password string) (User, error)
	Usernames() []string
}

// AuthServiceImpl implements AuthService over a fixed user table
type AuthServiceImpl struct {
	users    map[string]User
	password string
}

// NewAuthService creates an auth service with the demo users
func NewAuthService() AuthService {
	users := map[string]User{}
	for _, u := range []User{
		{Username: "standard_user", Persona: PersonaStandard},
		{Username: "locked_out_user", Persona: PersonaLockedOut},
		{Username: "problem_user", Persona: PersonaProblem},
		{Username: "performance_glitch_user", Persona: PersonaGlitch},
		{Username: "error_user", Persona: PersonaError},
		{Username: "visual_user", Persona: PersonaVisual},
	} {
		users[u.Username] = u
	}
	return &AuthServiceImpl{users: users, password: SharedPassword}
}

// Authenticate validates the pair in the order the login form reports errors:
// missing username, missing password, locked account, then mismatch
func (s *AuthServiceImpl) Authenticate(username, password string) (User, error) {
	if username == "" {
		return User{}, ErrUsernameRequired
	}
	if password == "" {
		return User{}, ErrPasswordRequired
	}

	user, ok := s.users[username]
	if !ok || password != s.password {
		return User{}, ErrCredentialsMismatch
	}
	if user.Persona == PersonaLockedOut {
		return User{}, ErrLockedOut
	}
	return user, nil
}

// Usernames lists the accepted usernames, sorted
func (s *AuthServiceImpl) Usernames() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
