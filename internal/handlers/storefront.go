// Package handlers serves the demo storefront: a server-rendered shop that
// works without JavaScript, so every engine can drive it.
package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"inventory.html",
	"cart.html",
	"checkout-step-one.html",
	"checkout-step-two.html",
	"checkout-complete.html",
}

// Options configures NewStorefront
type Options struct {
	Auth        services.AuthService
	Orders      services.OrderService
	Catalog     *models.Catalog
	Sessions    *SessionStore
	Log         *logging.Sink
	GlitchDelay time.Duration
}

// Storefront holds the handlers of the demo shop
type Storefront struct {
	auth        services.AuthService
	orders      services.OrderService
	catalog     *models.Catalog
	sessions    *SessionStore
	log         *logging.Sink
	glitchDelay time.Duration
	pages       map[string]*template.Template
}

// NewStorefront parses the embedded templates and wires the services
func NewStorefront(opts Options) (*Storefront, error) {
	if opts.Auth == nil || opts.Orders == nil || opts.Catalog == nil {
		return nil, fmt.Errorf("storefront needs auth, order service and catalog")
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore()
	}
	if opts.Log == nil {
		opts.Log = logging.NewNop()
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Storefront{
		auth:        opts.Auth,
		orders:      opts.Orders,
		catalog:     opts.Catalog,
		sessions:    opts.Sessions,
		log:         opts.Log,
		glitchDelay: opts.GlitchDelay,
		pages:       pages,
	}, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Routes returns the storefront handler
func (s *Storefront) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.serveLogin)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", s.serveHealth)
	mux.HandleFunc("GET /static/img/{name}", s.serveImage)

	mux.Handle("GET /inventory.html", s.authenticated(s.serveInventory))
	mux.Handle("POST /cart/add", s.authenticated(s.handleCartAdd))
	mux.Handle("POST /cart/remove", s.authenticated(s.handleCartRemove))
	mux.Handle("POST /cart/continue", s.authenticated(s.handleContinueShopping))
	mux.Handle("GET /reset-app-state", s.authenticated(s.handleReset))
	mux.Handle("GET /cart.html", s.authenticated(s.serveCart))

	mux.Handle("POST /checkout/start", s.authenticated(s.handleCheckoutStart))
	mux.Handle("GET /checkout-step-one.html", s.authenticated(s.serveStepOne))
	mux.Handle("POST /checkout-step-one.html", s.authenticated(s.handleStepOne))
	mux.Handle("GET /checkout-step-two.html", s.authenticated(s.serveStepTwo))
	mux.Handle("POST /checkout/finish", s.authenticated(s.handleFinish))
	mux.Handle("GET /checkout-complete.html", s.authenticated(s.serveComplete))

	mux.HandleFunc("/", s.serveNotFound)

	return s.logRequests(mux)
}

// shopperHandler is a handler that runs with a logged-in shopper
type shopperHandler func(w http.ResponseWriter, r *http.Request, sess ShopperSession)

// authenticated sends anonymous requests back to the login page, which
// explains what they tried to open
func (s *Storefront) authenticated(next shopperHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Lookup(r)
		if !ok {
			q := url.Values{}
			q.Set("error", errUnauthenticated)
			q.Set("path", r.URL.Path)
			redirect(w, r, "/?"+q.Encode())
			return
		}
		next(w, r, sess)
	})
}

// pageData is shared by every rendered page
type pageData struct {
	Title      string
	MenuOpen   bool
	CartCount  int
	Error      string
	ErrorClose string
}

func (s *Storefront) page(r *http.Request, sess ShopperSession, title string) pageData {
	return pageData{
		Title:     title,
		MenuOpen:  r.URL.Query().Get("menu") == "open",
		CartCount: sess.Cart.Len(),
	}
}

// render executes a page into a buffer so a template error never leaves a
// half-written response
func (s *Storefront) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("unknown page %s", name))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// throttle delays the performance glitch persona
func (s *Storefront) throttle(ctx context.Context, user services.User) error {
	if user.Persona != services.PersonaGlitch || s.glitchDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.glitchDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// redirect answers with 303 so the follow-up request is always a GET
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeReturn keeps post-action redirects on this site
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/inventory.html"
	}
	return target
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Storefront) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("storefront request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
