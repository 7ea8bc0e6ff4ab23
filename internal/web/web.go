// Package web serves the three-step bill splitting UI as server-rendered
// HTML forms.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/service"
	"github.com/mmynk/splitbill/internal/session"
	"github.com/mmynk/splitbill/internal/storage"
	"github.com/mmynk/splitbill/internal/token"
)

// CookieName holds the signed session token.
const CookieName = "splitbill_session"

// maxFormBytes caps a form post body.
const maxFormBytes = 1 << 20

//go:embed templates/*.html
var templateFS embed.FS

// Server renders pages and turns form posts into session intents.
type Server struct {
	sessions     *service.SessionService
	templates    *template.Template
	secureCookie bool
}

// Option configures a Server.
type Option func(*Server)

// WithSecureCookie marks the session cookie Secure, for HTTPS deployments.
func WithSecureCookie() Option {
	return func(s *Server) { s.secureCookie = true }
}

// New parses the page templates and returns a Server.
func New(sessions *service.SessionService, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s := &Server{sessions: sessions, templates: tmpl}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes mounts the UI on a chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer, chimw.RequestSize(maxFormBytes))

	r.Get("/", s.handleIndex)
	r.Post("/count", s.handleCount)
	r.Post("/orders", s.handleOrders)
	r.Post("/back", s.handleIntent(session.Back{}))
	r.Post("/reset", s.handleIntent(session.Reset{}))
	r.Post("/locale", s.handleLocale)
	r.Get("/summary.png", s.handleExport)
	r.Get("/healthz", handleHealth)
	return r
}

// loadSession resumes the session named by the cookie, or starts a new one
// when there is none or it expired. A resumed session gets a fresh token so
// the cookie expires with the session, not with the first visit.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		sess, err := s.sessions.Resume(r.Context(), c.Value)
		if err == nil {
			tok, err := s.sessions.Token(sess)
			if err != nil {
				return nil, err
			}
			s.setCookie(w, tok)
			return sess, nil
		}
		if !errors.Is(err, token.ErrInvalidToken) && !errors.Is(err, token.ErrMissingToken) && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		slog.Debug("Session cookie discarded", "error", err)
	}

	sess, tok, err := s.sessions.Start(r.Context(), preferredLocale(r))
	if err != nil {
		return nil, err
	}
	s.setCookie(w, tok)
	return sess, nil
}

func (s *Server) setCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// preferredLocale picks the first supported language of Accept-Language.
func preferredLocale(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if l, ok := i18n.Parse(tag); ok {
			return string(l)
		}
	}
	return ""
}

func (s *Server) render(w http.ResponseWriter, status int, sess *session.Session, notice string) {
	data := s.pageData(sess, notice)

	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, "page", data); err != nil {
		slog.Error("Failed to render page", "step", sess.Step, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func serverError(w http.ResponseWriter, err error) {
	slog.Error("Request failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
