package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"babysteps/internal/api"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/session"
	"babysteps/internal/state"
	appweb "babysteps/web"
)

const sessionCookie = "bs_session"

// pageContext carries the resolved session for one request.
type pageContext struct {
	SID        string
	Sess       session.Session
	Containers *state.Containers
}

func (pc *pageContext) Authenticated() bool {
	return pc.Containers != nil && pc.Containers.Auth.IsAuthenticated()
}

func (pc *pageContext) User() (core.Profile, bool) {
	if pc.Containers == nil {
		return core.Profile{}, false
	}
	return pc.Containers.Auth.User()
}

type pageHandler func(http.ResponseWriter, *http.Request, *pageContext)

// page resolves the session cookie, creating an anonymous session on first
// contact, and rehydrates auth state from the store.
func (s *Server) page(h pageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(ctx, "Suspicious request",
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"suspicious_total", s.detector.GetMetrics().SuspiciousRequests)
		}

		sid := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			sid = c.Value
		}

		sess, err := s.resolveSession(ctx, sid)
		if err != nil {
			s.logger.ErrorContext(ctx, "Session resolution failed", log.FieldError, err.Error())
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		if sess.SID != sid {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.SID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}

		containers, err := s.services.Auth.Hydrate(ctx, sess.SID)
		if err != nil {
			s.logger.WarnContext(ctx, "Session hydration failed",
				log.FieldSessionID, sess.SID, log.FieldError, err.Error())
		}

		// Re-read: hydration may have cleared a dead token.
		sess, _ = s.sessions.Get(ctx, sess.SID)

		h(w, r, &pageContext{SID: sess.SID, Sess: sess, Containers: containers})
	}
}

func (s *Server) resolveSession(ctx context.Context, sid string) (session.Session, error) {
	if sid != "" {
		sess, err := s.sessions.Get(ctx, sid)
		if err == nil {
			return sess, nil
		}
		if err != session.ErrNotFound {
			return session.Session{}, err
		}
	}
	return s.sessions.Create(ctx)
}

// requireAuth redirects unauthenticated requests to the login page.
func (s *Server) requireAuth(h pageHandler) pageHandler {
	return func(w http.ResponseWriter, r *http.Request, pc *pageContext) {
		if !pc.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r, pc)
	}
}

// authedCtx attaches the session's bearer token for backend calls.
func authedCtx(r *http.Request, pc *pageContext) context.Context {
	return api.WithToken(r.Context(), pc.Containers.Auth.Token())
}

// basePage is the data every template receives. CompletedBabySteps mirrors
// the session's durable flag and gates the Milestones nav link.
type basePage struct {
	Title              string
	Authenticated      bool
	CompletedBabySteps bool
	User               core.Profile
}

func (s *Server) base(title string, pc *pageContext) basePage {
	p := basePage{
		Title:              title,
		Authenticated:      pc.Authenticated(),
		CompletedBabySteps: pc.Sess.CompletedBabySteps,
	}
	if u, ok := pc.User(); ok {
		p.User = u
	}
	return p
}

// parseTemplates builds one template set per page, each sharing base.html.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"dollars":    core.FormatDollars,
		"alertClass": alertClass,
	}

	templates := make(map[string]*template.Template)
	for _, p := range pages {
		name := path.Base(p)
		if name == "base.html" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/base.html", p)
		if err != nil {
			return nil, err
		}
		templates[name] = t
	}
	return templates, nil
}

// render executes a page template. Render failures after the first byte
// cannot be recovered, so errors are logged and the response left as-is.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	t, ok := s.templates[name]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Unknown template", "template", name)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldError, err.Error())
	}
}

// backendMessage unwraps the backend's verbatim error message for inline
// display, with a generic fallback for transport failures.
func backendMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// formValue trims a posted field.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
