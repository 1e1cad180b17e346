package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/domain/events"
	"mediation-cms/internal/domain/posts"
	"mediation-cms/internal/domain/submissions"
	"mediation-cms/internal/domain/users"
	"mediation-cms/internal/intake"
	"mediation-cms/internal/middleware"
	"mediation-cms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const defaultSite = "Community Mediation Center"

type Deps struct {
	Posts       *posts.Service
	Events      *events.Service
	Submissions *submissions.Service
	Users       *users.Service

	// Auth comparte issuer/cookie con /api/auth/login.
	Auth users.HandlerDeps
	Log  logger.Logger

	SiteName string
}

type handler struct {
	deps  Deps
	pages map[string]*template.Template
	now   func() time.Time
}

// pageData es lo que recibe el layout; Data depende de cada página.
type pageData struct {
	Site  string
	Title string
	Year  int
	Data  any
}

var funcs = template.FuncMap{
	"date":       formatDate,
	"paragraphs": paragraphs,
}

var pageNames = []string{
	"home", "services", "about", "events", "blog", "post", "not_found",
	"admin_login", "admin_dashboard",
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

// RegisterRoutes monta el sitio público y el dashboard del staff.
func RegisterRoutes(r chi.Router, deps Deps) error {
	pages, err := parsePages()
	if err != nil {
		return err
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if strings.TrimSpace(deps.SiteName) == "" {
		deps.SiteName = defaultSite
	}
	h := &handler{deps: deps, pages: pages, now: time.Now}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", h.home)
	r.Get("/services", h.services)
	r.Get("/about", h.about)
	r.Get("/events", h.eventsPage)
	r.Get("/blog", h.blog)
	r.Get("/blog/{slug}", h.post)

	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/", h.dashboard)
		ar.Get("/login", h.loginForm)
		ar.Post("/login", h.login)
		ar.Post("/logout", h.logout)
	})

	return nil
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := h.pages[page]
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", pageData{
		Site:  h.deps.SiteName,
		Title: title,
		Year:  h.now().Year(),
		Data:  data,
	})
	if err != nil {
		h.deps.Log.Error("render page", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"page":       page,
			"error":      err,
		})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.deps.Log.Error(what, map[string]any{
		"request_id": chimw.GetReqID(r.Context()),
		"error":      err,
	})
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// Las páginas públicas leen siempre como anónimo: solo contenido publicado.

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	anon := access.Anonymous()
	evs, err := h.deps.Events.Upcoming(r.Context(), anon, 3)
	if err != nil {
		h.fail(w, r, "home: upcoming events", err)
		return
	}
	ps, err := h.deps.Posts.List(r.Context(), anon, posts.ListFilter{Status: posts.StatusPublished, Limit: 3})
	if err != nil {
		h.fail(w, r, "home: recent posts", err)
		return
	}
	h.render(w, r, http.StatusOK, "home", "", map[string]any{"Events": evs, "Posts": ps})
}

func (h *handler) services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "services", "Services", map[string]any{"Forms": intake.Forms()})
}

func (h *handler) about(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", "About", nil)
}

func (h *handler) eventsPage(w http.ResponseWriter, r *http.Request) {
	evs, err := h.deps.Events.Upcoming(r.Context(), access.Anonymous(), 50)
	if err != nil {
		h.fail(w, r, "events page", err)
		return
	}
	h.render(w, r, http.StatusOK, "events", "Events", map[string]any{"Events": evs})
}

func (h *handler) blog(w http.ResponseWriter, r *http.Request) {
	ps, err := h.deps.Posts.List(r.Context(), access.Anonymous(), posts.ListFilter{Status: posts.StatusPublished, Limit: 50})
	if err != nil {
		h.fail(w, r, "blog page", err)
		return
	}
	h.render(w, r, http.StatusOK, "blog", "Blog", map[string]any{"Posts": ps})
}

func (h *handler) post(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Posts.GetBySlug(r.Context(), access.Anonymous(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			h.render(w, r, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}
		h.fail(w, r, "post page", err)
		return
	}
	h.render(w, r, http.StatusOK, "post", p.Title, map[string]any{"Post": p})
}

// --- dashboard ---

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	req := middleware.RequesterFrom(r.Context())
	if !access.IsCoordinatorOrAdmin(req) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	ps, err := h.deps.Posts.List(r.Context(), req, posts.ListFilter{Limit: 5})
	if err != nil {
		h.fail(w, r, "dashboard: posts", err)
		return
	}
	evs, err := h.deps.Events.Upcoming(r.Context(), req, 5)
	if err != nil {
		h.fail(w, r, "dashboard: events", err)
		return
	}
	subs, err := h.deps.Submissions.List(r.Context(), req, submissions.ListFilter{Status: submissions.StatusNew, Limit: 10})
	if err != nil {
		h.fail(w, r, "dashboard: submissions", err)
		return
	}

	h.render(w, r, http.StatusOK, "admin_dashboard", "Dashboard", map[string]any{
		"Posts":       ps,
		"Events":      evs,
		"Submissions": subs,
	})
}

type loginView struct {
	Email string
	Error string
}

func (h *handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if access.IsCoordinatorOrAdmin(middleware.RequesterFrom(r.Context())) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "admin_login", "Staff login", loginView{})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "admin_login", "Staff login", loginView{Error: "Invalid form"})
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if h.deps.Auth.Issuer == nil {
		h.render(w, r, http.StatusServiceUnavailable, "admin_login", "Staff login", loginView{Email: email, Error: "Login is disabled on this server"})
		return
	}

	res, err := users.Login(r, h.deps.Users, h.deps.Auth, email, password)
	if err != nil {
		if errors.Is(err, users.ErrBadLogin) {
			h.render(w, r, http.StatusUnauthorized, "admin_login", "Staff login", loginView{Email: email, Error: "Invalid email or password"})
			return
		}
		h.fail(w, r, "dashboard login", err)
		return
	}

	users.SetTokenCookie(w, h.deps.Auth, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	users.ClearTokenCookie(w, h.deps.Auth)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("Jan 2, 2006 3:04 PM")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006 3:04 PM")
	default:
		return ""
	}
}

// paragraphs parte el body en párrafos por líneas en blanco.
func paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
