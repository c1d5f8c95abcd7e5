package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studioflow/auth"
	"studioflow/config"
	"studioflow/db"
	"studioflow/forms"
	"studioflow/i18n"
	"studioflow/models"
	"studioflow/web"
)

// Handler serves every page and API route. Limiters are per instance so
// separate servers (and tests) never share attempt counters.
type Handler struct {
	store           *db.Store
	logger          *slog.Logger
	loginLimiter    *rateLimiter
	registerLimiter *rateLimiter
}

func New(store *db.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:           store,
		logger:          logger,
		loginLimiter:    newRateLimiter(),
		registerLimiter: newRateLimiter(),
	}
}

func (h *Handler) RegisterHandlers(mux *http.ServeMux) {
	h.handle(mux, "GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	h.handle(mux, "GET /captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))
	mux.Handle("GET /metrics", promhttp.Handler())

	h.handleFunc(mux, "GET /login", h.LoginPage)
	h.handleFunc(mux, "POST /login", h.Login)
	h.handleFunc(mux, "GET /register", h.RegisterPage)
	h.handleFunc(mux, "POST /register", h.Register)
	h.handleFunc(mux, "GET /logout", h.Logout)

	h.protect(mux, "GET /{$}", h.Dashboard)
	h.protect(mux, "GET /profile", h.ProfilePage)
	h.protect(mux, "POST /profile", h.UpdateProfile)

	h.protect(mux, "GET /clients", h.ListClients)
	h.protect(mux, "GET /clients/new", h.NewClientPage)
	h.protect(mux, "POST /clients/new", h.CreateClient)
	h.protect(mux, "GET /clients/{id}", h.ClientDetail)
	h.protect(mux, "GET /clients/{id}/edit", h.EditClientPage)
	h.protect(mux, "POST /clients/{id}/edit", h.UpdateClient)
	h.protect(mux, "POST /clients/{id}/delete", h.DeleteClient)

	h.protect(mux, "GET /projects", h.ListProjects)
	h.protect(mux, "GET /projects/new", h.NewProjectPage)
	h.protect(mux, "POST /projects/new", h.CreateProject)
	h.protect(mux, "GET /projects/{id}", h.ProjectDetail)
	h.protect(mux, "GET /projects/{id}/edit", h.EditProjectPage)
	h.protect(mux, "POST /projects/{id}/edit", h.UpdateProject)
	h.protect(mux, "POST /projects/{id}/delete", h.DeleteProject)

	// JSON search used by the list pages
	h.protect(mux, "GET /api/clients", h.APISearchClients)
	h.protect(mux, "GET /api/projects", h.APISearchProjects)
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, next http.Handler) {
	mux.Handle(pattern, instrument(pattern, next))
}

func (h *Handler) handleFunc(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	h.handle(mux, pattern, fn)
}

func (h *Handler) protect(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	h.handle(mux, pattern, RequireLogin(fn))
}

var templateFuncs = template.FuncMap{
	// T is rebound per request to the negotiated language.
	"T":           func(key string) string { return key },
	"statuses":    func() []models.Status { return models.Statuses },
	"statusBadge": statusBadge,
}

func statusBadge(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "bg-success"
	case models.StatusInProgress:
		return "bg-warning text-dark"
	case models.StatusPending:
		return "bg-secondary"
	}
	return "bg-light text-dark"
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	h.renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus executes layout.html around the named page. Output is buffered
// so a template error still produces a clean 500 and flash cookies are written
// before the status line.
func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	lang := i18n.DetectLanguage(r)

	funcMap := template.FuncMap{
		"T": func(key string) string {
			return i18n.T(lang, key)
		},
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Funcs(funcMap).ParseFS(web.FS,
		"templates/layout.html",
		"templates/partials/*.html",
		"templates/"+name,
	)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["AppName"]; !exists {
		data["AppName"] = config.AppConfig.AppName
	}
	if _, exists := data["Form"]; !exists {
		data["Form"] = forms.New(nil)
	}
	if _, exists := data["Flashes"]; !exists {
		data["Flashes"] = auth.Flashes(w, r)
	}
	if u := auth.UserFromContext(r.Context()); u != nil {
		data["User"] = u
	}
	data["Lang"] = lang
	data["csrfField"] = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// flash queues a one-shot message and redirects with 303.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, category, message, to string) {
	if err := auth.AddFlash(w, r, category, message); err != nil {
		h.logger.Warn("failed to save flash", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// notFound answers unknown ids with a bare text 404, unlike the templated pages.
func notFound(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusNotFound)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
		"error", err,
	)
	lang := i18n.DetectLanguage(r)
	http.Error(w, i18n.T(lang, "InternalError"), http.StatusInternalServerError)
}

// pathID reads the {id} wildcard. Non-numeric ids are treated as unknown.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// lookup maps db.ErrNotFound to a plain 404 and any other failure to a 500.
// It reports whether the caller may continue.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, err error, missing string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, missing)
		return false
	}
	h.serverError(w, r, err)
	return false
}

func currentUser(r *http.Request) *auth.CurrentUser {
	return auth.UserFromContext(r.Context())
}
