package handlers

import (
	"errors"
	"net/http"

	"github.com/dchest/captcha"

	"studioflow/auth"
	"studioflow/config"
	"studioflow/db"
	"studioflow/forms"
	"studioflow/models"
)

// LoginPage drops any existing session before showing the form. Flashes
// queued for this page (after registration) are read first.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	flashes := auth.Flashes(w, r)
	if err := auth.ClearSession(w, r); err != nil {
		h.logger.Warn("failed to clear session", "error", err)
	}
	h.renderTemplate(w, r, "login.html", map[string]any{"Flashes": flashes})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := getClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		h.renderStatus(w, r, http.StatusTooManyRequests, "login.html", map[string]any{
			"Flashes": []models.Flash{{Category: "danger", Message: "TooManyAttempts"}},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := forms.New(r.PostForm)
	if !forms.ValidateLogin(f) {
		h.renderTemplate(w, r, "login.html", map[string]any{"Form": f})
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), f.Get("username"))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}

	// Timing attack mitigation: always check password
	targetHash := user.Hash
	if err != nil {
		targetHash = auth.DummyHash
	}
	match := auth.CheckPasswordHash(f.Get("password"), targetHash)

	if err != nil || !match {
		h.loginLimiter.RecordFailure(ip)
		f.AddError("username", "InvalidCredentials")
		h.renderTemplate(w, r, "login.html", map[string]any{"Form": f})
		return
	}

	h.loginLimiter.Reset(ip)
	if err := auth.SetSession(w, r, user.ID, user.Username); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		h.logger.Warn("failed to clear session", "error", err)
	}
	h.renderRegister(w, r, http.StatusOK, forms.New(nil), nil)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, f *forms.Form, flashes []models.Flash) {
	data := map[string]any{"Form": f, "Flashes": flashes}
	if config.AppConfig.CaptchaEnabled {
		data["CaptchaID"] = captcha.New()
	}
	h.renderStatus(w, r, status, "register.html", data)
}

// Register creates the account and sends the user to the login page. Only
// created accounts count against the per-IP limit.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ip := getClientIP(r)
	if !h.registerLimiter.Allow(ip) {
		h.renderRegister(w, r, http.StatusTooManyRequests, forms.New(nil), []models.Flash{
			{Category: "danger", Message: "TooManyAttempts"},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := forms.New(r.PostForm)

	if config.AppConfig.CaptchaEnabled && !captcha.VerifyString(f.Get("captcha_id"), f.Get("captcha")) {
		f.AddError("captcha", "CaptchaInvalid")
	}
	if !forms.ValidateRegister(f) {
		h.renderRegister(w, r, http.StatusOK, f, nil)
		return
	}

	username := f.Get("username")
	taken, err := h.store.UsernameTaken(r.Context(), username, 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if taken {
		f.AddError("username", "UsernameTaken")
		h.renderRegister(w, r, http.StatusOK, f, nil)
		return
	}

	hash, err := auth.HashPassword(f.Get("password"))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	id, err := h.store.CreateUser(r.Context(), username, hash)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.registerLimiter.RecordFailure(ip)

	h.logger.Info("user registered", "user_id", id)
	h.flash(w, r, "success", "Registered", "/login")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		h.logger.Warn("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
