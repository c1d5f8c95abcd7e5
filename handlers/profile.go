package handlers

import (
	"net/http"
	"net/url"

	"studioflow/auth"
	"studioflow/forms"
)

func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), currentUser(r).ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	f := forms.New(url.Values{"username": {user.Username}})
	h.renderTemplate(w, r, "profile.html", map[string]any{"Form": f})
}

// UpdateProfile handles the combined username and password form. Nothing is
// written unless every check for the chosen flow passes.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.store.GetUserByID(ctx, currentUser(r).ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := forms.New(r.PostForm)
	render := func() { h.renderTemplate(w, r, "profile.html", map[string]any{"Form": f}) }

	if !forms.ValidateProfile(f) {
		render()
		return
	}
	username := f.Get("username")

	taken, err := h.store.UsernameTaken(ctx, username, user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if taken {
		f.AddError("username", "ProfileUsernameTaken")
		render()
		return
	}

	if forms.WantsPasswordChange(f) {
		current, newPassword, confirmation := f.Get("current_password"), f.Get("new_password"), f.Get("confirmation")
		if newPassword == "" {
			f.AddError("new_password", "NewPasswordRequired")
		}
		if confirmation == "" {
			f.AddError("confirmation", "ConfirmNewPassword")
		}
		if current == "" {
			f.AddError("current_password", "CurrentPasswordRequired")
		}
		if newPassword != "" && confirmation != "" && newPassword != confirmation {
			f.AddError("confirmation", "PasswordsMustMatch")
		}
		if f.Valid() && !auth.CheckPasswordHash(current, user.Hash) {
			f.AddError("current_password", "CurrentPasswordIncorrect")
		}
		if !f.Valid() {
			render()
			return
		}

		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		if err := h.store.UpdateCredentials(ctx, user.ID, username, hash); err != nil {
			h.serverError(w, r, err)
			return
		}
		h.refreshUsername(w, r, username)
		h.logger.Info("password changed", "user_id", user.ID)
		h.flash(w, r, "success", "ProfilePasswordUpdated", "/profile")
		return
	}

	if username == user.Username {
		h.flash(w, r, "info", "NoChanges", "/profile")
		return
	}
	if err := h.store.UpdateUsername(ctx, user.ID, username); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.refreshUsername(w, r, username)
	h.flash(w, r, "success", "ProfileUpdated", "/profile")
}

func (h *Handler) refreshUsername(w http.ResponseWriter, r *http.Request, username string) {
	if err := auth.SetUsername(w, r, username); err != nil {
		h.logger.Warn("failed to refresh session username", "error", err)
	}
}
