package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"studioflow/db"
	"studioflow/forms"
	"studioflow/models"
)

const projectNotFound = "Project not found"

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "projects/list.html", map[string]any{"Projects": projects})
}

// NewProjectPage preselects the client named by ?client_id= when it exists.
func (h *Handler) NewProjectPage(w http.ResponseWriter, r *http.Request) {
	values := url.Values{"status": {string(models.StatusPending)}}
	if id, err := strconv.Atoi(r.URL.Query().Get("client_id")); err == nil && id > 0 {
		if _, err := h.store.GetClient(r.Context(), id); err == nil {
			values.Set("client_id", strconv.Itoa(id))
		}
	}
	h.renderNewProject(w, r, forms.New(values))
}

func (h *Handler) renderNewProject(w http.ResponseWriter, r *http.Request, f *forms.Form) {
	clients, err := h.store.ListClients(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "projects/new.html", map[string]any{
		"Form":    f,
		"Clients": clients,
	})
}

// CreateProject requires client_id to name an existing client. A missing,
// non-numeric or unknown id is a field error, not a server error.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := forms.New(r.PostForm)
	forms.ValidateProject(f, true)

	if f.Error("client_id") == "" {
		_, err := h.store.GetClient(r.Context(), f.Int("client_id"))
		switch {
		case errors.Is(err, db.ErrNotFound):
			f.AddError("client_id", "SelectValidClient")
		case err != nil:
			h.serverError(w, r, err)
			return
		}
	}
	if !f.Valid() {
		h.renderNewProject(w, r, f)
		return
	}

	p := forms.ProjectFromForm(f)
	if err := h.store.CreateProject(r.Context(), &p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, "success", "ProjectCreated", "/projects")
}

func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, projectNotFound)
		return
	}
	project, err := h.store.GetProject(r.Context(), id)
	if !h.lookup(w, r, err, projectNotFound) {
		return
	}

	// A missing owner renders without a client rather than failing.
	var client *models.Client
	c, err := h.store.GetClient(r.Context(), project.ClientID)
	switch {
	case err == nil:
		client = &c
	case !errors.Is(err, db.ErrNotFound):
		h.serverError(w, r, err)
		return
	}

	h.renderTemplate(w, r, "projects/detail.html", map[string]any{
		"Project": project,
		"Client":  client,
	})
}

func (h *Handler) EditProjectPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, projectNotFound)
		return
	}
	project, err := h.store.GetProjectSummary(r.Context(), id)
	if !h.lookup(w, r, err, projectNotFound) {
		return
	}
	h.renderTemplate(w, r, "projects/edit.html", map[string]any{
		"Project": project,
		"Form":    forms.ProjectForm(project.Project),
	})
}

// UpdateProject overwrites every field except the owning client.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, projectNotFound)
		return
	}
	existing, err := h.store.GetProjectSummary(r.Context(), id)
	if !h.lookup(w, r, err, projectNotFound) {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := forms.New(r.PostForm)
	if !forms.ValidateProject(f, false) {
		h.renderTemplate(w, r, "projects/edit.html", map[string]any{
			"Project": existing,
			"Form":    f,
		})
		return
	}

	p := forms.ProjectFromForm(f)
	p.ID = id
	p.ClientID = existing.ClientID
	if err := h.store.UpdateProject(r.Context(), p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, "success", "ProjectUpdated", fmt.Sprintf("/projects/%d", id))
}

// DeleteProject removes the project and returns to its former client.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, projectNotFound)
		return
	}
	project, err := h.store.GetProject(r.Context(), id)
	if !h.lookup(w, r, err, projectNotFound) {
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, "success", "ProjectDeleted", fmt.Sprintf("/clients/%d", project.ClientID))
}
