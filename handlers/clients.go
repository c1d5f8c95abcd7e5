package handlers

import (
	"fmt"
	"net/http"

	"studioflow/forms"
	"studioflow/models"
)

const clientNotFound = "Client not found"

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.ListClientSummaries(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "clients/list.html", map[string]any{"Clients": clients})
}

func (h *Handler) NewClientPage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "clients/new.html", nil)
}

// CreateClient stores the submitted fields as-is; every field is optional.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c := forms.ClientFromForm(forms.New(r.PostForm))
	if err := h.store.CreateClient(r.Context(), &c); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, "success", "ClientCreated", "/clients")
}

func (h *Handler) ClientDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, clientNotFound)
		return
	}
	client, err := h.store.GetClient(r.Context(), id)
	if !h.lookup(w, r, err, clientNotFound) {
		return
	}

	projects, err := h.store.ListProjectsForClient(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	open := 0
	for _, p := range projects {
		if p.Status == models.StatusInProgress {
			open++
		}
	}

	h.renderTemplate(w, r, "clients/detail.html", map[string]any{
		"Client":       client,
		"Projects":     projects,
		"OpenProjects": open,
	})
}

func (h *Handler) EditClientPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, clientNotFound)
		return
	}
	client, err := h.store.GetClient(r.Context(), id)
	if !h.lookup(w, r, err, clientNotFound) {
		return
	}
	h.renderTemplate(w, r, "clients/edit.html", map[string]any{
		"Client": client,
		"Form":   forms.ClientForm(client),
	})
}

// UpdateClient overwrites every editable field with the submitted values.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, clientNotFound)
		return
	}
	_, err := h.store.GetClient(r.Context(), id)
	if !h.lookup(w, r, err, clientNotFound) {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c := forms.ClientFromForm(forms.New(r.PostForm))
	c.ID = id
	if err := h.store.UpdateClient(r.Context(), c); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.flash(w, r, "success", "ClientUpdated", fmt.Sprintf("/clients/%d", id))
}

// DeleteClient refuses, with a warning, while the client still owns projects.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, clientNotFound)
		return
	}
	_, err := h.store.GetClient(r.Context(), id)
	if !h.lookup(w, r, err, clientNotFound) {
		return
	}

	count, err := h.store.CountProjectsForClient(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if count > 0 {
		h.flash(w, r, "warning", "ClientHasProjects", fmt.Sprintf("/clients/%d", id))
		return
	}

	if err := h.store.DeleteClient(r.Context(), id); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Info("client deleted", "client_id", id, "user_id", currentUser(r).ID)
	h.flash(w, r, "success", "ClientDeleted", "/clients")
}
