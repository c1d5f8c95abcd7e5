package handlers

import "net/http"

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Dashboard(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "index.html", map[string]any{"Data": data})
}
