package handlers

import (
	"encoding/json"
	"net/http"

	"studioflow/i18n"
	"studioflow/models"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Results any    `json:"results,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// APISearchClients matches ?q= against name, company and email. An empty
// query returns every client.
func (h *Handler) APISearchClients(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.SearchClients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	if results == nil {
		results = []models.ClientSummary{}
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Results: results})
}

// APISearchProjects matches ?q= against project name, client name and status.
func (h *Handler) APISearchProjects(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.SearchProjects(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	if results == nil {
		results = []models.ProjectSummary{}
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Results: results})
}

func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("api request failed",
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
		"error", err,
	)
	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, http.StatusInternalServerError, APIResponse{Status: "error", Message: i18n.T(lang, "InternalError")})
}
