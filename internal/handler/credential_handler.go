// internal/handler/credential_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/repository"
	"github.com/unclebandit/mailpilot-backend/internal/service"
)

// CredentialHandler holds the dependencies for credential-related HTTP handlers
type CredentialHandler struct {
	Service   *service.CredentialService
	Templates repository.TemplateRepositoryInterface
}

// ListCredentialsHandler returns the registered senders split per provider
func (h *CredentialHandler) ListCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	ses, google, err := h.Service.Load(middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ses":    ses,
		"google": google,
	})
}

// AddCredentialHandler registers a new sender credential
func (h *CredentialHandler) AddCredentialHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Address  string `json:"address"`
		Secret   string `json:"secret"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	cred, err := h.Service.Add(middleware.UserID(r.Context()), payload.Address, payload.Secret, payload.Provider)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cred)
}

// RemoveCredentialHandler deletes a sender credential. Campaigns referencing
// the address have it pruned from their sender lists.
func (h *CredentialHandler) RemoveCredentialHandler(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	address := chi.URLParam(r, "address")

	if err := h.Service.Remove(middleware.UserID(r.Context()), provider, address); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"removed": address})
}

// TestCredentialHandler sends a probe message and reports the outcome
func (h *CredentialHandler) TestCredentialHandler(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	address := chi.URLParam(r, "address")

	err := h.Service.Test(middleware.UserID(r.Context()), provider, address)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		if appErrors.IsRemote(err) {
			json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": err.Error()})
			return
		}
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// ListTemplatesHandler returns the template catalog
func (h *CredentialHandler) ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.List()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// ListCitiesHandler returns the fixed target city list
func (h *CredentialHandler) ListCitiesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Cities)
}

func writeError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	switch {
	case appErrors.IsValidation(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case appErrors.IsConflict(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case appErrors.IsState(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
