// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, pagination, err := c.CampaignService.List(userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

// SetActive toggles a campaign on or off. Activation is validated; the
// rejection message is the first missing requirement.
func (c *CampaignController) SetActive(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.SetActive(userID, id, body.Active)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := c.CampaignService.Delete(userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"deleted": id})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
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
