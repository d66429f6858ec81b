// internal/controller/editor_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/service"
)

type EditorController struct {
	EditorService *service.EditorService
}

func (c *EditorController) CreateDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := c.EditorService.Create(middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) OpenDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	draft, err := c.EditorService.Open(middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := c.EditorService.Draft(middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) CancelDraft(w http.ResponseWriter, r *http.Request) {
	if err := c.EditorService.Cancel(middleware.UserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"state": "browsing"})
}

func (c *EditorController) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	saved, err := c.EditorService.Save(middleware.UserID(r.Context()), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, saved)
}

func (c *EditorController) AddTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.AddTemplate(middleware.UserID(r.Context()), body.TemplateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) RemoveTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	draft, err := c.EditorService.RemoveTemplate(middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) AddSender(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider string `json:"provider"`
		Address  string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.AddSender(middleware.UserID(r.Context()), body.Provider, body.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) RemoveSender(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	draft, err := c.EditorService.RemoveSender(middleware.UserID(r.Context()), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) SetSenderRate(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var body struct {
		DailyRate int `json:"daily_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.SetSenderRate(middleware.UserID(r.Context()), address, body.DailyRate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) SetCity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.SetCity(middleware.UserID(r.Context()), body.City)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) SetDaysTillClose(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DaysTillClose string `json:"days_till_close"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.SetDaysTillClose(middleware.UserID(r.Context()), body.DaysTillClose)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) AddSubjectLine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectLine string `json:"subject_line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	draft, err := c.EditorService.AddSubjectLine(middleware.UserID(r.Context()), body.SubjectLine)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, draft)
}

func (c *EditorController) RemoveSubjectLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid subject line index", http.StatusBadRequest)
		return
	}

	draft, serr := c.EditorService.RemoveSubjectLine(middleware.UserID(r.Context()), index)
	if serr != nil {
		writeError(w, serr)
		return
	}
	writeJSON(w, draft)
}
