// internal/service/editor_service.go
package service

import (
	"log"
	"strings"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
	"github.com/unclebandit/mailpilot-backend/internal/repository"
	"github.com/unclebandit/mailpilot-backend/internal/state"
)

// sessionCacheLimit bounds the post-save list refresh. The cache holds at most
// this many campaigns; reconciliation only prunes what is cached, the rest is
// pruned when its page is loaded.
const sessionCacheLimit = 100

// EditorService is the state machine over the single campaign draft. A session
// is Browsing when no draft is open and Editing otherwise; every rejected
// transition returns a user-facing StateError and changes nothing.
type EditorService struct {
	State        *state.Store
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Queue        queue.Queue
}

// Create opens a fresh default draft: unsaved, first city preselected, no
// closing window, empty lists.
func (s *EditorService) Create(userID string) (*model.Campaign, error) {
	var draft *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if sess.Editing() {
			return appErrors.NewState("Another campaign is already open for edit")
		}
		sess.Draft = model.NewDraft(userID)
		draft = sess.Draft.Clone()
		return nil
	})
	return draft, err
}

// Open loads an existing campaign into the editor. Active campaigns must be
// deactivated first.
func (s *EditorService) Open(userID, id string) (*model.Campaign, error) {
	var draft *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if sess.Editing() {
			return appErrors.NewState("Another campaign is already open for edit")
		}

		c := sess.Campaign(id)
		if c == nil {
			fetched, err := s.CampaignRepo.GetByID(id)
			if err != nil {
				return err
			}
			if fetched.UserID != userID {
				return appErrors.NewCampaignNotFound(id)
			}
			c = fetched
		}

		if c.IsActive {
			return appErrors.NewState("Deactivate the campaign before editing it")
		}

		sess.Draft = c.Clone()
		draft = sess.Draft.Clone()
		return nil
	})
	return draft, err
}

// Cancel discards the draft and returns to browsing.
func (s *EditorService) Cancel(userID string) error {
	return s.State.With(userID, func(sess *state.Session) error {
		if !sess.Editing() {
			return appErrors.NewState("No campaign is open for edit")
		}
		sess.Draft = nil
		return nil
	})
}

// Draft returns a copy of the open draft.
func (s *EditorService) Draft(userID string) (*model.Campaign, error) {
	var draft *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if !sess.Editing() {
			return appErrors.NewState("No campaign is open for edit")
		}
		draft = sess.Draft.Clone()
		return nil
	})
	return draft, err
}

// Save persists the draft and returns to browsing. The validator is not
// consulted: an incomplete draft may be saved and activated later once valid.
// The campaign row goes first, then each association set is replaced by a full
// delete-then-insert, sequentially. The steps are not transactional; a failure
// partway leaves the store inconsistent and the caller must re-save.
func (s *EditorService) Save(userID, name string) (*model.Campaign, error) {
	var saved *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if !sess.Editing() {
			return appErrors.NewState("No campaign is open for edit")
		}
		draft := sess.Draft
		prevName := draft.Name
		if name != "" {
			draft.Name = name
		}

		// The name sticks only once the row write succeeds; a failed save
		// leaves the draft as the user had it.
		if draft.ID == "" {
			if err := s.CampaignRepo.Insert(draft); err != nil {
				draft.Name = prevName
				return appErrors.NewRemote("campaign insert", err)
			}
		} else {
			if err := s.CampaignRepo.Update(draft); err != nil {
				draft.Name = prevName
				return appErrors.NewRemote("campaign update", err)
			}
		}

		if err := s.CampaignRepo.ReplaceTemplates(draft.ID, draft.Templates); err != nil {
			return appErrors.NewRemote("campaign templates replace", err)
		}
		if err := s.CampaignRepo.ReplaceEmails(draft.ID, draft.SenderEmails); err != nil {
			return appErrors.NewRemote("campaign emails replace", err)
		}

		campaigns, _, err := s.CampaignRepo.ListByUser(userID, 0, sessionCacheLimit)
		if err != nil {
			return appErrors.NewRemote("campaign list refresh", err)
		}
		sess.Campaigns = campaigns

		saved = draft.Clone()
		sess.Draft = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Queue != nil {
		ev := queue.CampaignEvent{Type: queue.EventCampaignSaved, CampaignID: saved.ID, UserID: userID}
		if perr := s.Queue.Publish(queue.CampaignEventsTopic, ev); perr != nil {
			log.Println("⚠️ failed to publish campaign event:", perr)
		}
	}
	return saved, nil
}

// AddTemplate attaches a template to the draft. The role comes solely from the
// template format. Duplicates and a second body template are rejected with a
// message and no change.
func (s *EditorService) AddTemplate(userID, templateID string) (*model.Campaign, error) {
	t, err := s.TemplateRepo.GetByID(templateID)
	if err != nil {
		return nil, appErrors.NewRemote("template fetch", err)
	}
	if t == nil {
		return nil, appErrors.NewValidation("template_id", "is not a known template")
	}

	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		if draft.HasTemplate(templateID) {
			return appErrors.NewState("Template is already attached")
		}
		role := model.RoleForFormat(t.Format)
		if role == model.RoleBody && draft.HasBodyTemplate() {
			return appErrors.NewState("A body template is already attached")
		}
		draft.Templates = append(draft.Templates, model.CampaignTemplate{
			TemplateID: t.ID,
			Name:       t.Name,
			Format:     t.Format,
			Role:       role,
		})
		return nil
	})
}

// RemoveTemplate detaches a template from the draft.
func (s *EditorService) RemoveTemplate(userID, templateID string) (*model.Campaign, error) {
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		kept := draft.Templates[:0]
		for _, t := range draft.Templates {
			if t.TemplateID != templateID {
				kept = append(kept, t)
			}
		}
		draft.Templates = kept
		return nil
	})
}

// AddSender attaches a registered sender with the maximum daily rate. Adding
// an address that is already attached is a no-op.
func (s *EditorService) AddSender(userID, provider, address string) (*model.Campaign, error) {
	var result *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if !sess.Editing() {
			return appErrors.NewState("No campaign is open for edit")
		}
		cred := sess.Credential(provider, address)
		if cred == nil {
			return appErrors.NewValidation("address", "is not a registered sender")
		}
		draft := sess.Draft
		if !draft.HasSender(address) {
			draft.SenderEmails = append(draft.SenderEmails, model.CampaignEmail{
				Address:   address,
				Provider:  provider,
				DailyRate: model.MaxDailyRate,
			})
		}
		result = draft.Clone()
		return nil
	})
	return result, err
}

// RemoveSender detaches a sender. For a persisted draft the association row
// is deleted remotely first; the local list only changes after that succeeds.
func (s *EditorService) RemoveSender(userID, address string) (*model.Campaign, error) {
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		if !draft.HasSender(address) {
			return nil
		}
		if draft.ID != "" {
			if err := s.CampaignRepo.DeleteEmail(draft.ID, address); err != nil {
				return appErrors.NewRemote("campaign email delete", err)
			}
		}
		kept := draft.SenderEmails[:0]
		for _, e := range draft.SenderEmails {
			if e.Address != address {
				kept = append(kept, e)
			}
		}
		draft.SenderEmails = kept
		return nil
	})
}

// SetSenderRate updates the daily rate locally; it is persisted on save.
func (s *EditorService) SetSenderRate(userID, address string, rate int) (*model.Campaign, error) {
	if rate < model.MinDailyRate || rate > model.MaxDailyRate {
		return nil, appErrors.NewValidation("daily_rate", "must be between 1 and 1440")
	}
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		for i := range draft.SenderEmails {
			if draft.SenderEmails[i].Address == address {
				draft.SenderEmails[i].DailyRate = rate
				return nil
			}
		}
		return appErrors.NewValidation("address", "is not attached to the campaign")
	})
}

// SetCity picks the target city. The city is immutable once the campaign has
// been persisted.
func (s *EditorService) SetCity(userID, city string) (*model.Campaign, error) {
	if !model.ValidCity(city) {
		return nil, appErrors.NewValidation("city", "is not a supported city")
	}
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		if draft.ID != "" {
			return appErrors.NewState("City cannot be changed after the campaign is saved")
		}
		draft.City = city
		return nil
	})
}

// SetDaysTillClose sets the closing window: "NA" or 1 to 21 days.
func (s *EditorService) SetDaysTillClose(userID, days string) (*model.Campaign, error) {
	if !model.ValidDaysTillClose(days) {
		return nil, appErrors.NewValidation("days_till_close", "must be NA or between 1 and 21")
	}
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		draft.DaysTillClose = days
		return nil
	})
}

// AddSubjectLine appends a subject line to the draft.
func (s *EditorService) AddSubjectLine(userID, line string) (*model.Campaign, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, appErrors.NewValidation("subject_line", "is required")
	}
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		draft.SubjectLines = append(draft.SubjectLines, line)
		return nil
	})
}

// RemoveSubjectLine removes the subject line at index, preserving order.
func (s *EditorService) RemoveSubjectLine(userID string, index int) (*model.Campaign, error) {
	return s.mutateDraft(userID, func(draft *model.Campaign) error {
		if index < 0 || index >= len(draft.SubjectLines) {
			return appErrors.NewValidation("index", "is out of range")
		}
		draft.SubjectLines = append(draft.SubjectLines[:index], draft.SubjectLines[index+1:]...)
		return nil
	})
}

func (s *EditorService) mutateDraft(userID string, fn func(*model.Campaign) error) (*model.Campaign, error) {
	var result *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		if !sess.Editing() {
			return appErrors.NewState("No campaign is open for edit")
		}
		if err := fn(sess.Draft); err != nil {
			return err
		}
		result = sess.Draft.Clone()
		return nil
	})
	return result, err
}
