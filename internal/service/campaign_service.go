// internal/service/campaign_service.go
package service

import (
	"log"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
	"github.com/unclebandit/mailpilot-backend/internal/repository"
	"github.com/unclebandit/mailpilot-backend/internal/state"
)

// CampaignService serves the read-only list view and the mutations that apply
// to list entries directly: activation toggling and deletion. Draft editing
// lives in EditorService.
type CampaignService struct {
	Repo  repository.CampaignRepositoryInterface
	State *state.Store
	Queue queue.Queue
}

// CampaignListEntry decorates an inactive campaign that does not yet qualify
// for activation with a non-blocking warning.
type CampaignListEntry struct {
	*model.Campaign
	Warning string `json:"warning,omitempty"`
}

// List fetches campaigns with pagination and refreshes the session cache.
func (s *CampaignService) List(userID string, page, pageSize int) ([]CampaignListEntry, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.Repo.ListByUser(userID, offset, pageSize)
	if err != nil {
		return nil, nil, appErrors.NewRemote("campaign list", err)
	}

	err = s.State.With(userID, func(sess *state.Session) error {
		sess.Campaigns = campaigns
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Entries are copies; the cached structs stay behind the store mutex and
	// must not be read while a concurrent request for the same user mutates
	// them (e.g. a credential removal reconciling sender lists).
	entries := make([]CampaignListEntry, len(campaigns))
	for i, c := range campaigns {
		entries[i] = CampaignListEntry{Campaign: c.Clone()}
		if !c.IsActive {
			if verr := c.Validate(); verr != nil {
				entries[i].Warning = verr.Error()
			}
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return entries, pagination, nil
}

// SetActive toggles a list-view campaign immediately, independent of the
// draft life cycle. Turning a campaign on is gated by the validator; turning
// it off is always allowed.
func (s *CampaignService) SetActive(userID, id string, active bool) (*model.Campaign, error) {
	var toggled *model.Campaign
	err := s.State.With(userID, func(sess *state.Session) error {
		c := sess.Campaign(id)
		if c == nil {
			fetched, err := s.Repo.GetByID(id)
			if err != nil {
				return err
			}
			if fetched.UserID != userID {
				return appErrors.NewCampaignNotFound(id)
			}
			c = fetched
			sess.Campaigns = append(sess.Campaigns, c)
		}

		if active {
			if verr := c.Validate(); verr != nil {
				return appErrors.NewState(verr.Error())
			}
		}

		if err := s.Repo.SetActive(id, active); err != nil {
			return appErrors.NewRemote("campaign toggle", err)
		}
		c.IsActive = active
		toggled = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if active {
		middleware.RecordCampaignActivation()
	}
	s.publish(userID, id, active)

	return toggled, nil
}

// Delete removes the campaign from the store and the cached list. No guard
// beyond the UI confirmation; active campaigns can be deleted. Campaigns owned
// by another user are not found, same as SetActive and Open.
func (s *CampaignService) Delete(userID, id string) error {
	err := s.State.With(userID, func(sess *state.Session) error {
		if sess.Campaign(id) == nil {
			fetched, err := s.Repo.GetByID(id)
			if err != nil {
				return err
			}
			if fetched.UserID != userID {
				return appErrors.NewCampaignNotFound(id)
			}
		}
		if err := s.Repo.Delete(id); err != nil {
			return appErrors.NewRemote("campaign delete", err)
		}
		kept := sess.Campaigns[:0]
		for _, c := range sess.Campaigns {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		sess.Campaigns = kept
		return nil
	})
	if err != nil {
		return err
	}

	if s.Queue != nil {
		ev := queue.CampaignEvent{Type: queue.EventCampaignDeleted, CampaignID: id, UserID: userID}
		if perr := s.Queue.Publish(queue.CampaignEventsTopic, ev); perr != nil {
			log.Println("⚠️ failed to publish campaign event:", perr)
		}
	}
	return nil
}

func (s *CampaignService) publish(userID, id string, active bool) {
	if s.Queue == nil {
		return
	}
	evType := queue.EventCampaignDeactivated
	if active {
		evType = queue.EventCampaignActivated
	}
	ev := queue.CampaignEvent{Type: evType, CampaignID: id, UserID: userID}
	if err := s.Queue.Publish(queue.CampaignEventsTopic, ev); err != nil {
		log.Println("⚠️ failed to publish campaign event:", err)
	}
}
