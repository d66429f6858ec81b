package service

import (
	"log"

	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
)

// EventCampaignRepo defines the methods the worker needs
type EventCampaignRepo interface {
	GetByID(id string) (*model.Campaign, error)
}

// Worker hands campaign lifecycle events over to the delivery pipeline. On
// activation it loads the campaign and reports the send plan; deactivation
// and deletion just flow through. Actual mail delivery is another system.
type Worker struct {
	CampaignRepo EventCampaignRepo
	JobChan      <-chan queue.CampaignEvent
	Notify       func(ev queue.CampaignEvent, c *model.Campaign)
}

// Constructor
func NewWorker(repo EventCampaignRepo, jobChan <-chan queue.CampaignEvent, notify func(ev queue.CampaignEvent, c *model.Campaign)) *Worker {
	return &Worker{
		CampaignRepo: repo,
		JobChan:      jobChan,
		Notify:       notify,
	}
}

// Start begins processing events
func (w *Worker) Start() {
	for ev := range w.JobChan {
		var campaign *model.Campaign

		if ev.Type == queue.EventCampaignActivated {
			c, err := w.CampaignRepo.GetByID(ev.CampaignID)
			if err != nil {
				log.Println("Failed to get campaign:", err)
				continue
			}
			campaign = c

			capacity := 0
			for _, e := range c.SenderEmails {
				capacity += e.DailyRate
			}
			log.Printf("Campaign %s activated: %d sender(s), %d messages/day for %s\n",
				c.ID, len(c.SenderEmails), capacity, c.City)
		} else {
			log.Printf("Campaign event %s for %s\n", ev.Type, ev.CampaignID)
		}

		if w.Notify != nil {
			w.Notify(ev, campaign)
		}
	}
}
