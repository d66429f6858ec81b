package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
	"github.com/unclebandit/mailpilot-backend/internal/service"
)

type mockEventCampaignRepo struct {
	campaigns map[string]*model.Campaign
	fetched   []string
}

func (m *mockEventCampaignRepo) GetByID(id string) (*model.Campaign, error) {
	m.fetched = append(m.fetched, id)
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func TestWorkerLoadsCampaignOnActivation(t *testing.T) {
	repo := &mockEventCampaignRepo{campaigns: map[string]*model.Campaign{
		"c-1": {
			ID: "c-1", UserID: "u-1", City: "Chicago",
			SenderEmails: []model.CampaignEmail{
				{Address: "sales@example.com", Provider: model.ProviderSES, DailyRate: 500},
			},
		},
	}}

	jobChan := make(chan queue.CampaignEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	var gotEvent queue.CampaignEvent
	var gotCampaign *model.Campaign
	worker := service.NewWorker(repo, jobChan, func(ev queue.CampaignEvent, c *model.Campaign) {
		gotEvent = ev
		gotCampaign = c
		wg.Done()
	})
	go worker.Start()

	jobChan <- queue.CampaignEvent{Type: queue.EventCampaignActivated, CampaignID: "c-1", UserID: "u-1"}
	close(jobChan)
	wg.Wait()

	assert.Equal(t, []string{"c-1"}, repo.fetched)
	assert.Equal(t, queue.EventCampaignActivated, gotEvent.Type)
	require.NotNil(t, gotCampaign)
	assert.Equal(t, "c-1", gotCampaign.ID)
}

func TestWorkerPassesThroughOtherEvents(t *testing.T) {
	repo := &mockEventCampaignRepo{campaigns: map[string]*model.Campaign{}}

	jobChan := make(chan queue.CampaignEvent, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	seen := []string{}
	worker := service.NewWorker(repo, jobChan, func(ev queue.CampaignEvent, c *model.Campaign) {
		mu.Lock()
		seen = append(seen, ev.Type)
		mu.Unlock()
		assert.Nil(t, c)
		wg.Done()
	})
	go worker.Start()

	jobChan <- queue.CampaignEvent{Type: queue.EventCampaignDeactivated, CampaignID: "c-1"}
	jobChan <- queue.CampaignEvent{Type: queue.EventCampaignDeleted, CampaignID: "c-1"}
	close(jobChan)
	wg.Wait()

	assert.Equal(t, []string{queue.EventCampaignDeactivated, queue.EventCampaignDeleted}, seen)

	// Nothing was fetched for pass-through events.
	assert.Empty(t, repo.fetched)
}

func TestWorkerSkipsMissingCampaign(t *testing.T) {
	repo := &mockEventCampaignRepo{campaigns: map[string]*model.Campaign{}}

	jobChan := make(chan queue.CampaignEvent, 2)
	var wg sync.WaitGroup
	wg.Add(1)

	worker := service.NewWorker(repo, jobChan, func(ev queue.CampaignEvent, c *model.Campaign) {
		// Only the second, resolvable event reaches the notifier.
		assert.Equal(t, queue.EventCampaignDeleted, ev.Type)
		wg.Done()
	})
	go worker.Start()

	jobChan <- queue.CampaignEvent{Type: queue.EventCampaignActivated, CampaignID: "gone"}
	jobChan <- queue.CampaignEvent{Type: queue.EventCampaignDeleted, CampaignID: "gone"}
	close(jobChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain the event channel")
	}
}
