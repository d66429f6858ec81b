package service_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/queue"
	"github.com/unclebandit/mailpilot-backend/internal/service"
	"github.com/unclebandit/mailpilot-backend/internal/state"
)

func activatableCampaign(id string) *model.Campaign {
	return &model.Campaign{
		ID:            id,
		UserID:        testUser,
		Name:          "Ready " + id,
		City:          "Chicago",
		SubjectLines:  []string{"Hi"},
		DaysTillClose: model.DaysTillCloseNA,
		Templates: []model.CampaignTemplate{
			{TemplateID: "tpl-1", Name: "Spring Sale", Format: "html", Role: model.RoleBody},
		},
		SenderEmails: []model.CampaignEmail{
			{Address: "sales@example.com", Provider: model.ProviderSES, DailyRate: 1440},
		},
	}
}

func newCampaignService(repo *mockCampaignRepo, q *recordQueue) (*service.CampaignService, *state.Store) {
	sessions := state.NewStore()
	svc := &service.CampaignService{Repo: repo, State: sessions}
	if q != nil {
		svc.Queue = q
	}
	return svc, sessions
}

func TestSetActiveGatedByValidator(t *testing.T) {
	repo := newMockCampaignRepo()
	events := &recordQueue{}
	svc, sessions := newCampaignService(repo, events)

	incomplete := activatableCampaign("c-1")
	incomplete.SenderEmails = nil
	repo.campaigns["c-1"] = incomplete.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{incomplete}
	})

	_, err := svc.SetActive(testUser, "c-1", true)
	require.Error(t, err)
	assert.True(t, appErrors.IsState(err))
	assert.Equal(t, "At least one sender email is required", err.Error())

	// Nothing toggled, no remote call, no event.
	assert.False(t, incomplete.IsActive)
	assert.NotContains(t, repo.calls, "set_active")
	assert.Empty(t, events.events)
}

func TestSetActiveValidCampaign(t *testing.T) {
	repo := newMockCampaignRepo()
	events := &recordQueue{}
	svc, sessions := newCampaignService(repo, events)

	c := activatableCampaign("c-1")
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	toggled, err := svc.SetActive(testUser, "c-1", true)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	assert.True(t, repo.campaigns["c-1"].IsActive)

	require.Len(t, events.events, 1)
	assert.Equal(t, queue.EventCampaignActivated, events.events[0].Type)
	assert.Equal(t, "c-1", events.events[0].CampaignID)
	assert.Equal(t, testUser, events.events[0].UserID)
}

func TestDeactivateAlwaysAllowed(t *testing.T) {
	repo := newMockCampaignRepo()
	events := &recordQueue{}
	svc, sessions := newCampaignService(repo, events)

	// Active but no longer valid: its only sender was removed.
	c := activatableCampaign("c-1")
	c.IsActive = true
	c.SenderEmails = nil
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	toggled, err := svc.SetActive(testUser, "c-1", false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	require.Len(t, events.events, 1)
	assert.Equal(t, queue.EventCampaignDeactivated, events.events[0].Type)
}

func TestSetActiveFetchesUncachedCampaign(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	repo.campaigns["c-7"] = activatableCampaign("c-7")

	toggled, err := svc.SetActive(testUser, "c-7", true)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	assert.Contains(t, repo.calls, "get")
}

func TestSetActiveForeignCampaignNotFound(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	foreign := activatableCampaign("c-9")
	foreign.UserID = "someone-else"
	repo.campaigns["c-9"] = foreign

	_, err := svc.SetActive(testUser, "c-9", true)
	require.Error(t, err)
	var nf *appErrors.ErrCampaignNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestSetActiveRemoteFailure(t *testing.T) {
	repo := newMockCampaignRepo()
	repo.failOn = "set_active"
	svc, sessions := newCampaignService(repo, nil)

	c := activatableCampaign("c-1")
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	_, err := svc.SetActive(testUser, "c-1", true)
	require.Error(t, err)
	assert.True(t, appErrors.IsRemote(err))
	assert.False(t, c.IsActive)
}

func TestListWarningsAndPagination(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	ready := activatableCampaign("c-1")
	incomplete := activatableCampaign("c-2")
	incomplete.SubjectLines = nil
	live := activatableCampaign("c-3")
	live.IsActive = true
	live.SenderEmails = nil // stale but active entries carry no warning
	repo.campaigns = map[string]*model.Campaign{"c-1": ready, "c-2": incomplete, "c-3": live}

	entries, pagination, err := svc.List(testUser, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	warnings := map[string]string{}
	for _, e := range entries {
		warnings[e.ID] = e.Warning
	}
	assert.Equal(t, "", warnings["c-1"])
	assert.Equal(t, "At least one subject line is required", warnings["c-2"])
	assert.Equal(t, "", warnings["c-3"])

	assert.Equal(t, 1, pagination["page"])
	assert.Equal(t, 20, pagination["page_size"])
	assert.Equal(t, 3, pagination["total_count"])
	assert.Equal(t, 1, pagination["total_pages"])
}

func TestListPageSizeClamped(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("c-%d", i)
		repo.campaigns[id] = activatableCampaign(id)
	}

	_, pagination, err := svc.List(testUser, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, pagination["page"])
	assert.Equal(t, 100, pagination["page_size"])
}

func TestDeleteForeignCampaignNotFound(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	foreign := activatableCampaign("c-9")
	foreign.UserID = "someone-else"
	repo.campaigns["c-9"] = foreign

	err := svc.Delete(testUser, "c-9")
	require.Error(t, err)
	var nf *appErrors.ErrCampaignNotFound
	assert.ErrorAs(t, err, &nf)

	// The other user's campaign survives.
	assert.Contains(t, repo.campaigns, "c-9")
	assert.NotContains(t, repo.calls, "delete")
}

func TestDeleteUncachedOwnCampaign(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, _ := newCampaignService(repo, nil)

	repo.campaigns["c-1"] = activatableCampaign("c-1")

	require.NoError(t, svc.Delete(testUser, "c-1"))
	assert.NotContains(t, repo.campaigns, "c-1")
}

func TestSetActiveReturnsCopyNotCacheEntry(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, sessions := newCampaignService(repo, nil)

	c := activatableCampaign("c-1")
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	toggled, err := svc.SetActive(testUser, "c-1", true)
	require.NoError(t, err)

	// Mutating the returned campaign must not touch the cached entry.
	toggled.SenderEmails = nil
	toggled.SubjectLines[0] = "changed"

	seedSession(t, sessions, func(sess *state.Session) {
		cached := sess.Campaign("c-1")
		require.NotNil(t, cached)
		assert.NotSame(t, toggled, cached)
		require.Len(t, cached.SenderEmails, 1)
		assert.Equal(t, "Hi", cached.SubjectLines[0])
	})
}

func TestListEntriesDoNotAliasCache(t *testing.T) {
	repo := newMockCampaignRepo()
	svc, sessions := newCampaignService(repo, nil)

	repo.campaigns["c-1"] = activatableCampaign("c-1")

	entries, _, err := svc.List(testUser, 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries[0].SenderEmails[0].DailyRate = 1
	entries[0].SubjectLines[0] = "changed"

	seedSession(t, sessions, func(sess *state.Session) {
		cached := sess.Campaign("c-1")
		require.NotNil(t, cached)
		assert.NotSame(t, entries[0].Campaign, cached)
		assert.Equal(t, 1440, cached.SenderEmails[0].DailyRate)
		assert.Equal(t, "Hi", cached.SubjectLines[0])
	})
}

func TestDeleteRemovesFromCacheAndPublishes(t *testing.T) {
	repo := newMockCampaignRepo()
	events := &recordQueue{}
	svc, sessions := newCampaignService(repo, events)

	c := activatableCampaign("c-1")
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	require.NoError(t, svc.Delete(testUser, "c-1"))

	assert.NotContains(t, repo.campaigns, "c-1")
	seedSession(t, sessions, func(sess *state.Session) {
		assert.Empty(t, sess.Campaigns)
	})
	require.Len(t, events.events, 1)
	assert.Equal(t, queue.EventCampaignDeleted, events.events[0].Type)
}

func TestDeleteRemoteFailureKeepsCache(t *testing.T) {
	repo := newMockCampaignRepo()
	repo.failOn = "delete"
	svc, sessions := newCampaignService(repo, nil)

	c := activatableCampaign("c-1")
	repo.campaigns["c-1"] = c.Clone()
	seedSession(t, sessions, func(sess *state.Session) {
		sess.Campaigns = []*model.Campaign{c}
	})

	err := svc.Delete(testUser, "c-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsRemote(err))
	seedSession(t, sessions, func(sess *state.Session) {
		assert.Len(t, sess.Campaigns, 1)
	})
}
