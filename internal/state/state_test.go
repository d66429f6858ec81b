package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailpilot-backend/internal/model"
)

func TestWithCreatesSessionOnFirstUse(t *testing.T) {
	st := NewStore()

	err := st.With("u-1", func(s *Session) error {
		assert.Equal(t, "u-1", s.UserID)
		assert.False(t, s.Editing())
		s.Draft = model.NewDraft("u-1")
		return nil
	})
	require.NoError(t, err)

	// Same session on the next call.
	err = st.With("u-1", func(s *Session) error {
		assert.True(t, s.Editing())
		return nil
	})
	require.NoError(t, err)

	// Different user, different session.
	err = st.With("u-2", func(s *Session) error {
		assert.False(t, s.Editing())
		return nil
	})
	require.NoError(t, err)
}

func TestSessionLookups(t *testing.T) {
	s := &Session{
		Credentials: []*model.SenderCredential{
			{Provider: model.ProviderSES, Address: "sales@example.com"},
		},
		Campaigns: []*model.Campaign{{ID: "c-1"}},
	}

	assert.NotNil(t, s.Credential(model.ProviderSES, "sales@example.com"))
	assert.Nil(t, s.Credential(model.ProviderGoogle, "sales@example.com"))
	assert.Nil(t, s.Credential(model.ProviderSES, "other@example.com"))

	assert.NotNil(t, s.Campaign("c-1"))
	assert.Nil(t, s.Campaign("c-2"))
}

func TestWithSerializesAccess(t *testing.T) {
	st := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With("u-1", func(s *Session) error {
				s.Campaigns = append(s.Campaigns, &model.Campaign{})
				return nil
			})
		}()
	}
	wg.Wait()

	_ = st.With("u-1", func(s *Session) error {
		assert.Len(t, s.Campaigns, 50)
		return nil
	})
}
