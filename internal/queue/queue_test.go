package queue

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	ev := CampaignEvent{Type: EventCampaignSaved, CampaignID: "c-1", UserID: "u-1"}

	// In-memory queues hand the struct over directly.
	got, err := DecodeEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	// AMQP delivers raw JSON bytes.
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	got, err = DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent(42)
	assert.Error(t, err)
}

func TestInMemoryQueuePublishWithoutSubscribers(t *testing.T) {
	q := NewInMemoryQueue()
	err := q.Publish(CampaignEventsTopic, CampaignEvent{Type: EventCampaignSaved})
	assert.Error(t, err)
}

func TestInMemoryQueueDeliversToAllSubscribers(t *testing.T) {
	q := NewInMemoryQueue()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	received := []CampaignEvent{}

	handler := func(payload any) error {
		ev, err := DecodeEvent(payload)
		if err != nil {
			return err
		}
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
		wg.Done()
		return nil
	}
	require.NoError(t, q.Subscribe(CampaignEventsTopic, handler))
	require.NoError(t, q.Subscribe(CampaignEventsTopic, handler))

	ev := CampaignEvent{Type: EventCampaignActivated, CampaignID: "c-1", UserID: "u-1"}
	require.NoError(t, q.Publish(CampaignEventsTopic, ev))
	wg.Wait()

	require.Len(t, received, 2)
	assert.Equal(t, ev, received[0])
	assert.Equal(t, ev, received[1])
}
