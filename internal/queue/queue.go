package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Topic the settings backend publishes campaign lifecycle events on. The
// delivery pipeline consumes it; this service never sends campaign mail.
const CampaignEventsTopic = "campaign_events"

// Campaign lifecycle event types.
const (
	EventCampaignSaved       = "campaign.saved"
	EventCampaignActivated   = "campaign.activated"
	EventCampaignDeactivated = "campaign.deactivated"
	EventCampaignDeleted     = "campaign.deleted"
)

// CampaignEvent is the payload published on CampaignEventsTopic.
type CampaignEvent struct {
	Type       string `json:"type"`
	CampaignID string `json:"campaign_id"`
	UserID     string `json:"user_id"`
}

// DecodeEvent accepts either a CampaignEvent (in-memory queue) or the JSON
// bytes coming off the wire (AMQP).
func DecodeEvent(payload any) (CampaignEvent, error) {
	switch p := payload.(type) {
	case CampaignEvent:
		return p, nil
	case []byte:
		var ev CampaignEvent
		if err := json.Unmarshal(p, &ev); err != nil {
			return CampaignEvent{}, err
		}
		return ev, nil
	default:
		return CampaignEvent{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used in tests and as a
// fallback when AMQP is not configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
