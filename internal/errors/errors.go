// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated aborts the whole operation; there is no user to act for.
var ErrUnauthenticated = errors.New("no authenticated user")

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ValidationError is locally-detected bad input, surfaced inline next to the
// offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ConflictError is a uniqueness violation, detected locally against the cached
// list or surfaced by the remote store (unique constraint).
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func NewConflict(resource, key string) error {
	return &ConflictError{Resource: resource, Key: key}
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// StateError is a rejected editor transition (e.g. opening an active
// campaign). The message is user-facing and the editor state is unchanged.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func NewState(message string) error {
	return &StateError{Message: message}
}

func IsState(err error) bool {
	var s *StateError
	return errors.As(err, &s)
}

// RemoteError wraps any other backend failure. Callers leave in-memory state
// unchanged and never retry automatically.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func NewRemote(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}

func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
