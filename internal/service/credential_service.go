// internal/service/credential_service.go
package service

import (
	"log"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/mailer"
	"github.com/unclebandit/mailpilot-backend/internal/middleware"
	"github.com/unclebandit/mailpilot-backend/internal/model"
	"github.com/unclebandit/mailpilot-backend/internal/repository"
	"github.com/unclebandit/mailpilot-backend/internal/state"
)

// CredentialService owns the per-session credential cache and keeps campaign
// sender lists consistent with it.
type CredentialService struct {
	Repo   repository.CredentialRepositoryInterface
	State  *state.Store
	Prober mailer.Prober
}

// Load refreshes the session cache from the store and returns the credentials
// split per provider.
func (s *CredentialService) Load(userID string) (ses, google []*model.SenderCredential, err error) {
	creds, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, nil, appErrors.NewRemote("credential load", err)
	}

	err = s.State.With(userID, func(sess *state.Session) error {
		sess.Credentials = creds
		reconcile(sess)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	ses = []*model.SenderCredential{}
	google = []*model.SenderCredential{}
	for _, c := range creds {
		if c.Provider == model.ProviderGoogle {
			google = append(google, c)
		} else {
			ses = append(ses, c)
		}
	}
	return ses, google, nil
}

// Add validates and registers a new sender credential. Duplicates are caught
// against the cached list before the remote call; the remote unique constraint
// surfaces as the same ConflictError.
func (s *CredentialService) Add(userID, address, secret, provider string) (*model.SenderCredential, error) {
	if !model.ValidProvider(provider) {
		return nil, appErrors.NewValidation("provider", "must be ses or google")
	}
	if provider == model.ProviderGoogle {
		// SES addresses carry no local format check; verification is SES's job.
		if !model.ValidGmailAddress(address) {
			return nil, appErrors.NewValidation("address", "must be a valid gmail.com address")
		}
		if !model.ValidAppPassword(secret) {
			return nil, appErrors.NewValidation("secret", "app password must be 16 alphanumeric characters")
		}
	}
	if address == "" {
		return nil, appErrors.NewValidation("address", "is required")
	}
	if secret == "" {
		return nil, appErrors.NewValidation("secret", "is required")
	}

	cred := &model.SenderCredential{
		UserID:   userID,
		Address:  address,
		Secret:   secret,
		Provider: provider,
	}

	err := s.State.With(userID, func(sess *state.Session) error {
		if sess.Credential(provider, address) != nil {
			return appErrors.NewConflict("sender credential", address)
		}
		if err := s.Repo.Insert(cred); err != nil {
			if appErrors.IsConflict(err) {
				return err
			}
			return appErrors.NewRemote("credential insert", err)
		}
		sess.Credentials = append(sess.Credentials, cred)
		reconcile(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// Remove deletes the credential and prunes it from every cached campaign's
// sender list. The prune is in-memory only; affected campaigns are persisted
// on their next explicit save.
func (s *CredentialService) Remove(userID, provider, address string) error {
	return s.State.With(userID, func(sess *state.Session) error {
		if err := s.Repo.Delete(userID, provider, address); err != nil {
			return appErrors.NewRemote("credential delete", err)
		}

		kept := sess.Credentials[:0]
		for _, c := range sess.Credentials {
			if c.Provider != provider || c.Address != address {
				kept = append(kept, c)
			}
		}
		sess.Credentials = kept
		reconcile(sess)
		return nil
	})
}

// Test sends a probe message for the credential and reports the outcome. Only
// the transient in-flight flag on the cached instance is touched.
func (s *CredentialService) Test(userID, provider, address string) error {
	var cred *model.SenderCredential
	err := s.State.With(userID, func(sess *state.Session) error {
		cred = sess.Credential(provider, address)
		if cred == nil {
			return appErrors.NewValidation("address", "is not a registered sender")
		}
		cred.Testing = true
		return nil
	})
	if err != nil {
		return err
	}

	probeErr := s.Prober.Probe(cred)

	s.State.With(userID, func(sess *state.Session) error {
		cred.Testing = false
		return nil
	})

	if probeErr != nil {
		middleware.RecordProbe(provider, "failed")
		log.Println("⚠️ sender probe failed:", probeErr)
		return appErrors.NewRemote("sender probe", probeErr)
	}
	middleware.RecordProbe(provider, "ok")
	return nil
}

// reconcile reruns the pure sender derivation after any credential change.
// The open draft counts as a campaign here.
func reconcile(sess *state.Session) {
	campaigns := sess.Campaigns
	if sess.Draft != nil {
		campaigns = append(append([]*model.Campaign{}, campaigns...), sess.Draft)
	}
	pruned := model.ReconcileSenders(campaigns, sess.Credentials)
	middleware.RecordSendersPruned(pruned)
}
