package repository

import (
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/model"
)

// CredentialRepositoryInterface defines methods used by the credential service
type CredentialRepositoryInterface interface {
	ListByUser(userID string) ([]*model.SenderCredential, error)
	Insert(c *model.SenderCredential) error
	Delete(userID, provider, address string) error
}

// CredentialRepository is the concrete implementation
type CredentialRepository struct {
	DB *sql.DB
}

// ListByUser fetches every sender credential the user has registered
func (r *CredentialRepository) ListByUser(userID string) ([]*model.SenderCredential, error) {
	query := `
        SELECT user_id, address, secret, provider
        FROM sender_credentials
        WHERE user_id = $1
        ORDER BY provider, address
    `
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := []*model.SenderCredential{}
	for rows.Next() {
		c := &model.SenderCredential{}
		if err := rows.Scan(&c.UserID, &c.Address, &c.Secret, &c.Provider); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// Insert stores a new credential. The (user_id, provider, address) unique
// constraint surfaces as a ConflictError so callers can tell "already exists"
// apart from any other remote failure.
func (r *CredentialRepository) Insert(c *model.SenderCredential) error {
	query := `
        INSERT INTO sender_credentials (user_id, address, secret, provider)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.DB.Exec(query, c.UserID, c.Address, c.Secret, c.Provider)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.NewConflict("sender credential", c.Address)
		}
		return err
	}
	return nil
}

// Delete removes the credential row
func (r *CredentialRepository) Delete(userID, provider, address string) error {
	query := `DELETE FROM sender_credentials WHERE user_id=$1 AND provider=$2 AND address=$3`
	_, err := r.DB.Exec(query, userID, provider, address)
	return err
}

var _ CredentialRepositoryInterface = (*CredentialRepository)(nil)
