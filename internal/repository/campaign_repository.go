package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailpilot-backend/internal/errors"
	"github.com/unclebandit/mailpilot-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	ListByUser(userID string, offset, limit int) ([]*model.Campaign, int, error)
	GetByID(id string) (*model.Campaign, error)
	Insert(c *model.Campaign) error
	Update(c *model.Campaign) error
	SetActive(id string, active bool) error
	Delete(id string) error

	// Child associations. Replace* does a full delete-then-insert of the set.
	ReplaceTemplates(campaignID string, ts []model.CampaignTemplate) error
	ReplaceEmails(campaignID string, es []model.CampaignEmail) error
	DeleteEmail(campaignID, address string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

// Insert assigns the campaign its id. Associations are written separately by
// the Replace* calls; a save is not transactional across those steps.
func (r *CampaignRepository) Insert(c *model.Campaign) error {
	c.ID = uuid.New().String()
	c.UpdatedAt = time.Now()
	query := `
        INSERT INTO campaigns (id, user_id, name, is_active, city, subject_lines, days_till_close, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.Exec(query, c.ID, c.UserID, c.Name, c.IsActive, c.City,
		pq.Array(c.SubjectLines), c.DaysTillClose, c.UpdatedAt)
	if err != nil {
		c.ID = ""
		return err
	}
	return nil
}

// Update never touches city; it is immutable once the campaign is persisted.
func (r *CampaignRepository) Update(c *model.Campaign) error {
	c.UpdatedAt = time.Now()
	query := `
        UPDATE campaigns
        SET name=$1, subject_lines=$2, days_till_close=$3, updated_at=$4
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, c.Name, pq.Array(c.SubjectLines), c.DaysTillClose, c.UpdatedAt, c.ID)
	return err
}

func (r *CampaignRepository) SetActive(id string, active bool) error {
	query := `UPDATE campaigns SET is_active=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, active, time.Now(), id)
	return err
}

func (r *CampaignRepository) Delete(id string) error {
	// Associations first so the campaign row never dangles references.
	if _, err := r.DB.Exec(`DELETE FROM campaign_templates WHERE campaign_id=$1`, id); err != nil {
		return err
	}
	if _, err := r.DB.Exec(`DELETE FROM campaign_emails WHERE campaign_id=$1`, id); err != nil {
		return err
	}
	_, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	return err
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
        SELECT id, user_id, name, is_active, city, subject_lines, days_till_close, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.UserID, &c.Name, &c.IsActive,
		&c.City, pq.Array(&c.SubjectLines), &c.DaysTillClose, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	if err := r.loadAssociations(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListByUser(userID string, offset, limit int) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `
        SELECT id, user_id, name, is_active, city, subject_lines, days_till_close, updated_at
        FROM campaigns
        WHERE user_id=$1
        ORDER BY updated_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.DB.Query(query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.IsActive, &c.City,
			pq.Array(&c.SubjectLines), &c.DaysTillClose, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, c := range campaigns {
		if err := r.loadAssociations(c); err != nil {
			return nil, 0, err
		}
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) loadAssociations(c *model.Campaign) error {
	c.Templates = []model.CampaignTemplate{}
	c.SenderEmails = []model.CampaignEmail{}

	rows, err := r.DB.Query(`
        SELECT ct.template_id, t.name, t.format, ct.template_type
        FROM campaign_templates ct
        JOIN templates t ON t.id = ct.template_id
        WHERE ct.campaign_id=$1
        ORDER BY t.name
    `, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ct model.CampaignTemplate
		if err := rows.Scan(&ct.TemplateID, &ct.Name, &ct.Format, &ct.Role); err != nil {
			return err
		}
		c.Templates = append(c.Templates, ct)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	erows, err := r.DB.Query(`
        SELECT email_address, provider, sending_rate
        FROM campaign_emails
        WHERE campaign_id=$1
        ORDER BY email_address
    `, c.ID)
	if err != nil {
		return err
	}
	defer erows.Close()
	for erows.Next() {
		var ce model.CampaignEmail
		if err := erows.Scan(&ce.Address, &ce.Provider, &ce.DailyRate); err != nil {
			return err
		}
		c.SenderEmails = append(c.SenderEmails, ce)
	}
	return erows.Err()
}

// ====================== Associations ======================

// ReplaceTemplates rewrites the association set: delete everything, then
// insert the current set one row at a time. Sequential on purpose so a
// partial failure is at least ordered; there is no surrounding transaction.
func (r *CampaignRepository) ReplaceTemplates(campaignID string, ts []model.CampaignTemplate) error {
	if _, err := r.DB.Exec(`DELETE FROM campaign_templates WHERE campaign_id=$1`, campaignID); err != nil {
		return err
	}
	for _, t := range ts {
		_, err := r.DB.Exec(`
            INSERT INTO campaign_templates (campaign_id, template_id, template_type)
            VALUES ($1, $2, $3)
        `, campaignID, t.TemplateID, t.Role)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepository) ReplaceEmails(campaignID string, es []model.CampaignEmail) error {
	if _, err := r.DB.Exec(`DELETE FROM campaign_emails WHERE campaign_id=$1`, campaignID); err != nil {
		return err
	}
	for _, e := range es {
		_, err := r.DB.Exec(`
            INSERT INTO campaign_emails (campaign_id, email_address, provider, sending_rate, updated_at)
            VALUES ($1, $2, $3, $4, $5)
        `, campaignID, e.Address, e.Provider, e.DailyRate, time.Now())
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepository) DeleteEmail(campaignID, address string) error {
	_, err := r.DB.Exec(`DELETE FROM campaign_emails WHERE campaign_id=$1 AND email_address=$2`, campaignID, address)
	return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
