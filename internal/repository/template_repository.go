package repository

import (
	"database/sql"

	"github.com/unclebandit/mailpilot-backend/internal/model"
)

// TemplateRepositoryInterface is the read-only view of the template catalog.
// Template storage and rendering live in the template service; the editor only
// lists what can be attached.
type TemplateRepositoryInterface interface {
	List() ([]model.Template, error)
	GetByID(id string) (*model.Template, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) List() ([]model.Template, error) {
	rows, err := r.DB.Query(`SELECT id, name, format FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Format); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) GetByID(id string) (*model.Template, error) {
	var t model.Template
	err := r.DB.QueryRow(`SELECT id, name, format FROM templates WHERE id=$1`, id).Scan(&t.ID, &t.Name, &t.Format)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &t, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
