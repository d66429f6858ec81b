// internal/model/campaign.go
package model

import (
	"errors"
	"strconv"
	"time"
)

// Template roles. Exactly one body template is allowed per campaign.
const (
	RoleBody       = "body"
	RoleAttachment = "attachment"
)

// DaysTillCloseNA means the campaign has no closing window.
const DaysTillCloseNA = "NA"

// Rate bounds for a sender email, messages per day.
const (
	MinDailyRate = 1
	MaxDailyRate = 1440
)

// Cities is the fixed list of target cities. New drafts default to Cities[0].
var Cities = []string{
	"Chicago",
	"New York",
	"Los Angeles",
	"Houston",
	"Phoenix",
	"Philadelphia",
	"San Antonio",
	"Dallas",
	"Miami",
	"Seattle",
}

type Campaign struct {
	ID            string             `db:"id" json:"id"`
	UserID        string             `db:"user_id" json:"-"`
	Name          string             `db:"name" json:"name"`
	IsActive      bool               `db:"is_active" json:"is_active"`
	City          string             `db:"city" json:"city"`
	SubjectLines  []string           `db:"subject_lines" json:"subject_lines"`
	DaysTillClose string             `db:"days_till_close" json:"days_till_close"`
	Templates     []CampaignTemplate `json:"templates"`
	SenderEmails  []CampaignEmail    `json:"sender_emails"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

type CampaignTemplate struct {
	TemplateID string `db:"template_id" json:"template_id"`
	Name       string `json:"name"`
	Format     string `json:"format"`
	Role       string `db:"template_type" json:"role"`
}

type CampaignEmail struct {
	Address   string `db:"email_address" json:"address"`
	Provider  string `db:"provider" json:"provider"`
	DailyRate int    `db:"sending_rate" json:"daily_rate"`
}

// NewDraft returns the default unsaved campaign: no id yet, first city
// preselected, no closing window, empty association lists.
func NewDraft(userID string) *Campaign {
	return &Campaign{
		UserID:        userID,
		City:          Cities[0],
		DaysTillClose: DaysTillCloseNA,
		SubjectLines:  []string{},
		Templates:     []CampaignTemplate{},
		SenderEmails:  []CampaignEmail{},
	}
}

// Validate reports whether the campaign is eligible to be activated.
// Checks run in a fixed order and the first failing reason is returned.
func (c *Campaign) Validate() error {
	if len(c.SenderEmails) == 0 {
		return errors.New("At least one sender email is required")
	}
	if c.City == "" {
		return errors.New("A city is required")
	}
	if len(c.SubjectLines) == 0 {
		return errors.New("At least one subject line is required")
	}
	if c.bodyTemplateCount() != 1 {
		return errors.New("A body template is required")
	}
	return nil
}

func (c *Campaign) bodyTemplateCount() int {
	n := 0
	for _, t := range c.Templates {
		if t.Role == RoleBody {
			n++
		}
	}
	return n
}

// HasBodyTemplate reports whether a body-role template is already attached.
func (c *Campaign) HasBodyTemplate() bool {
	return c.bodyTemplateCount() > 0
}

// HasTemplate reports whether the template is already attached.
func (c *Campaign) HasTemplate(templateID string) bool {
	for _, t := range c.Templates {
		if t.TemplateID == templateID {
			return true
		}
	}
	return false
}

// HasSender reports whether the address is already in the sender list.
func (c *Campaign) HasSender(address string) bool {
	for _, e := range c.SenderEmails {
		if e.Address == address {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so the editor draft never aliases the list entry.
func (c *Campaign) Clone() *Campaign {
	cp := *c
	cp.SubjectLines = append([]string{}, c.SubjectLines...)
	cp.Templates = append([]CampaignTemplate{}, c.Templates...)
	cp.SenderEmails = append([]CampaignEmail{}, c.SenderEmails...)
	return &cp
}

// RoleForFormat derives the template role from its format. HTML templates
// become the campaign body, every other format is sent as an attachment.
func RoleForFormat(format string) string {
	if format == "html" {
		return RoleBody
	}
	return RoleAttachment
}

// ValidCity reports whether city is one of the fixed target cities.
func ValidCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

// ValidDaysTillClose accepts "NA" or a whole number of days between 1 and 21.
func ValidDaysTillClose(v string) bool {
	if v == DaysTillCloseNA {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1 && n <= 21
}

// ReconcileSenders prunes sender entries whose credential no longer exists.
// Pure derivation over the in-memory lists; nothing is persisted here, the
// pruned campaigns are only written back on an explicit save. Returns the
// number of entries removed.
func ReconcileSenders(campaigns []*Campaign, creds []*SenderCredential) int {
	known := make(map[string]struct{}, len(creds))
	for _, cr := range creds {
		known[cr.Provider+"\x00"+cr.Address] = struct{}{}
	}

	pruned := 0
	for _, c := range campaigns {
		kept := c.SenderEmails[:0]
		for _, e := range c.SenderEmails {
			if _, ok := known[e.Provider+"\x00"+e.Address]; ok {
				kept = append(kept, e)
			} else {
				pruned++
			}
		}
		c.SenderEmails = kept
	}
	return pruned
}
