package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Call is a logged contact event against exactly one lead or client.
type Call struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"leadId,omitempty"`
	ClientID   string    `json:"clientId,omitempty"`
	EmployeeID string    `json:"employeeId"`
	CRMType    string    `json:"crm_type"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"` // seconds
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
}

func (c Call) EntityID() string { return c.ID }
func (c Call) TenantID() string { return c.CRMType }

type CallDraft struct {
	LeadID     string    `json:"leadId"`
	ClientID   string    `json:"clientId"`
	EmployeeID string    `json:"employeeId"`
	CRMType    string    `json:"crm_type"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
}

func NewCall(d CallDraft, vocab *Vocabularies, now time.Time) (*Call, error) {
	leadID := strings.TrimSpace(d.LeadID)
	clientID := strings.TrimSpace(d.ClientID)
	if (leadID == "") == (clientID == "") {
		return nil, NewValidationError("leadId", "exactly one of leadId or clientId must be set")
	}
	if strings.TrimSpace(d.EmployeeID) == "" {
		return nil, NewValidationError("employeeId", "is required")
	}
	if strings.TrimSpace(d.CRMType) == "" {
		return nil, NewValidationError("crm_type", "is required")
	}
	if d.Duration < 0 {
		return nil, NewValidationError("duration", "must be >= 0")
	}
	if err := vocab.CallOutcome.Validate(d.Status); err != nil {
		return nil, err
	}

	date := d.Date
	if date.IsZero() {
		date = now
	}
	return &Call{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		ClientID:   clientID,
		EmployeeID: strings.TrimSpace(d.EmployeeID),
		CRMType:    strings.TrimSpace(d.CRMType),
		Date:       date,
		Duration:   d.Duration,
		Status:     d.Status,
		Notes:      strings.TrimSpace(d.Notes),
	}, nil
}
