package usecase

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateLeadInput struct {
	Name       string     `json:"name" validate:"required,max=200"`
	Phone      string     `json:"phone" validate:"required,max=40"`
	Email      string     `json:"email" validate:"required,email,max=254"`
	Address    string     `json:"address" validate:"required,max=500"`
	Type       string     `json:"type" validate:"required"`
	Status     string     `json:"status"`
	AssignedTo string     `json:"assignedTo" validate:"max=200"`
	CRMType    string     `json:"crm_type"`
	FollowUp   *time.Time `json:"followUp"`
	Notes      []string   `json:"notes" validate:"dive,max=2000"`
}

func (in CreateLeadInput) draft() entity.LeadDraft {
	return entity.LeadDraft{
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Address:    in.Address,
		Type:       in.Type,
		Status:     in.Status,
		AssignedTo: in.AssignedTo,
		CRMType:    in.CRMType,
		FollowUp:   in.FollowUp,
		Notes:      in.Notes,
	}
}

type LogCallInput struct {
	LeadID     string    `json:"leadId" validate:"required_without=ClientID,excluded_with=ClientID"`
	ClientID   string    `json:"clientId" validate:"required_without=LeadID"`
	EmployeeID string    `json:"employeeId" validate:"required,max=200"`
	CRMType    string    `json:"crm_type"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration" validate:"gte=0"`
	Status     string    `json:"status" validate:"required"`
	Notes      string    `json:"notes" validate:"max=2000"`
}

func (in LogCallInput) draft() entity.CallDraft {
	return entity.CallDraft{
		LeadID:     in.LeadID,
		ClientID:   in.ClientID,
		EmployeeID: in.EmployeeID,
		CRMType:    in.CRMType,
		Date:       in.Date,
		Duration:   in.Duration,
		Status:     in.Status,
		Notes:      in.Notes,
	}
}
