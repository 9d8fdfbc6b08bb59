package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective contact. Once its status is StatusConverted it is
// read-only except for comment appends.
type Lead struct {
	Contact
}

type LeadDraft struct {
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Address    string     `json:"address"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	AssignedTo string     `json:"assignedTo"`
	CRMType    string     `json:"crm_type"`
	FollowUp   *time.Time `json:"followUp"`
	Notes      []string   `json:"notes"`
}

// NewLead validates the draft and stamps id, createdAt and lastContact.
func NewLead(d LeadDraft, vocab *Vocabularies, now time.Time) (*Lead, error) {
	status := d.Status
	if status == "" {
		status = vocab.Initial
	}

	lead := &Lead{Contact: Contact{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(d.Name),
		Phone:       strings.TrimSpace(d.Phone),
		Email:       strings.TrimSpace(d.Email),
		Address:     strings.TrimSpace(d.Address),
		Type:        d.Type,
		Status:      status,
		AssignedTo:  strings.TrimSpace(d.AssignedTo),
		CRMType:     strings.TrimSpace(d.CRMType),
		CreatedAt:   now,
		LastContact: now,
		Notes:       []string{},
		Comments:    []Comment{},
		Version:     1,
	}}
	if d.FollowUp != nil {
		f := *d.FollowUp
		lead.FollowUp = &f
	}
	for _, n := range d.Notes {
		if n = strings.TrimSpace(n); n != "" {
			lead.Notes = append(lead.Notes, n)
		}
	}

	if status == StatusConverted {
		return nil, NewValidationError("status", "a lead cannot be created already converted")
	}
	if err := lead.Validate(vocab); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate(vocab *Vocabularies) error {
	if err := l.validateRequired(); err != nil {
		return err
	}
	if err := vocab.Source.Validate(l.Type); err != nil {
		return err
	}
	return vocab.Status.Validate(l.Status)
}

func (l *Lead) IsConverted() bool {
	return l.Status == StatusConverted
}

func (l *Lead) Clone() *Lead {
	return &Lead{Contact: l.Contact.clone()}
}

// WithComment returns a copy of the lead with c appended to its thread.
// Converted leads still accept comments.
func (l *Lead) WithComment(c Comment) *Lead {
	next := l.Clone()
	next.Comments = appendComment(l.Comments, c)
	return next
}

// WithContactAt records a contact-producing action (e.g. a logged call).
func (l *Lead) WithContactAt(at time.Time) (*Lead, error) {
	if l.IsConverted() {
		return nil, &AlreadyConvertedError{LeadID: l.ID}
	}
	next := l.Clone()
	if at.After(next.LastContact) {
		next.LastContact = at
	}
	return next, nil
}

// MarkConverted is only used by the conversion workflow.
func (l *Lead) MarkConverted() *Lead {
	next := l.Clone()
	next.Status = StatusConverted
	return next
}

type LeadPatch struct {
	ContactPatch
	Status *string `json:"status,omitempty"`
}

// Apply returns a patched copy of the lead. The receiver is not modified.
func (l *Lead) Apply(p LeadPatch, vocab *Vocabularies) (*Lead, error) {
	if err := p.checkImmutable(l.Contact); err != nil {
		return nil, err
	}
	if l.IsConverted() {
		return nil, &AlreadyConvertedError{LeadID: l.ID}
	}

	next := l.Clone()
	if p.Status != nil {
		if *p.Status == StatusConverted {
			return nil, NewValidationError("status", "use the conversion workflow to convert a lead")
		}
		if err := vocab.Status.Validate(*p.Status); err != nil {
			return nil, err
		}
		next.Status = *p.Status
	}
	if err := p.ContactPatch.apply(&next.Contact, vocab); err != nil {
		return nil, err
	}
	return next, nil
}
