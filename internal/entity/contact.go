package entity

import (
	"strings"
	"time"
)

// Contact is the field block shared by Lead and Client.
type Contact struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	AssignedTo  string     `json:"assignedTo"`
	CRMType     string     `json:"crm_type"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastContact time.Time  `json:"lastContact"`
	FollowUp    *time.Time `json:"followUp"`
	Notes       []string   `json:"notes"`
	Comments    []Comment  `json:"comments"`
	// Version is bumped by the store on every update; an update carrying an
	// older version is rejected.
	Version int `json:"version"`
}

func (c Contact) EntityID() string { return c.ID }
func (c Contact) TenantID() string { return c.CRMType }

// SearchFields are the fields matched by free-text search.
func (c Contact) SearchFields() (name, phone, email string) {
	return c.Name, c.Phone, c.Email
}

// FilterKeys are the values matched against active filter tokens.
func (c Contact) FilterKeys() (status, typ string) {
	return c.Status, c.Type
}

func (c Contact) FollowUpDue(now time.Time) bool {
	return c.FollowUp != nil && !c.FollowUp.After(now)
}

func (c Contact) clone() Contact {
	out := c
	if c.FollowUp != nil {
		f := *c.FollowUp
		out.FollowUp = &f
	}
	out.Notes = append([]string(nil), c.Notes...)
	out.Comments = append([]Comment(nil), c.Comments...)
	if out.Notes == nil {
		out.Notes = []string{}
	}
	if out.Comments == nil {
		out.Comments = []Comment{}
	}
	return out
}

func (c Contact) validateRequired() error {
	required := []struct {
		field string
		value string
	}{
		{"name", c.Name},
		{"phone", c.Phone},
		{"email", c.Email},
		{"address", c.Address},
		{"crm_type", c.CRMType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewValidationError(r.field, "is required")
		}
	}
	return nil
}

// ContactPatch is a partial update of the shared fields. id, crm_type and
// createdAt may be echoed back unchanged; any other value is rejected.
type ContactPatch struct {
	ID        *string    `json:"id,omitempty"`
	CRMType   *string    `json:"crm_type,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`

	Name        *string    `json:"name,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Type        *string    `json:"type,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	LastContact *time.Time `json:"lastContact,omitempty"`

	FollowUp      *time.Time `json:"followUp,omitempty"`
	ClearFollowUp bool       `json:"clearFollowUp,omitempty"`
	AppendNotes   []string   `json:"appendNotes,omitempty"`
}

func (p ContactPatch) checkImmutable(c Contact) error {
	if p.ID != nil && *p.ID != c.ID {
		return &ImmutableFieldError{Field: "id"}
	}
	if p.CRMType != nil && *p.CRMType != c.CRMType {
		return &ImmutableFieldError{Field: "crm_type"}
	}
	if p.CreatedAt != nil && !p.CreatedAt.Equal(c.CreatedAt) {
		return &ImmutableFieldError{Field: "createdAt"}
	}
	return nil
}

// apply writes the mutable fields onto c, which must already be a clone.
func (p ContactPatch) apply(c *Contact, vocab *Vocabularies) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&c.Name, p.Name)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Address, p.Address)
	setString(&c.AssignedTo, p.AssignedTo)

	if p.Type != nil {
		if err := vocab.Source.Validate(*p.Type); err != nil {
			return err
		}
		c.Type = *p.Type
	}
	if p.LastContact != nil {
		c.LastContact = *p.LastContact
	}
	switch {
	case p.ClearFollowUp:
		c.FollowUp = nil
	case p.FollowUp != nil:
		f := *p.FollowUp
		c.FollowUp = &f
	}
	for _, n := range p.AppendNotes {
		if n = strings.TrimSpace(n); n != "" {
			c.Notes = append(c.Notes, n)
		}
	}
	return c.validateRequired()
}
