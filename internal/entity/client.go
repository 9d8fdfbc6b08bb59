package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a converted lead. It is only created through conversion.
type Client struct {
	Contact
	Company *string `json:"company"`
	Value   float64 `json:"value"`
	LeadID  string  `json:"leadId"`
}

// ClientFromLead copies the lead's contact block verbatim, comments included,
// and starts a new creation event at now.
func ClientFromLead(lead *Lead, company *string, value float64, now time.Time) (*Client, error) {
	if value < 0 {
		return nil, NewValidationError("value", "must be >= 0")
	}

	contact := lead.Contact.clone()
	contact.ID = uuid.New().String()
	contact.Status = StatusConverted
	contact.FollowUp = nil
	contact.CreatedAt = now
	contact.Version = 1

	client := &Client{
		Contact: contact,
		Value:   value,
		LeadID:  lead.ID,
	}
	if company != nil {
		c := strings.TrimSpace(*company)
		if c != "" {
			client.Company = &c
		}
	}
	return client, nil
}

func (c *Client) Validate() error {
	if err := c.validateRequired(); err != nil {
		return err
	}
	if c.Value < 0 {
		return NewValidationError("value", "must be >= 0")
	}
	if c.Status != StatusConverted {
		return NewValidationError("status", "client status must be "+StatusConverted)
	}
	return nil
}

func (c *Client) Clone() *Client {
	out := &Client{
		Contact: c.Contact.clone(),
		Value:   c.Value,
		LeadID:  c.LeadID,
	}
	if c.Company != nil {
		company := *c.Company
		out.Company = &company
	}
	return out
}

func (c *Client) WithComment(cm Comment) *Client {
	next := c.Clone()
	next.Comments = appendComment(c.Comments, cm)
	return next
}

func (c *Client) WithContactAt(at time.Time) *Client {
	next := c.Clone()
	if at.After(next.LastContact) {
		next.LastContact = at
	}
	return next
}

type ClientPatch struct {
	ContactPatch
	Status       *string  `json:"status,omitempty"`
	Company      *string  `json:"company,omitempty"`
	ClearCompany bool     `json:"clearCompany,omitempty"`
	Value        *float64 `json:"value,omitempty"`
}

func (c *Client) Apply(p ClientPatch, vocab *Vocabularies) (*Client, error) {
	if err := p.checkImmutable(c.Contact); err != nil {
		return nil, err
	}
	if p.Status != nil && *p.Status != StatusConverted {
		return nil, &ImmutableFieldError{Field: "status"}
	}
	if p.Value != nil && *p.Value < 0 {
		return nil, NewValidationError("value", "must be >= 0")
	}

	next := c.Clone()
	if err := p.ContactPatch.apply(&next.Contact, vocab); err != nil {
		return nil, err
	}
	switch {
	case p.ClearCompany:
		next.Company = nil
	case p.Company != nil:
		company := strings.TrimSpace(*p.Company)
		next.Company = &company
	}
	if p.Value != nil {
		next.Value = *p.Value
	}
	return next, nil
}
