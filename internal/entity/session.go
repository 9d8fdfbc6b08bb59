package entity

import "strings"

// Session is the acting identity, scoped to one CRM vertical. It is passed
// explicitly into every operation and never modified.
type Session struct {
	UserID    string `json:"userId"`
	AgentName string `json:"agentName"`
	CRMType   string `json:"crm_type"`
}

// Author is the display name stamped on comments.
func (s Session) Author() string {
	if name := strings.TrimSpace(s.AgentName); name != "" {
		return name
	}
	return DefaultAuthor
}

// Tenanted is anything that belongs to exactly one CRM vertical.
type Tenanted interface {
	EntityID() string
	TenantID() string
}
