package mail

import "time"

type ConversionEmailData struct {
	Name        string
	Email       string
	CRMType     string
	ClientID    string
	Value       string
	ConvertedBy string
	ConvertedAt string
}

type FollowUpEmailData struct {
	CRMType string
	Leads   []FollowUpLine
}

type FollowUpLine struct {
	Name       string
	Phone      string
	AssignedTo string
	FollowUp   string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	Location *time.Location
}
