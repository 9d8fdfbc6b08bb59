package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
	"gopkg.in/gomail.v2"
)

const dateLayout = "02/01/2006 15:04"

var (
	conversionTmpl = template.Must(template.New("conversion").Parse(`<p>O lead <strong>{{.Name}}</strong> ({{.Email}}) virou cliente no CRM {{.CRMType}}.</p>
<p>Cliente: {{.ClientID}}<br>Valor: {{.Value}}<br>Convertido por {{.ConvertedBy}} em {{.ConvertedAt}}</p>`))

	followUpTmpl = template.Must(template.New("followup").Parse(`<p>Follow-ups pendentes no CRM {{.CRMType}}:</p>
<ul>{{range .Leads}}
<li><strong>{{.Name}}</strong> {{.Phone}} ({{.AssignedTo}}) desde {{.FollowUp}}</li>{{end}}
</ul>`))
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string, to []string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
		Location: time.UTC,
	}
}

// Notifier delivers CRM notices over SMTP.
type Notifier struct {
	Sender *EmailSender
	dialer dialer
}

func NewNotifier(s *EmailSender) *Notifier {
	return &Notifier{Sender: s, dialer: gomail.NewDialer(s.Host, s.Port, s.User, s.Password)}
}

func (n *Notifier) NotifyConversion(_ context.Context, event usecase.LeadConvertedEvent) error {
	data := ConversionEmailData{
		Name:        event.Name,
		Email:       event.Email,
		CRMType:     event.CRMType,
		ClientID:    event.ClientID,
		Value:       fmt.Sprintf("%.2f", event.Value),
		ConvertedBy: event.ConvertedBy,
		ConvertedAt: event.ConvertedAt.In(n.location()).Format(dateLayout),
	}
	subject := fmt.Sprintf("Novo cliente: %s", event.Name)
	return n.send(subject, conversionTmpl, data)
}

func (n *Notifier) NotifyFollowUps(_ context.Context, crmType string, leads []*entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	data := FollowUpEmailData{CRMType: crmType}
	for _, l := range leads {
		line := FollowUpLine{Name: l.Name, Phone: l.Phone, AssignedTo: l.AssignedTo}
		if line.AssignedTo == "" {
			line.AssignedTo = "sem responsável"
		}
		if l.FollowUp != nil {
			line.FollowUp = l.FollowUp.In(n.location()).Format(dateLayout)
		}
		data.Leads = append(data.Leads, line)
	}
	subject := fmt.Sprintf("[%s] %d follow-up(s) pendente(s)", crmType, len(leads))
	return n.send(subject, followUpTmpl, data)
}

func (n *Notifier) send(subject string, t *template.Template, data any) error {
	if len(n.Sender.To) == 0 {
		return fmt.Errorf("nenhum destinatário configurado")
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.Sender.From)
	m.SetHeader("To", n.Sender.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (n *Notifier) location() *time.Location {
	if n.Sender.Location == nil {
		return time.UTC
	}
	return n.Sender.Location
}

// LogNotifier is wired when MAIL_HOST is empty.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyConversion(_ context.Context, event usecase.LeadConvertedEvent) error {
	n.Logger.Info("aviso de conversão (email desativado)",
		"lead_id", event.LeadID, "client_id", event.ClientID, "crm_type", event.CRMType)
	return nil
}

func (n LogNotifier) NotifyFollowUps(_ context.Context, crmType string, leads []*entity.Lead) error {
	names := make([]string, 0, len(leads))
	for _, l := range leads {
		names = append(names, l.Name)
	}
	n.Logger.Info("follow-ups pendentes (email desativado)",
		"crm_type", crmType, "count", len(leads), "leads", strings.Join(names, ", "))
	return nil
}
