package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FollowUpReminderOutput struct {
	Due      int `json:"due"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// FollowUpReminderUseCase finds open leads whose follow-up is due and sends
// one reminder per crm. It is run by the scheduler, outside any session.
type FollowUpReminderUseCase struct {
	Leads    LeadRepository
	Notifier Notifier
	Clock    Clock
	Logger   *slog.Logger
}

func NewFollowUpReminderUseCase(leads LeadRepository, notifier Notifier, logger *slog.Logger) *FollowUpReminderUseCase {
	return &FollowUpReminderUseCase{Leads: leads, Notifier: notifier, Logger: logger}
}

func (uc *FollowUpReminderUseCase) Execute(ctx context.Context) (*FollowUpReminderOutput, error) {
	now := uc.Clock.now()
	due, err := uc.Leads.ListFollowUpsDue(ctx, now)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list due follow-ups", Err: err}
	}

	byCRM := map[string][]*entity.Lead{}
	for _, l := range due {
		if l.IsConverted() || !l.FollowUpDue(now) {
			continue
		}
		byCRM[l.CRMType] = append(byCRM[l.CRMType], l)
	}

	crms := make([]string, 0, len(byCRM))
	for crm := range byCRM {
		crms = append(crms, crm)
	}
	sort.Strings(crms)

	out := &FollowUpReminderOutput{}
	for _, crm := range crms {
		leads := byCRM[crm]
		out.Due += len(leads)
		if err := uc.Notifier.NotifyFollowUps(ctx, crm, leads); err != nil {
			out.Failed += len(leads)
			uc.Logger.Error("falha ao enviar lembrete de follow-up", "crm_type", crm, "leads", len(leads), "error", err)
			continue
		}
		out.Notified += len(leads)
	}

	if out.Due > 0 {
		uc.Logger.Info("lembretes de follow-up enviados", "due", out.Due, "notified", out.Notified, "failed", out.Failed)
	}
	return out, nil
}
