package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// AppendLeadComment is the pure thread append: the input lead is not modified.
func AppendLeadComment(s entity.Session, lead *entity.Lead, content string, now time.Time) (*entity.Lead, error) {
	if err := Authorize(s, lead); err != nil {
		return nil, err
	}
	c, err := entity.NewComment(content, s.Author(), now)
	if err != nil {
		return nil, err
	}
	return lead.WithComment(c), nil
}

func AppendClientComment(s entity.Session, client *entity.Client, content string, now time.Time) (*entity.Client, error) {
	if err := Authorize(s, client); err != nil {
		return nil, err
	}
	c, err := entity.NewComment(content, s.Author(), now)
	if err != nil {
		return nil, err
	}
	return client.WithComment(c), nil
}

type AddCommentInput struct {
	Content string `json:"content" validate:"max=4000"`
}

type AddCommentUseCase struct {
	Leads   LeadRepository
	Clients ClientRepository
	Clock   Clock
	Logger  *slog.Logger
}

func NewAddCommentUseCase(leads LeadRepository, clients ClientRepository, logger *slog.Logger) *AddCommentUseCase {
	return &AddCommentUseCase{Leads: leads, Clients: clients, Logger: logger}
}

// OnLead appends to the lead's thread. The read and the write are replayed
// when another operation changed the lead in between.
func (uc *AddCommentUseCase) OnLead(ctx context.Context, s entity.Session, leadID string, in AddCommentInput) (*entity.Lead, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var next *entity.Lead
	err := withRetry(ctx, func(ctx context.Context) error {
		lead, err := uc.Leads.FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		next, err = AppendLeadComment(s, lead, in.Content, uc.Clock.now())
		if err != nil {
			return err
		}
		if err := uc.Leads.Update(ctx, next); err != nil {
			return &TechnicalError{Code: CodeDatabase, Message: "failed to save comment", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("comentário adicionado", "lead_id", leadID, "crm_type", s.CRMType)
	return next, nil
}

func (uc *AddCommentUseCase) OnClient(ctx context.Context, s entity.Session, clientID string, in AddCommentInput) (*entity.Client, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var next *entity.Client
	err := withRetry(ctx, func(ctx context.Context) error {
		client, err := uc.Clients.FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		next, err = AppendClientComment(s, client, in.Content, uc.Clock.now())
		if err != nil {
			return err
		}
		if err := uc.Clients.Update(ctx, next); err != nil {
			return &TechnicalError{Code: CodeDatabase, Message: "failed to save comment", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("comentário adicionado", "client_id", clientID, "crm_type", s.CRMType)
	return next, nil
}
