package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateLeadUseCase struct {
	Repo   LeadRepository
	Vocab  *entity.Vocabularies
	Clock  Clock
	Logger *slog.Logger
}

func NewCreateLeadUseCase(repo LeadRepository, vocab *entity.Vocabularies, logger *slog.Logger) *CreateLeadUseCase {
	return &CreateLeadUseCase{Repo: repo, Vocab: vocab, Logger: logger}
}

// Execute creates a lead in the session's crm. A crm_type in the input must
// match the session; an empty one is filled in from it.
func (uc *CreateLeadUseCase) Execute(ctx context.Context, s entity.Session, in CreateLeadInput) (*entity.Lead, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.CRMType == "" {
		in.CRMType = s.CRMType
	}
	if err := AuthorizeCRM(s, in.CRMType); err != nil {
		return nil, err
	}

	lead, err := entity.NewLead(in.draft(), uc.Vocab, uc.Clock.now())
	if err != nil {
		return nil, err
	}
	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to save lead", Err: err}
	}

	uc.Logger.Info("lead criado", "lead_id", lead.ID, "crm_type", lead.CRMType)
	return lead, nil
}

type UpdateLeadUseCase struct {
	Repo   LeadRepository
	Vocab  *entity.Vocabularies
	Logger *slog.Logger
}

func NewUpdateLeadUseCase(repo LeadRepository, vocab *entity.Vocabularies, logger *slog.Logger) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Repo: repo, Vocab: vocab, Logger: logger}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, s entity.Session, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	var next *entity.Lead
	err := withRetry(ctx, func(ctx context.Context) error {
		lead, err := uc.Repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(s, lead); err != nil {
			return err
		}

		next, err = lead.Apply(patch, uc.Vocab)
		if err != nil {
			return err
		}
		if err := uc.Repo.Update(ctx, next); err != nil {
			return &TechnicalError{Code: CodeDatabase, Message: "failed to update lead", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("lead atualizado", "lead_id", id, "crm_type", s.CRMType)
	return next, nil
}

type UpdateClientUseCase struct {
	Repo   ClientRepository
	Vocab  *entity.Vocabularies
	Logger *slog.Logger
}

func NewUpdateClientUseCase(repo ClientRepository, vocab *entity.Vocabularies, logger *slog.Logger) *UpdateClientUseCase {
	return &UpdateClientUseCase{Repo: repo, Vocab: vocab, Logger: logger}
}

func (uc *UpdateClientUseCase) Execute(ctx context.Context, s entity.Session, id string, patch entity.ClientPatch) (*entity.Client, error) {
	var next *entity.Client
	err := withRetry(ctx, func(ctx context.Context) error {
		client, err := uc.Repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(s, client); err != nil {
			return err
		}

		next, err = client.Apply(patch, uc.Vocab)
		if err != nil {
			return err
		}
		if err := uc.Repo.Update(ctx, next); err != nil {
			return &TechnicalError{Code: CodeDatabase, Message: "failed to update client", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("cliente atualizado", "client_id", id, "crm_type", s.CRMType)
	return next, nil
}
