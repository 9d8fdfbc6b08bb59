package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LogCallUseCase struct {
	Calls   CallRepository
	Leads   LeadRepository
	Clients ClientRepository
	Vocab   *entity.Vocabularies
	Clock   Clock
	Logger  *slog.Logger
}

func NewLogCallUseCase(calls CallRepository, leads LeadRepository, clients ClientRepository, vocab *entity.Vocabularies, logger *slog.Logger) *LogCallUseCase {
	return &LogCallUseCase{Calls: calls, Leads: leads, Clients: clients, Vocab: vocab, Logger: logger}
}

// Execute records a call and moves the target's lastContact forward.
// Calls against a converted lead are rejected; log them on the client.
func (uc *LogCallUseCase) Execute(ctx context.Context, s entity.Session, in LogCallInput) (*entity.Call, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.CRMType == "" {
		in.CRMType = s.CRMType
	}
	if err := AuthorizeCRM(s, in.CRMType); err != nil {
		return nil, err
	}

	call, err := entity.NewCall(in.draft(), uc.Vocab, uc.Clock.now())
	if err != nil {
		return nil, err
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		touch, err := uc.touch(ctx, s, call)
		if err != nil {
			return err
		}

		txn := NewTransaction()
		txn.AddStep("create_call",
			func(ctx context.Context) error { return uc.Calls.Create(ctx, call) },
			func(ctx context.Context) error {
				_, err := uc.Calls.Delete(ctx, call.ID)
				return err
			},
		)
		txn.AddStep("touch_last_contact", touch, nil)
		if err := txn.Execute(ctx); err != nil {
			return &TechnicalError{Code: CodeDatabase, Message: "failed to log call", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("ligação registrada", "call_id", call.ID, "lead_id", call.LeadID, "client_id", call.ClientID, "crm_type", call.CRMType)
	return call, nil
}

// touch reads the call's target and returns the write that moves its
// lastContact forward.
func (uc *LogCallUseCase) touch(ctx context.Context, s entity.Session, call *entity.Call) (func(context.Context) error, error) {
	if call.LeadID != "" {
		lead, err := uc.Leads.FindByID(ctx, call.LeadID)
		if err != nil {
			return nil, err
		}
		if err := Authorize(s, lead); err != nil {
			return nil, err
		}
		next, err := lead.WithContactAt(call.Date)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return uc.Leads.Update(ctx, next) }, nil
	}

	client, err := uc.Clients.FindByID(ctx, call.ClientID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(s, client); err != nil {
		return nil, err
	}
	next := client.WithContactAt(call.Date)
	return func(ctx context.Context) error { return uc.Clients.Update(ctx, next) }, nil
}
