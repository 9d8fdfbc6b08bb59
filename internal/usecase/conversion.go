package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ConversionPolicy string

const (
	// PolicyReject fails a repeated conversion with AlreadyConvertedError.
	PolicyReject ConversionPolicy = "reject"
	// PolicyReturnExisting answers a repeated conversion with the client
	// created the first time.
	PolicyReturnExisting ConversionPolicy = "return-existing"
)

func ParseConversionPolicy(s string) (ConversionPolicy, error) {
	switch ConversionPolicy(s) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyReturnExisting:
		return PolicyReturnExisting, nil
	}
	return "", fmt.Errorf("unknown conversion policy %q", s)
}

type ConversionOptions struct {
	Company *string  `json:"company"`
	Value   *float64 `json:"value" validate:"omitempty,gte=0"`
}

// ConvertLead is the pure Lead to Client transition. It returns the lead
// marked converted and the new client; the input is not modified.
func ConvertLead(lead *entity.Lead, opts ConversionOptions, vocab *entity.Vocabularies, now time.Time) (*entity.Lead, *entity.Client, error) {
	if lead.IsConverted() {
		return nil, nil, &entity.AlreadyConvertedError{LeadID: lead.ID}
	}
	if err := lead.Validate(vocab); err != nil {
		return nil, nil, err
	}

	var value float64
	if opts.Value != nil {
		value = *opts.Value
	}
	client, err := entity.ClientFromLead(lead, opts.Company, value, now)
	if err != nil {
		return nil, nil, err
	}
	return lead.MarkConverted(), client, nil
}

type LeadConvertedEvent struct {
	LeadID      string    `json:"lead_id"`
	ClientID    string    `json:"client_id"`
	CRMType     string    `json:"crm_type"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AssignedTo  string    `json:"assigned_to"`
	Value       float64   `json:"value"`
	ConvertedBy string    `json:"converted_by"`
	ConvertedAt time.Time `json:"converted_at"`
}

type ConvertLeadOutput struct {
	Lead   *entity.Lead   `json:"lead"`
	Client *entity.Client `json:"client"`
	// Existing is true when the policy returned a client from an earlier conversion.
	Existing bool `json:"existing"`
}

type ConvertLeadUseCase struct {
	Leads     LeadRepository
	Clients   ClientRepository
	Publisher EventPublisher
	Guard     ConversionGuard
	Vocab     *entity.Vocabularies
	Policy    ConversionPolicy
	Clock     Clock
	Logger    *slog.Logger
}

func NewConvertLeadUseCase(
	leads LeadRepository,
	clients ClientRepository,
	publisher EventPublisher,
	guard ConversionGuard,
	vocab *entity.Vocabularies,
	policy ConversionPolicy,
	logger *slog.Logger,
) *ConvertLeadUseCase {
	return &ConvertLeadUseCase{
		Leads:     leads,
		Clients:   clients,
		Publisher: publisher,
		Guard:     guard,
		Vocab:     vocab,
		Policy:    policy,
		Logger:    logger,
	}
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, s entity.Session, leadID string, opts ConversionOptions) (*ConvertLeadOutput, error) {
	if err := validateInput(opts); err != nil {
		return nil, err
	}
	if uc.Guard != nil {
		key := "convert:" + leadID
		ok, err := uc.Guard.Acquire(ctx, key)
		if err != nil {
			return nil, &TechnicalError{Code: CodeGuardUnavailable, Message: "could not lock lead for conversion", Err: err}
		}
		if !ok {
			return nil, &DomainError{Code: CodeConversionInProgress, Message: "conversion already in progress for lead " + leadID}
		}
		defer func() {
			if err := uc.Guard.Release(context.WithoutCancel(ctx), key); err != nil {
				uc.Logger.Warn("falha ao liberar trava de conversão", "lead_id", leadID, "error", err)
			}
		}()
	}

	var out *ConvertLeadOutput
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		out, err = uc.convert(ctx, s, leadID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Existing {
		return out, nil
	}

	uc.Logger.Info("lead convertido", "lead_id", out.Lead.ID, "client_id", out.Client.ID, "crm_type", out.Lead.CRMType)

	event := LeadConvertedEvent{
		LeadID:      out.Lead.ID,
		ClientID:    out.Client.ID,
		CRMType:     out.Client.CRMType,
		Name:        out.Client.Name,
		Email:       out.Client.Email,
		AssignedTo:  out.Client.AssignedTo,
		Value:       out.Client.Value,
		ConvertedBy: s.Author(),
		ConvertedAt: out.Client.CreatedAt,
	}
	if uc.Publisher != nil {
		// best effort: the conversion is already committed
		if err := uc.Publisher.PublishLeadConverted(ctx, event); err != nil {
			uc.Logger.Error("⚠️ convertido no banco, mas falha na fila", "lead_id", out.Lead.ID, "error", err)
		}
	}
	return out, nil
}

// convert is one read-convert-write pass. A lead changed after it was read
// makes the mark step fail with entity.ErrVersionConflict; the client is
// then removed again so the pass can be replayed from a fresh read.
func (uc *ConvertLeadUseCase) convert(ctx context.Context, s entity.Session, leadID string, opts ConversionOptions) (*ConvertLeadOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(s, lead); err != nil {
		return nil, err
	}

	if lead.IsConverted() {
		return uc.repeated(ctx, lead)
	}

	marked, client, err := ConvertLead(lead, opts, uc.Vocab, uc.Clock.now())
	if err != nil {
		return nil, err
	}

	txn := NewTransaction()
	txn.AddStep("create_client",
		func(ctx context.Context) error { return uc.Clients.Create(ctx, client) },
		func(ctx context.Context) error {
			_, err := uc.Clients.Delete(ctx, client.ID)
			return err
		},
	)
	txn.AddStep("mark_lead_converted",
		func(ctx context.Context) error { return uc.Leads.Update(ctx, marked) },
		nil,
	)
	if err := txn.Execute(ctx); err != nil {
		// another instance won the race; the store's unique lead_id caught it
		var convErr *entity.AlreadyConvertedError
		if errors.As(err, &convErr) {
			return nil, convErr
		}
		if errors.Is(err, entity.ErrVersionConflict) {
			uc.Logger.Warn("lead alterado durante a conversão, repetindo", "lead_id", leadID)
			return nil, err
		}
		uc.Logger.Error("conversão desfeita", "lead_id", leadID, "error", err)
		return nil, &TechnicalError{Code: CodeConversionFailed, Message: "conversion failed", Err: err}
	}

	return &ConvertLeadOutput{Lead: marked, Client: client}, nil
}

func (uc *ConvertLeadUseCase) repeated(ctx context.Context, lead *entity.Lead) (*ConvertLeadOutput, error) {
	existing, err := uc.Clients.FindByLeadID(ctx, lead.ID)
	if err != nil && !errors.Is(err, entity.ErrClientNotFound) {
		return nil, err
	}

	if uc.Policy == PolicyReturnExisting && existing != nil {
		return &ConvertLeadOutput{Lead: lead, Client: existing, Existing: true}, nil
	}

	convErr := &entity.AlreadyConvertedError{LeadID: lead.ID}
	if existing != nil {
		convErr.ClientID = existing.ID
	}
	return nil, convErr
}
