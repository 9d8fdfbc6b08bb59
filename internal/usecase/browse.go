package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// BrowseUseCase serves the read side of leads, clients and calls, plus
// deletes. Every result passes through the access gate.
type BrowseUseCase struct {
	Leads   LeadRepository
	Clients ClientRepository
	Calls   CallRepository
	Logger  *slog.Logger
}

func NewBrowseUseCase(leads LeadRepository, clients ClientRepository, calls CallRepository, logger *slog.Logger) *BrowseUseCase {
	return &BrowseUseCase{Leads: leads, Clients: clients, Calls: calls, Logger: logger}
}

func requireCRM(s entity.Session) error {
	if s.CRMType == "" {
		return &entity.CrossTenantAccessError{}
	}
	return nil
}

func (uc *BrowseUseCase) ListLeads(ctx context.Context, s entity.Session, q Query) (Page[*entity.Lead], error) {
	leads, err := uc.AllLeads(ctx, s, q.Text, q.Filters)
	if err != nil {
		return Page[*entity.Lead]{}, err
	}
	return Paginate(leads, q.Page, q.PageSize), nil
}

// AllLeads is the unpaginated filtered list, used by exports.
func (uc *BrowseUseCase) AllLeads(ctx context.Context, s entity.Session, text string, filters []string) ([]*entity.Lead, error) {
	if err := requireCRM(s); err != nil {
		return nil, err
	}
	leads, err := uc.Leads.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list leads", Err: err}
	}
	return Filter(s, leads, text, filters), nil
}

func (uc *BrowseUseCase) GetLead(ctx context.Context, s entity.Session, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(s, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (uc *BrowseUseCase) DeleteLead(ctx context.Context, s entity.Session, id string) (bool, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		if entity.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := Authorize(s, lead); err != nil {
		return false, err
	}
	deleted, err := uc.Leads.Delete(ctx, id)
	if err != nil {
		return false, &TechnicalError{Code: CodeDatabase, Message: "failed to delete lead", Err: err}
	}
	if deleted {
		uc.Logger.Info("lead removido", "lead_id", id, "crm_type", s.CRMType)
	}
	return deleted, nil
}

func (uc *BrowseUseCase) ListClients(ctx context.Context, s entity.Session, q Query) (Page[*entity.Client], error) {
	clients, err := uc.AllClients(ctx, s, q.Text, q.Filters)
	if err != nil {
		return Page[*entity.Client]{}, err
	}
	return Paginate(clients, q.Page, q.PageSize), nil
}

func (uc *BrowseUseCase) AllClients(ctx context.Context, s entity.Session, text string, filters []string) ([]*entity.Client, error) {
	if err := requireCRM(s); err != nil {
		return nil, err
	}
	clients, err := uc.Clients.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list clients", Err: err}
	}
	return Filter(s, clients, text, filters), nil
}

func (uc *BrowseUseCase) GetClient(ctx context.Context, s entity.Session, id string) (*entity.Client, error) {
	client, err := uc.Clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(s, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (uc *BrowseUseCase) DeleteClient(ctx context.Context, s entity.Session, id string) (bool, error) {
	client, err := uc.Clients.FindByID(ctx, id)
	if err != nil {
		if entity.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := Authorize(s, client); err != nil {
		return false, err
	}
	deleted, err := uc.Clients.Delete(ctx, id)
	if err != nil {
		return false, &TechnicalError{Code: CodeDatabase, Message: "failed to delete client", Err: err}
	}
	if deleted {
		uc.Logger.Info("cliente removido", "client_id", id, "crm_type", s.CRMType)
	}
	return deleted, nil
}

// ListCalls returns the session's calls, optionally narrowed to one lead or client.
func (uc *BrowseUseCase) ListCalls(ctx context.Context, s entity.Session, leadID, clientID string) ([]*entity.Call, error) {
	if err := requireCRM(s); err != nil {
		return nil, err
	}
	calls, err := uc.Calls.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list calls", Err: err}
	}

	out := make([]*entity.Call, 0, len(calls))
	for _, c := range Scope(s, calls) {
		if leadID != "" && c.LeadID != leadID {
			continue
		}
		if clientID != "" && c.ClientID != clientID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
