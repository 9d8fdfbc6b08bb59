package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// Config controls how much demo data is generated per crm.
type Config struct {
	CRMType string
	Leads   int
	// ConvertChance is the probability (0.0-1.0) that a lead becomes a client.
	ConvertChance  float64
	FollowUpChance float64
	CallsPerLead   int
	Seed           int64
}

func DefaultConfig(crmType string) Config {
	return Config{
		CRMType:        crmType,
		Leads:          25,
		ConvertChance:  0.2,
		FollowUpChance: 0.3,
		CallsPerLead:   2,
	}
}

type Result struct {
	Leads   int `json:"leads"`
	Clients int `json:"clients"`
	Calls   int `json:"calls"`
}

var agents = []string{"Priya", "Ravi", "Marta", "João", "Aisha"}

// Seeder writes fake leads, clients and calls through the repositories so
// every record passes the same invariants as user input.
type Seeder struct {
	Leads   usecase.LeadRepository
	Clients usecase.ClientRepository
	Calls   usecase.CallRepository
	Vocab   *entity.Vocabularies
	Clock   usecase.Clock
	Logger  *slog.Logger
}

func NewSeeder(leads usecase.LeadRepository, clients usecase.ClientRepository, calls usecase.CallRepository, vocab *entity.Vocabularies, logger *slog.Logger) *Seeder {
	return &Seeder{Leads: leads, Clients: clients, Calls: calls, Vocab: vocab, Logger: logger}
}

func (s *Seeder) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.CRMType == "" {
		return nil, fmt.Errorf("seed: crm type is required")
	}
	faker := gofakeit.New(cfg.Seed)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock()
	}

	openStatuses := make([]string, 0)
	for _, v := range s.Vocab.Status.Values() {
		if v != entity.StatusConverted {
			openStatuses = append(openStatuses, v)
		}
	}
	sources := s.Vocab.Source.Values()
	outcomes := s.Vocab.CallOutcome.Values()

	res := &Result{}
	for i := 0; i < cfg.Leads; i++ {
		created := now.Add(-time.Duration(faker.Number(1, 180*24)) * time.Hour)
		draft := entity.LeadDraft{
			Name:       faker.Name(),
			Phone:      faker.Phone(),
			Email:      faker.Email(),
			Address:    fmt.Sprintf("%s, %s", faker.Street(), faker.City()),
			Type:       faker.RandomString(sources),
			Status:     faker.RandomString(openStatuses),
			AssignedTo: faker.RandomString(agents),
			CRMType:    cfg.CRMType,
		}
		if faker.Float64Range(0, 1) < cfg.FollowUpChance {
			f := now.Add(time.Duration(faker.Number(-72, 72)) * time.Hour)
			draft.FollowUp = &f
		}
		if faker.Bool() {
			draft.Notes = []string{faker.Sentence(8)}
		}

		lead, err := entity.NewLead(draft, s.Vocab, created)
		if err != nil {
			return res, fmt.Errorf("seed lead %d: %w", i, err)
		}
		if faker.Bool() {
			c, err := entity.NewComment(faker.Sentence(12), draft.AssignedTo, created.Add(time.Hour))
			if err != nil {
				return res, err
			}
			lead = lead.WithComment(c)
		}

		calls := make([]*entity.Call, 0, cfg.CallsPerLead)
		for j := 0; j < cfg.CallsPerLead; j++ {
			call, err := entity.NewCall(entity.CallDraft{
				LeadID:     lead.ID,
				EmployeeID: draft.AssignedTo,
				CRMType:    cfg.CRMType,
				Date:       created.Add(time.Duration(faker.Number(1, 72)) * time.Hour),
				Duration:   faker.Number(0, 900),
				Status:     faker.RandomString(outcomes),
			}, s.Vocab, now)
			if err != nil {
				return res, fmt.Errorf("seed call: %w", err)
			}
			if lead, err = lead.WithContactAt(call.Date); err != nil {
				return res, err
			}
			calls = append(calls, call)
		}

		converted := faker.Float64Range(0, 1) < cfg.ConvertChance
		var client *entity.Client
		if converted {
			company := faker.Company()
			value := float64(faker.Number(100, 20000))
			lead, client, err = usecase.ConvertLead(lead, usecase.ConversionOptions{Company: &company, Value: &value}, s.Vocab, lead.LastContact)
			if err != nil {
				return res, fmt.Errorf("seed conversion: %w", err)
			}
		}

		if err := s.Leads.Create(ctx, lead); err != nil {
			return res, fmt.Errorf("seed lead: %w", err)
		}
		res.Leads++
		if client != nil {
			if err := s.Clients.Create(ctx, client); err != nil {
				return res, fmt.Errorf("seed client: %w", err)
			}
			res.Clients++
		}
		for _, call := range calls {
			if err := s.Calls.Create(ctx, call); err != nil {
				return res, fmt.Errorf("seed call: %w", err)
			}
			res.Calls++
		}
	}

	s.Logger.Info("dados de demonstração gerados", "crm_type", cfg.CRMType,
		"leads", res.Leads, "clients", res.Clients, "calls", res.Calls)
	return res, nil
}
