package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const reportMonths = 6

type Bucket struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
}

type AgentPerformance struct {
	Agent       string `json:"agent"`
	Leads       int    `json:"leads"`
	Conversions int    `json:"conversions"`
	Calls       int    `json:"calls"`
	TalkTime    int    `json:"talkTime"` // seconds
}

type MonthlyActivity struct {
	Month       string `json:"month"` // YYYY-MM
	Leads       int    `json:"leads"`
	Calls       int    `json:"calls"`
	Conversions int    `json:"conversions"`
}

type Report struct {
	CRMType            string             `json:"crm_type"`
	GeneratedAt        time.Time          `json:"generatedAt"`
	TotalLeads         int                `json:"totalLeads"`
	OpenLeads          int                `json:"openLeads"`
	ConvertedLeads     int                `json:"convertedLeads"`
	TotalClients       int                `json:"totalClients"`
	TotalCalls         int                `json:"totalCalls"`
	ConversionRate     float64            `json:"conversionRate"` // percent, one decimal
	PipelineValue      float64            `json:"pipelineValue"`
	FollowUpsDue       int                `json:"followUpsDue"`
	StatusDistribution []Bucket           `json:"statusDistribution"`
	SourceDistribution []Bucket           `json:"sourceDistribution"`
	CallOutcomes       []Bucket           `json:"callOutcomes"`
	Agents             []AgentPerformance `json:"agents"`
	Monthly            []MonthlyActivity  `json:"monthly"`
}

// BuildReport aggregates only what belongs to the session's crm.
func BuildReport(s entity.Session, leads []*entity.Lead, clients []*entity.Client, calls []*entity.Call, vocab *entity.Vocabularies, now time.Time) Report {
	leads = Scope(s, leads)
	clients = Scope(s, clients)
	calls = Scope(s, calls)

	r := Report{
		CRMType:      s.CRMType,
		GeneratedAt:  now,
		TotalLeads:   len(leads),
		TotalClients: len(clients),
		TotalCalls:   len(calls),
	}

	statuses := make([]string, 0, len(leads))
	sources := make([]string, 0, len(leads))
	agents := map[string]*AgentPerformance{}
	agent := func(name string) *AgentPerformance {
		if name == "" {
			name = "unassigned"
		}
		a, ok := agents[name]
		if !ok {
			a = &AgentPerformance{Agent: name}
			agents[name] = a
		}
		return a
	}

	for _, l := range leads {
		statuses = append(statuses, l.Status)
		sources = append(sources, l.Type)
		if l.IsConverted() {
			r.ConvertedLeads++
		} else {
			r.OpenLeads++
			if l.FollowUpDue(now) {
				r.FollowUpsDue++
			}
		}
		agent(l.AssignedTo).Leads++
	}
	for _, c := range clients {
		r.PipelineValue += c.Value
		agent(c.AssignedTo).Conversions++
	}
	outcomes := make([]string, 0, len(calls))
	for _, c := range calls {
		outcomes = append(outcomes, c.Status)
		a := agent(c.EmployeeID)
		a.Calls++
		a.TalkTime += c.Duration
	}

	if r.TotalLeads > 0 {
		r.ConversionRate = math.Round(float64(r.ConvertedLeads)/float64(r.TotalLeads)*1000) / 10
	}

	r.StatusDistribution = distribution(vocab.Status, statuses)
	r.SourceDistribution = distribution(vocab.Source, sources)
	r.CallOutcomes = distribution(vocab.CallOutcome, outcomes)

	r.Agents = make([]AgentPerformance, 0, len(agents))
	for _, a := range agents {
		r.Agents = append(r.Agents, *a)
	}
	sort.Slice(r.Agents, func(i, j int) bool { return r.Agents[i].Agent < r.Agents[j].Agent })

	r.Monthly = monthly(leads, clients, calls, now)
	return r
}

// distribution counts values in vocabulary order, zero counts included.
// Values outside the vocabulary (legacy rows) are appended after it.
func distribution(v *entity.Vocabulary, values []string) []Bucket {
	counts := map[string]int{}
	for _, val := range values {
		counts[val]++
	}

	out := make([]Bucket, 0, len(counts))
	for _, opt := range v.Options() {
		out = append(out, Bucket{Value: opt.Value, Label: opt.Label, Category: opt.Category, Count: counts[opt.Value]})
		delete(counts, opt.Value)
	}

	extra := make([]string, 0, len(counts))
	for val := range counts {
		extra = append(extra, val)
	}
	sort.Strings(extra)
	for _, val := range extra {
		out = append(out, Bucket{Value: val, Label: val, Count: counts[val]})
	}
	return out
}

func monthly(leads []*entity.Lead, clients []*entity.Client, calls []*entity.Call, now time.Time) []MonthlyActivity {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(reportMonths - 1), 0)

	out := make([]MonthlyActivity, reportMonths)
	index := make(map[string]int, reportMonths)
	for i := range out {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = key
		index[key] = i
	}
	slot := func(t time.Time) *MonthlyActivity {
		if i, ok := index[t.UTC().Format("2006-01")]; ok {
			return &out[i]
		}
		return nil
	}

	for _, l := range leads {
		if m := slot(l.CreatedAt); m != nil {
			m.Leads++
		}
	}
	for _, c := range clients {
		if m := slot(c.CreatedAt); m != nil {
			m.Conversions++
		}
	}
	for _, c := range calls {
		if m := slot(c.Date); m != nil {
			m.Calls++
		}
	}
	return out
}

type ReportUseCase struct {
	Leads   LeadRepository
	Clients ClientRepository
	Calls   CallRepository
	Vocab   *entity.Vocabularies
	Clock   Clock
	Logger  *slog.Logger
}

func NewReportUseCase(leads LeadRepository, clients ClientRepository, calls CallRepository, vocab *entity.Vocabularies, logger *slog.Logger) *ReportUseCase {
	return &ReportUseCase{Leads: leads, Clients: clients, Calls: calls, Vocab: vocab, Logger: logger}
}

func (uc *ReportUseCase) Execute(ctx context.Context, s entity.Session) (*Report, error) {
	if err := requireCRM(s); err != nil {
		return nil, err
	}
	leads, err := uc.Leads.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list leads", Err: err}
	}
	clients, err := uc.Clients.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list clients", Err: err}
	}
	calls, err := uc.Calls.List(ctx, s.CRMType)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list calls", Err: err}
	}

	r := BuildReport(s, leads, clients, calls, uc.Vocab, uc.Clock.now())
	return &r, nil
}
