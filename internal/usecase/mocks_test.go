package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() usecase.Clock {
	return func() time.Time { return fixedNow }
}

func shortVocab(t *testing.T) *entity.Vocabularies {
	t.Helper()
	v, err := entity.PresetVocabularies("short")
	require.NoError(t, err)
	return v
}

func goldSession() entity.Session {
	return entity.Session{UserID: "u-1", AgentName: "Priya", CRMType: "gold"}
}

func newLead(t *testing.T, vocab *entity.Vocabularies, name, crm string) *entity.Lead {
	t.Helper()
	lead, err := entity.NewLead(entity.LeadDraft{
		Name:       name,
		Phone:      "555-0100",
		Email:      name + "@example.com",
		Address:    "1 Main St",
		Type:       "individual",
		AssignedTo: "Priya",
		CRMType:    crm,
		Notes:      []string{"met at fair"},
	}, vocab, fixedNow.Add(-48*time.Hour))
	require.NoError(t, err)
	return lead
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) List(ctx context.Context, crmType string) ([]*entity.Lead, error) {
	args := m.Called(ctx, crmType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) ListFollowUpsDue(ctx context.Context, before time.Time) ([]*entity.Lead, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) List(ctx context.Context, crmType string) ([]*entity.Client, error) {
	args := m.Called(ctx, crmType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Client), args.Error(1)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.Client, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, client *entity.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *entity.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadConverted(ctx context.Context, event usecase.LeadConvertedEvent) error {
	return m.Called(ctx, event).Error(0)
}

// MockGuard
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Acquire(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyConversion(ctx context.Context, event usecase.LeadConvertedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotifier) NotifyFollowUps(ctx context.Context, crmType string, leads []*entity.Lead) error {
	return m.Called(ctx, crmType, leads).Error(0)
}
