package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type callFixture struct {
	uc      *usecase.LogCallUseCase
	calls   *memory.CallRepository
	leads   *memory.LeadRepository
	clients *memory.ClientRepository
}

func newCallFixture(t *testing.T) callFixture {
	t.Helper()
	f := callFixture{
		calls:   memory.NewCallRepository(),
		leads:   memory.NewLeadRepository(),
		clients: memory.NewClientRepository(),
	}
	f.uc = usecase.NewLogCallUseCase(f.calls, f.leads, f.clients, shortVocab(t), logger.Nop())
	f.uc.Clock = fixedClock()
	return f
}

func TestLogCallUseCase_Lead(t *testing.T) {
	ctx := context.Background()
	f := newCallFixture(t)
	l := newLead(t, f.uc.Vocab, "alice", "gold")
	require.NoError(t, f.leads.Create(ctx, l))

	call, err := f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{
		LeadID:     l.ID,
		EmployeeID: "emp-7",
		Duration:   180,
		Status:     "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, call.Date)
	assert.Equal(t, "gold", call.CRMType)

	stored, err := f.leads.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, stored.LastContact)

	// a backdated call does not move lastContact backwards
	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{
		LeadID:     l.ID,
		EmployeeID: "emp-7",
		Date:       fixedNow.Add(-72 * time.Hour),
		Status:     "missed",
	})
	require.NoError(t, err)
	stored, _ = f.leads.FindByID(ctx, l.ID)
	assert.Equal(t, fixedNow, stored.LastContact)

	all, err := f.calls.List(ctx, "gold")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLogCallUseCase_Client(t *testing.T) {
	ctx := context.Background()
	f := newCallFixture(t)
	_, client, err := usecase.ConvertLead(newLead(t, f.uc.Vocab, "alice", "gold"), usecase.ConversionOptions{}, f.uc.Vocab, fixedNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.clients.Create(ctx, client))

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{ClientID: client.ID, EmployeeID: "emp-1", Status: "busy"})
	require.NoError(t, err)

	stored, _ := f.clients.FindByID(ctx, client.ID)
	assert.Equal(t, fixedNow, stored.LastContact)
}

func TestLogCallUseCase_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newCallFixture(t)
	converted := newLead(t, f.uc.Vocab, "carol", "gold").MarkConverted()
	other := newLead(t, f.uc.Vocab, "bob", "jewels")
	require.NoError(t, f.leads.Create(ctx, converted))
	require.NoError(t, f.leads.Create(ctx, other))

	_, err := f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{EmployeeID: "e", Status: "completed"})
	var vErr *entity.ValidationError
	assert.ErrorAs(t, err, &vErr, "needs a lead or a client")

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: "a", ClientID: "b", EmployeeID: "e", Status: "completed"})
	assert.ErrorAs(t, err, &vErr, "not both")

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: other.ID, EmployeeID: "e", Status: "voicemail"})
	var enumErr *entity.InvalidEnumValueError
	assert.ErrorAs(t, err, &enumErr)

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: converted.ID, EmployeeID: "e", Status: "completed"})
	var convErr *entity.AlreadyConvertedError
	assert.ErrorAs(t, err, &convErr)

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: other.ID, EmployeeID: "e", Status: "completed"})
	var tenantErr *entity.CrossTenantAccessError
	assert.ErrorAs(t, err, &tenantErr)

	_, err = f.uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: "missing", EmployeeID: "e", Status: "completed"})
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	all, _ := f.calls.List(ctx, "gold")
	assert.Empty(t, all)
}

func TestLogCallUseCase_RollsBackCallWhenTouchFails(t *testing.T) {
	ctx := context.Background()
	vocab := shortVocab(t)
	l := newLead(t, vocab, "alice", "gold")

	leads := new(MockLeadRepository)
	leads.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	leads.On("Update", mock.Anything, mock.Anything).Return(errors.New("deadlock"))
	calls := memory.NewCallRepository()

	uc := usecase.NewLogCallUseCase(calls, leads, new(MockClientRepository), vocab, logger.Nop())
	_, err := uc.Execute(ctx, goldSession(), usecase.LogCallInput{LeadID: l.ID, EmployeeID: "e", Status: "completed"})
	require.Error(t, err)

	all, _ := calls.List(ctx, "gold")
	assert.Empty(t, all)
}
