package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestAppendLeadComment_AppendsWithoutMutation(t *testing.T) {
	vocab := shortVocab(t)
	original := newLead(t, vocab, "alice", "gold")
	s := goldSession()

	first, err := usecase.AppendLeadComment(s, original, "  called, no answer  ", fixedNow)
	require.NoError(t, err)
	second, err := usecase.AppendLeadComment(s, first, "sent brochure", fixedNow)
	require.NoError(t, err)

	assert.Empty(t, original.Comments)
	require.Len(t, first.Comments, 1)
	require.Len(t, second.Comments, 2)
	assert.Equal(t, first.Comments[0], second.Comments[0], "prior comments are unchanged")

	c := second.Comments[1]
	assert.Equal(t, "sent brochure", c.Content)
	assert.Equal(t, "Priya", c.Author)
	assert.Equal(t, fixedNow, c.Date)
	assert.NotEqual(t, second.Comments[0].ID, c.ID)
	assert.Equal(t, "called, no answer", second.Comments[0].Content)
	assert.Equal(t, original.LastContact, second.LastContact, "comments do not count as contact")
}

func TestAppendLeadComment_FallbackAuthor(t *testing.T) {
	vocab := shortVocab(t)
	s := entity.Session{CRMType: "gold"}

	next, err := usecase.AppendLeadComment(s, newLead(t, vocab, "alice", "gold"), "hello", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultAuthor, next.Comments[0].Author)
}

func TestAppendLeadComment_Errors(t *testing.T) {
	vocab := shortVocab(t)

	_, err := usecase.AppendLeadComment(goldSession(), newLead(t, vocab, "alice", "gold"), " \n\t ", fixedNow)
	assert.ErrorIs(t, err, entity.ErrEmptyComment)

	_, err = usecase.AppendLeadComment(goldSession(), newLead(t, vocab, "bob", "jewels"), "hi", fixedNow)
	var tenantErr *entity.CrossTenantAccessError
	assert.ErrorAs(t, err, &tenantErr)
}

func TestAppendLeadComment_ConvertedLeadAccepts(t *testing.T) {
	vocab := shortVocab(t)
	converted := newLead(t, vocab, "alice", "gold").MarkConverted()

	next, err := usecase.AppendLeadComment(goldSession(), converted, "post-sale note", fixedNow)
	require.NoError(t, err)
	assert.Len(t, next.Comments, 1)
}

func TestAddCommentUseCase(t *testing.T) {
	ctx := context.Background()
	vocab := shortVocab(t)
	leads := memory.NewLeadRepository()
	clients := memory.NewClientRepository()
	uc := usecase.NewAddCommentUseCase(leads, clients, logger.Nop())
	uc.Clock = fixedClock()

	l := newLead(t, vocab, "alice", "gold")
	require.NoError(t, leads.Create(ctx, l))

	_, err := uc.OnLead(ctx, goldSession(), l.ID, usecase.AddCommentInput{Content: "first"})
	require.NoError(t, err)
	_, err = uc.OnLead(ctx, goldSession(), l.ID, usecase.AddCommentInput{Content: "second"})
	require.NoError(t, err)

	stored, err := leads.FindByID(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "first", stored.Comments[0].Content)
	assert.Equal(t, "second", stored.Comments[1].Content)

	_, client, err := usecase.ConvertLead(stored, usecase.ConversionOptions{}, vocab, fixedNow)
	require.NoError(t, err)
	require.NoError(t, clients.Create(ctx, client))

	updated, err := uc.OnClient(ctx, goldSession(), client.ID, usecase.AddCommentInput{Content: "third"})
	require.NoError(t, err)
	assert.Len(t, updated.Comments, 3)

	_, err = uc.OnClient(ctx, goldSession(), "missing", usecase.AddCommentInput{Content: "x"})
	assert.ErrorIs(t, err, entity.ErrClientNotFound)
}
