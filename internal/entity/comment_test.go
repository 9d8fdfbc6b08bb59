package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestNewComment(t *testing.T) {
	c, err := entity.NewComment("  hello  ", "", now)
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Content)
	assert.Equal(t, entity.DefaultAuthor, c.Author)
	assert.Equal(t, now, c.Date)
	assert.Regexp(t, `^comment-`, c.ID)

	_, err = entity.NewComment("\t\n ", "Ravi", now)
	assert.ErrorIs(t, err, entity.ErrEmptyComment)
}

func TestWithComment_UniqueIDs(t *testing.T) {
	lead, err := entity.NewLead(draft(), vocab(t), now)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c, err := entity.NewComment("note", "Ravi", now)
		require.NoError(t, err)
		lead = lead.WithComment(c)
	}
	for _, c := range lead.Comments {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestWithComment_CollidingIDIsReplaced(t *testing.T) {
	lead, err := entity.NewLead(draft(), vocab(t), now)
	require.NoError(t, err)

	c, err := entity.NewComment("first", "Ravi", now)
	require.NoError(t, err)
	lead = lead.WithComment(c)
	lead = lead.WithComment(c)

	require.Len(t, lead.Comments, 2)
	assert.NotEqual(t, lead.Comments[0].ID, lead.Comments[1].ID)
}
