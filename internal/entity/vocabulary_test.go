package entity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestPresetVocabularies(t *testing.T) {
	short, err := entity.PresetVocabularies("short")
	require.NoError(t, err)
	assert.Equal(t, []string{"answered", "busy", "not-interested", "call-later", "pending", "converted"}, short.Status.Values())
	assert.Equal(t, "pending", short.Initial)

	long, err := entity.PresetVocabularies("long")
	require.NoError(t, err)
	assert.Len(t, long.Status.Values(), 16)
	assert.Len(t, long.Source.Values(), 7)
	assert.True(t, long.Status.Contains("interested & add me"))
	assert.False(t, short.Status.Contains("interested & add me"), "presets are not merged")

	_, err = entity.PresetVocabularies("medium")
	assert.Error(t, err)
}

func TestVocabulary_Validate(t *testing.T) {
	v, err := entity.PresetVocabularies("short")
	require.NoError(t, err)

	assert.NoError(t, v.Status.Validate("busy"))

	err = v.Status.Validate("Busy")
	var enumErr *entity.InvalidEnumValueError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "status", enumErr.Field)
	assert.Equal(t, "Busy", enumErr.Value)
	assert.Contains(t, enumErr.Allowed, "busy")

	assert.Equal(t, "Call Later", v.Status.Label("call-later"))
	assert.Equal(t, "terminal", v.Status.Category(entity.StatusConverted))
}

func TestNewVocabulary_Rejects(t *testing.T) {
	_, err := entity.NewVocabulary("status", []entity.Option{{Value: "a"}, {Value: "a"}})
	assert.Error(t, err)

	_, err = entity.NewVocabulary("status", []entity.Option{{Value: ""}})
	assert.Error(t, err)

	v, err := entity.NewVocabulary("type", []entity.Option{{Value: "walk-in"}})
	require.NoError(t, err)
	assert.Equal(t, "walk-in", v.Label("walk-in"), "label defaults to value")
}

func TestBuildVocabularies_RequiresConverted(t *testing.T) {
	_, err := entity.BuildVocabularies(entity.VocabularySpec{
		Name:    "broken",
		Initial: "new",
		Status:  []entity.Option{{Value: "new"}},
		Source:  []entity.Option{{Value: "web"}},
	})
	assert.Error(t, err)

	_, err = entity.BuildVocabularies(entity.VocabularySpec{
		Name:    "terminal-initial",
		Initial: entity.StatusConverted,
		Status:  []entity.Option{{Value: "new"}, {Value: entity.StatusConverted}},
		Source:  []entity.Option{{Value: "web"}},
	})
	assert.Error(t, err)
}

func TestLoadVocabularies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	raw := `{
		"name": "bullion",
		"initial": "new",
		"status": [{"value": "new", "label": "New"}, {"value": "converted", "label": "Won"}],
		"source": [{"value": "walk-in"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	v, err := entity.LoadVocabularies(path)
	require.NoError(t, err)
	assert.Equal(t, "bullion", v.Name)
	assert.Equal(t, "Won", v.Status.Label("converted"))
	assert.True(t, v.CallOutcome.Contains("completed"), "default call outcomes")

	_, err = entity.LoadVocabularies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
