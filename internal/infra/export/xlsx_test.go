package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xuri/excelize/v2"
)

func shortVocab(t *testing.T) *entity.Vocabularies {
	t.Helper()
	v, err := entity.PresetVocabularies("short")
	require.NoError(t, err)
	return v
}

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteLeads(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	follow := created.Add(48 * time.Hour)
	leads := []*entity.Lead{
		{Contact: entity.Contact{
			ID: "lead-1", Name: "Ana Souza", Phone: "555-0100", Email: "ana@example.com",
			Address: "Rua A, 1", Type: "website", Status: "pending", AssignedTo: "Priya",
			CreatedAt: created, LastContact: created, FollowUp: &follow,
			Notes: []string{"first", "second"},
		}},
		{Contact: entity.Contact{ID: "lead-2", Name: "Bruno", Type: "mystery", Status: "answered"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeads(&buf, leads, shortVocab(t)))

	rows := readRows(t, &buf, LeadsSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, leadHeader, rows[0])

	assert.Equal(t, "lead-1", rows[1][0])
	assert.Equal(t, "Pending", rows[1][6])
	assert.Equal(t, "2026-02-01 09:30", rows[1][8])
	assert.Equal(t, "2026-02-03 09:30", rows[1][10])
	assert.Equal(t, "first\nsecond", rows[1][11])

	// unknown source values fall back to the raw value
	assert.Equal(t, "mystery", rows[2][5])
	assert.Equal(t, "Answered", rows[2][6])
}

func TestWriteLeads_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeads(&buf, nil, shortVocab(t)))

	rows := readRows(t, &buf, LeadsSheet)
	require.Len(t, rows, 1)
	assert.Equal(t, leadHeader, rows[0])
}

func TestWriteClients(t *testing.T) {
	company := "Acme"
	clients := []*entity.Client{
		{
			Contact: entity.Contact{ID: "client-1", Name: "Ana Souza", Status: entity.StatusConverted},
			Company: &company,
			Value:   2500.5,
			LeadID:  "lead-1",
		},
		{Contact: entity.Contact{ID: "client-2", Name: "Bruno"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteClients(&buf, clients, shortVocab(t)))

	rows := readRows(t, &buf, ClientsSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, clientHeader, rows[0])
	assert.Equal(t, "Acme", rows[1][2])
	assert.Equal(t, "2500.5", rows[1][9])
	assert.Equal(t, "lead-1", rows[1][10])
	assert.Equal(t, "", rows[2][2])
}
