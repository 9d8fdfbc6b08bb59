package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xuri/excelize/v2"
)

const (
	LeadsSheet   = "Leads"
	ClientsSheet = "Clients"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02 15:04"
)

var leadHeader = []string{
	"ID", "Name", "Phone", "Email", "Address", "Source", "Status",
	"Assigned To", "Created At", "Last Contact", "Follow Up", "Notes",
}

var clientHeader = []string{
	"ID", "Name", "Company", "Phone", "Email", "Address", "Source", "Status",
	"Assigned To", "Value", "Lead ID", "Created At", "Last Contact",
}

// WriteLeads renders leads as a single-sheet workbook. Source and status
// columns carry the vocabulary labels.
func WriteLeads(w io.Writer, leads []*entity.Lead, vocab *entity.Vocabularies) error {
	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []any{
			l.ID, l.Name, l.Phone, l.Email, l.Address,
			vocab.Source.Label(l.Type), vocab.Status.Label(l.Status),
			l.AssignedTo, formatTime(l.CreatedAt), formatTime(l.LastContact),
			formatTimePtr(l.FollowUp), strings.Join(l.Notes, "\n"),
		})
	}
	return write(w, LeadsSheet, leadHeader, rows)
}

func WriteClients(w io.Writer, clients []*entity.Client, vocab *entity.Vocabularies) error {
	rows := make([][]any, 0, len(clients))
	for _, c := range clients {
		company := ""
		if c.Company != nil {
			company = *c.Company
		}
		rows = append(rows, []any{
			c.ID, c.Name, company, c.Phone, c.Email, c.Address,
			vocab.Source.Label(c.Type), vocab.Status.Label(c.Status),
			c.AssignedTo, c.Value, c.LeadID,
			formatTime(c.CreatedAt), formatTime(c.LastContact),
		})
	}
	return write(w, ClientsSheet, clientHeader, rows)
}

func write(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
