package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"modernc.org/sqlite"
)

// Fixed-width so that text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const contactColumns = "id, name, phone, email, address, type, status, assigned_to, crm_type, created_at, last_contact, follow_up, notes, comments, version"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// rows written by hand or by older tooling
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t, err
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

// contactRow is the scan target for the shared contact columns.
type contactRow struct {
	c        entity.Contact
	created  string
	last     string
	followUp sql.NullString
	notes    string
	comments string
}

func (r *contactRow) dest() []any {
	return []any{
		&r.c.ID, &r.c.Name, &r.c.Phone, &r.c.Email, &r.c.Address, &r.c.Type,
		&r.c.Status, &r.c.AssignedTo, &r.c.CRMType,
		&r.created, &r.last, &r.followUp, &r.notes, &r.comments, &r.c.Version,
	}
}

func (r *contactRow) contact() (entity.Contact, error) {
	var err error
	c := r.c
	if c.CreatedAt, err = parseTime(r.created); err != nil {
		return c, fmt.Errorf("created_at: %w", err)
	}
	if c.LastContact, err = parseTime(r.last); err != nil {
		return c, fmt.Errorf("last_contact: %w", err)
	}
	if r.followUp.Valid {
		f, err := parseTime(r.followUp.String)
		if err != nil {
			return c, fmt.Errorf("follow_up: %w", err)
		}
		c.FollowUp = &f
	}
	c.Notes = []string{}
	if err := json.Unmarshal([]byte(r.notes), &c.Notes); err != nil {
		return c, fmt.Errorf("notes: %w", err)
	}
	c.Comments = []entity.Comment{}
	if err := json.Unmarshal([]byte(r.comments), &c.Comments); err != nil {
		return c, fmt.Errorf("comments: %w", err)
	}
	if c.Notes == nil {
		c.Notes = []string{}
	}
	if c.Comments == nil {
		c.Comments = []entity.Comment{}
	}
	return c, nil
}

// contactArgs follows the order of contactColumns.
func contactArgs(c entity.Contact) ([]any, error) {
	notes, comments, err := encodeThreads(c)
	if err != nil {
		return nil, err
	}
	version := c.Version
	if version == 0 {
		version = 1
	}
	return []any{
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Type, c.Status, c.AssignedTo, c.CRMType,
		formatTime(c.CreatedAt), formatTime(c.LastContact), nullTime(c.FollowUp), notes, comments, version,
	}, nil
}

// mutableSet is the SET list of an update: everything but id, crm_type and created_at.
// It also bumps the version; the WHERE clause must pin the expected one.
const mutableSet = "name = ?, phone = ?, email = ?, address = ?, type = ?, status = ?, assigned_to = ?, last_contact = ?, follow_up = ?, notes = ?, comments = ?, version = version + 1"

func mutableArgs(c entity.Contact) ([]any, error) {
	notes, comments, err := encodeThreads(c)
	if err != nil {
		return nil, err
	}
	return []any{
		c.Name, c.Phone, c.Email, c.Address, c.Type, c.Status, c.AssignedTo,
		formatTime(c.LastContact), nullTime(c.FollowUp), notes, comments,
	}, nil
}

// lostUpdate tells a stale version apart from a missing row after an
// update matched nothing.
func lostUpdate(ctx context.Context, db *sql.DB, d Dialect, table, id string, notFound error) error {
	var n int
	if err := db.QueryRowContext(ctx, d.Rebind("SELECT COUNT(*) FROM "+table+" WHERE id = ?"), id).Scan(&n); err != nil {
		return fmt.Errorf("check %s %s: %w", table, id, err)
	}
	if n == 0 {
		return notFound
	}
	return entity.ErrVersionConflict
}

func encodeThreads(c entity.Contact) (string, string, error) {
	notes := c.Notes
	if notes == nil {
		notes = []string{}
	}
	comments := c.Comments
	if comments == nil {
		comments = []entity.Comment{}
	}
	n, err := json.Marshal(notes)
	if err != nil {
		return "", "", fmt.Errorf("encode notes: %w", err)
	}
	cm, err := json.Marshal(comments)
	if err != nil {
		return "", "", fmt.Errorf("encode comments: %w", err)
	}
	return string(n), string(cm), nil
}

// sqlite result codes
const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		case sqliteConstraint:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
