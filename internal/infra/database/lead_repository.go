package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewLeadRepository(db *sql.DB, d Dialect) *LeadRepository {
	return &LeadRepository{DB: db, Dialect: d}
}

func (r *LeadRepository) List(ctx context.Context, crmType string) ([]*entity.Lead, error) {
	query := `SELECT ` + contactColumns + ` FROM leads WHERE crm_type = ? ORDER BY created_at DESC, id`
	return r.query(ctx, query, crmType)
}

func (r *LeadRepository) ListFollowUpsDue(ctx context.Context, before time.Time) ([]*entity.Lead, error) {
	query := `SELECT ` + contactColumns + ` FROM leads
		WHERE status <> ? AND follow_up IS NOT NULL AND follow_up <= ?
		ORDER BY follow_up`
	return r.query(ctx, query, entity.StatusConverted, formatTime(before))
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + contactColumns + ` FROM leads WHERE id = ?`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args, err := contactArgs(lead.Contact)
	if err != nil {
		return err
	}
	query := `INSERT INTO leads (` + contactColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateID
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	if lead.Version == 0 {
		lead.Version = 1
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args, err := mutableArgs(lead.Contact)
	if err != nil {
		return err
	}
	query := `UPDATE leads SET ` + mutableSet + ` WHERE id = ? AND version = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), append(args, lead.ID, lead.Version)...)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if n == 0 {
		return lostUpdate(ctx, r.DB, r.Dialect, "leads", lead.ID, entity.ErrLeadNotFound)
	}
	lead.Version++
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM leads WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete lead: %w", err)
	}
	return n > 0, nil
}

func scanLead(s scanner) (*entity.Lead, error) {
	var row contactRow
	if err := s.Scan(row.dest()...); err != nil {
		return nil, err
	}
	c, err := row.contact()
	if err != nil {
		return nil, fmt.Errorf("decode lead %s: %w", row.c.ID, err)
	}
	return &entity.Lead{Contact: c}, nil
}
