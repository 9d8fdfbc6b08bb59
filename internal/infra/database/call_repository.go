package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const callColumns = "id, lead_id, client_id, employee_id, crm_type, date, duration, status, notes"

type CallRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewCallRepository(db *sql.DB, d Dialect) *CallRepository {
	return &CallRepository{DB: db, Dialect: d}
}

func (r *CallRepository) List(ctx context.Context, crmType string) ([]*entity.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE crm_type = ? ORDER BY date DESC, id`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), crmType)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []*entity.Call{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (r *CallRepository) FindByID(ctx context.Context, id string) (*entity.Call, error) {
	c, err := scanCall(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT `+callColumns+` FROM calls WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCallNotFound
	}
	return c, err
}

func (r *CallRepository) Create(ctx context.Context, c *entity.Call) error {
	query := `INSERT INTO calls (` + callColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		c.ID,
		nullString(c.LeadID),
		nullString(c.ClientID),
		c.EmployeeID,
		c.CRMType,
		formatTime(c.Date),
		c.Duration,
		c.Status,
		c.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateID
		}
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *CallRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM calls WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete call: %w", err)
	}
	return n > 0, nil
}

func scanCall(s scanner) (*entity.Call, error) {
	var (
		c                entity.Call
		leadID, clientID sql.NullString
		date             string
	)
	if err := s.Scan(&c.ID, &leadID, &clientID, &c.EmployeeID, &c.CRMType, &date, &c.Duration, &c.Status, &c.Notes); err != nil {
		return nil, err
	}
	t, err := parseTime(date)
	if err != nil {
		return nil, fmt.Errorf("decode call %s: %w", c.ID, err)
	}
	c.Date = t
	c.LeadID = leadID.String
	c.ClientID = clientID.String
	return &c, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
