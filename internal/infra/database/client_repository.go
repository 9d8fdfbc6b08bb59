package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const clientColumns = contactColumns + ", company, value, lead_id"

type ClientRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewClientRepository(db *sql.DB, d Dialect) *ClientRepository {
	return &ClientRepository{DB: db, Dialect: d}
}

func (r *ClientRepository) List(ctx context.Context, crmType string) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE crm_type = ? ORDER BY created_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), crmType)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := []*entity.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
}

func (r *ClientRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE lead_id = ?`, leadID)
}

func (r *ClientRepository) findOne(ctx context.Context, query string, arg string) (*entity.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrClientNotFound
	}
	return c, err
}

// Create fails with AlreadyConvertedError when the source lead already has a
// client; lead_id is unique.
func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	args, err := contactArgs(c.Contact)
	if err != nil {
		return err
	}
	args = append(args, c.Company, c.Value, c.LeadID)

	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return &entity.AlreadyConvertedError{LeadID: c.LeadID}
		}
		return fmt.Errorf("insert client: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *entity.Client) error {
	args, err := mutableArgs(c.Contact)
	if err != nil {
		return err
	}
	args = append(args, c.Company, c.Value, c.ID, c.Version)

	query := `UPDATE clients SET ` + mutableSet + `, company = ?, value = ? WHERE id = ? AND version = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n == 0 {
		return lostUpdate(ctx, r.DB, r.Dialect, "clients", c.ID, entity.ErrClientNotFound)
	}
	c.Version++
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM clients WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	return n > 0, nil
}

func scanClient(s scanner) (*entity.Client, error) {
	var (
		row     contactRow
		company sql.NullString
		client  entity.Client
	)
	dest := append(row.dest(), &company, &client.Value, &client.LeadID)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	c, err := row.contact()
	if err != nil {
		return nil, fmt.Errorf("decode client %s: %w", row.c.ID, err)
	}
	client.Contact = c
	if company.Valid {
		client.Company = &company.String
	}
	return &client, nil
}
