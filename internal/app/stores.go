// Package app holds start-up wiring shared by the API and crmctl.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Stores struct {
	Leads   usecase.LeadRepository
	Clients usecase.ClientRepository
	Calls   usecase.CallRepository
	// DB is nil for the memory driver.
	DB *sql.DB
}

// OpenStores picks the persistence collaborator from DATABASE_DRIVER and,
// for SQL drivers, applies pending migrations.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.DatabaseDriver == "memory" {
		return &Stores{
			Leads:   memory.NewLeadRepository(),
			Clients: memory.NewClientRepository(),
			Calls:   memory.NewCallRepository(),
		}, nil
	}

	dialect, err := database.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Stores{
		Leads:   database.NewLeadRepository(db, dialect),
		Clients: database.NewClientRepository(db, dialect),
		Calls:   database.NewCallRepository(db, dialect),
		DB:      db,
	}, nil
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
