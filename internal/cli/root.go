package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

type App struct {
	Driver      string
	DatabaseURL string
	Vocabulary  string

	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "crmctl",
		Short:        "Operator tooling for the CRM API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Apply schema migrations
  crmctl migrate --driver sqlite --database-url ./crm.db

  # Issue a bearer token for an agent
  crmctl token --crm gold --agent Priya --user u-1

  # Export the gold pipeline
  crmctl export --crm gold --out leads.xlsx
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.cfg = config.Load()
		if app.Driver != "" {
			app.cfg.DatabaseDriver = strings.ToLower(app.Driver)
		}
		if app.DatabaseURL != "" {
			app.cfg.DatabaseURL = app.DatabaseURL
		}
		if app.Vocabulary != "" {
			app.cfg.Vocabulary = app.Vocabulary
			app.cfg.VocabularyFile = ""
		}
		app.logger = logger.NewWithWriter(cmd.ErrOrStderr(), app.cfg.LogLevel, "text")
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Driver, "driver", "", "Database driver (memory|sqlite|postgres); overrides DATABASE_DRIVER")
	cmd.PersistentFlags().StringVar(&app.DatabaseURL, "database-url", "", "Database DSN; overrides DATABASE_URL")
	cmd.PersistentFlags().StringVar(&app.Vocabulary, "vocabulary", "", "Vocabulary preset (short|long); overrides CRM_VOCABULARY")

	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newTokenCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func (app *App) vocabularies() (*entity.Vocabularies, error) {
	return app.cfg.Vocabularies()
}

func writeOut(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func requireSQL(app *App) error {
	if app.cfg.DatabaseDriver == "memory" {
		return fmt.Errorf("this command needs a persistent store: set --driver sqlite|postgres")
	}
	return app.cfg.Validate()
}
