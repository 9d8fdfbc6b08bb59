package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xavierca1/ligue-crm/internal/app"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/export"
	"github.com/xavierca1/ligue-crm/internal/infra/seed"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func newMigrateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSQL(a); err != nil {
				return err
			}
			stores, err := app.OpenStores(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			version, err := database.SchemaVersion(cmd.Context(), stores.DB)
			if err != nil {
				return err
			}
			return writeOut(cmd, map[string]any{"driver": a.cfg.DatabaseDriver, "schemaVersion": version})
		},
	}
}

func newSeedCmd(a *App) *cobra.Command {
	var (
		crmType string
		count   int
		convert float64
		calls   int
		seedVal int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo leads, clients and calls for one crm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSQL(a); err != nil {
				return err
			}
			vocab, err := a.vocabularies()
			if err != nil {
				return err
			}
			stores, err := app.OpenStores(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			cfg := seed.DefaultConfig(crmType)
			cfg.Leads = count
			cfg.ConvertChance = convert
			cfg.CallsPerLead = calls
			cfg.Seed = seedVal

			res, err := seed.NewSeeder(stores.Leads, stores.Clients, stores.Calls, vocab, a.logger).Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeOut(cmd, res)
		},
	}
	cmd.Flags().StringVar(&crmType, "crm", "", "CRM vertical to seed (required)")
	cmd.Flags().IntVar(&count, "count", 25, "Number of leads")
	cmd.Flags().Float64Var(&convert, "convert", 0.2, "Probability a lead is converted")
	cmd.Flags().IntVar(&calls, "calls", 2, "Calls logged per lead")
	cmd.Flags().Int64Var(&seedVal, "seed", time.Now().UnixNano(), "Random seed")
	_ = cmd.MarkFlagRequired("crm")
	return cmd
}

func newTokenCmd(a *App) *cobra.Command {
	var (
		session entity.Session
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = a.cfg.TokenTTL()
			}
			token, err := auth.NewIssuer(a.cfg.JWTSecret, ttl).Issue(session)
			if err != nil {
				return err
			}
			return writeOut(cmd, map[string]any{
				"token":     token,
				"crm_type":  session.CRMType,
				"expiresIn": ttl.String(),
			})
		},
	}
	cmd.Flags().StringVar(&session.CRMType, "crm", "", "CRM vertical the token is scoped to (required)")
	cmd.Flags().StringVar(&session.AgentName, "agent", "", "Agent display name")
	cmd.Flags().StringVar(&session.UserID, "user", "", "User id (sub claim)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("crm")
	return cmd
}

func newExportCmd(a *App) *cobra.Command {
	var (
		crmType string
		kind    string
		text    string
		filters []string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered lead or client list of one crm to an XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSQL(a); err != nil {
				return err
			}
			vocab, err := a.vocabularies()
			if err != nil {
				return err
			}
			stores, err := app.OpenStores(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			browse := usecase.NewBrowseUseCase(stores.Leads, stores.Clients, stores.Calls, a.logger)
			s := entity.Session{UserID: "crmctl", AgentName: "crmctl", CRMType: crmType}

			var buf bytes.Buffer
			var rows int
			switch kind {
			case "leads":
				leads, err := browse.AllLeads(cmd.Context(), s, text, filters)
				if err != nil {
					return err
				}
				rows = len(leads)
				err = export.WriteLeads(&buf, leads, vocab)
				if err != nil {
					return err
				}
			case "clients":
				clients, err := browse.AllClients(cmd.Context(), s, text, filters)
				if err != nil {
					return err
				}
				rows = len(clients)
				if err := export.WriteClients(&buf, clients, vocab); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown kind %q (leads|clients)", kind)
			}

			if out == "" {
				out = fmt.Sprintf("%s-%s.xlsx", kind, crmType)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			return writeOut(cmd, map[string]any{"file": out, "rows": rows})
		},
	}
	cmd.Flags().StringVar(&crmType, "crm", "", "CRM vertical (required)")
	cmd.Flags().StringVar(&kind, "kind", "leads", "What to export (leads|clients)")
	cmd.Flags().StringVar(&text, "q", "", "Free-text search")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Status or source filter tokens")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default <kind>-<crm>.xlsx)")
	_ = cmd.MarkFlagRequired("crm")
	return cmd
}
