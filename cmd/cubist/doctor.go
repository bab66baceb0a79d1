package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/cubist-dev/cubist/internal/cli"
	"github.com/cubist-dev/cubist/internal/doctor"
	"github.com/cubist-dev/cubist/pkg/browser"
)

var (
	doctorModel   string
	doctorDB      string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long: `Run health checks on a model and its backing store: the document
parses, every cube builds, and the referenced fact and dimension tables
exist in the database when one is configured.`,
	Example: `  # Check the model only
  cubist doctor

  # Check model and database tables
  cubist doctor --db postgres://localhost/warehouse

  # Run with verbose output
  cubist doctor --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := resolveString(doctorModel, cfg.Model)
		return runDoctor(cmd.Context(), modelPath, resolveString(doctorDB, cfg.Database.URL))
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorModel, "model", "", "path to model document")
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}

func runDoctor(ctx context.Context, modelPath, dsn string) error {
	var db browser.Querier
	if dsn != "" {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = conn.Close(ctx) }()
		db = conn
	}

	if !quiet {
		fmt.Println("cubist doctor - Health Check")
	}

	d := doctor.New(modelPath, db)
	report, err := d.Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(os.Stdout, doctorVerbose)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}

	return nil
}
