package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/cubist-dev/cubist/internal/cli"
	"github.com/cubist-dev/cubist/pkg/browser"
	"github.com/cubist-dev/cubist/pkg/compiler"
	"github.com/cubist-dev/cubist/pkg/model"
	"github.com/cubist-dev/cubist/pkg/parser"
)

var (
	sqlModel      string
	sqlCube       string
	sqlAggregates []string
	sqlGroupBy    []string
	sqlCuts       []string
	sqlDB         string
	sqlRun        bool
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Compile an aggregation request to SQL",
	Long: `Compile an aggregation request against a cube into a SQL SELECT
statement. With --run, connect to the database and execute it, printing
the result rows.

Column references use table.column form, where the table is the cube's
fact table or a join's effective name.`,
	Example: `  # Print SQL for the full aggregate plan
  cubist sql --cube sales

  # Drill down and cut
  cubist sql --cube sales --aggregate amount_sum \
    --group dim_date.year --cut dim_city.name=Berlin

  # Execute against the configured database
  cubist sql --cube sales --group dim_date.year --run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := resolveString(sqlModel, cfg.Model)
		cubeName := resolveString(sqlCube, cfg.SQL.Cube)
		if cubeName == "" {
			return cli.GeneralError("no cube specified (use --cube or sql.cube in config)", nil)
		}

		m, err := parser.LoadModel(modelPath, model.BuildOptions{Lenient: cfg.Lenient})
		if err != nil && m == nil {
			return cli.ModelError("building model", err)
		}

		c, err := m.Cube(cubeName)
		if err != nil {
			return cli.ModelError(fmt.Sprintf("cube %q", cubeName), err)
		}

		req, err := buildRequest()
		if err != nil {
			return cli.GeneralError("building request", err)
		}

		if !sqlRun {
			stmt, err := compiler.Compile(c, req)
			if err != nil {
				return cli.GeneralError("compiling request", err)
			}
			fmt.Println(stmt.SQL)
			if len(stmt.Args) > 0 && !quiet {
				fmt.Printf("-- args: %v\n", stmt.Args)
			}
			return nil
		}

		return runAggregate(cmd.Context(), c, req)
	},
}

func init() {
	f := sqlCmd.Flags()
	f.StringVar(&sqlModel, "model", "", "path to model document")
	f.StringVar(&sqlCube, "cube", "", "cube to query")
	f.StringSliceVar(&sqlAggregates, "aggregate", nil, "aggregate names (default: whole plan)")
	f.StringSliceVar(&sqlGroupBy, "group", nil, "drilldown columns (table.column)")
	f.StringSliceVar(&sqlCuts, "cut", nil, "equality cuts (table.column=value)")
	f.StringVar(&sqlDB, "db", "", "database URL")
	f.BoolVar(&sqlRun, "run", false, "execute the statement against the database")
}

func buildRequest() (compiler.Request, error) {
	req := compiler.Request{Aggregates: sqlAggregates}

	for _, ref := range sqlGroupBy {
		table, column, err := model.SplitRef(ref)
		if err != nil {
			return compiler.Request{}, err
		}
		req.GroupBy = append(req.GroupBy, compiler.ColumnRef{Table: table, Column: column})
	}

	for _, cut := range sqlCuts {
		ref, value, ok := strings.Cut(cut, "=")
		if !ok {
			return compiler.Request{}, fmt.Errorf("cut %q: expected table.column=value", cut)
		}
		table, column, err := model.SplitRef(ref)
		if err != nil {
			return compiler.Request{}, err
		}
		req.Cuts = append(req.Cuts, compiler.Condition{
			Column: compiler.ColumnRef{Table: table, Column: column},
			Value:  value,
		})
	}

	return req, nil
}

func runAggregate(ctx context.Context, c *model.Cube, req compiler.Request) error {
	dsn := resolveString(sqlDB, cfg.Database.URL)
	if dsn == "" {
		return cli.DBConnectError("no database URL configured (use --db, CUBIST_DATABASE_URL, or config)", nil)
	}

	slog.Debug("connecting to database", "cube", c.Name())
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	b := browser.New(conn, browser.WithCache(browser.NewMemoryCache()))
	res, err := b.Aggregate(ctx, c, req)
	if err != nil {
		return cli.GeneralError("executing aggregation", err)
	}

	printResult(res)
	return nil
}

func printResult(res *browser.AggregationResult) {
	w := tabwriter.NewWriter(rootCmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}
