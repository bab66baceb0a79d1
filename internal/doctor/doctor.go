// Package doctor provides health checks for a cubist deployment.
//
// The doctor command validates that a model is usable end to end by
// checking the model document, the built model, and, when a database is
// available, the physical tables the model's cubes reference.
//
// Example usage:
//
//	d := doctor.New(modelPath, db)
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cubist-dev/cubist/pkg/browser"
	"github.com/cubist-dev/cubist/pkg/model"
	"github.com/cubist-dev/cubist/pkg/parser"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "model", "cubes", "database").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	// Group checks by category
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on a cubist model and its backing store.
type Doctor struct {
	modelPath string
	db        browser.Querier // nil skips database checks

	// Cached data from checks (populated during Run)
	doc   *model.Document
	model *model.Model
}

// New creates a new Doctor instance. db may be nil; database checks are
// then skipped with a warning.
func New(modelPath string, db browser.Querier) *Doctor {
	return &Doctor{
		modelPath: modelPath,
		db:        db,
	}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkModelFile(report)
	d.checkModelBuild(report)
	d.checkJoinPlans(report)
	if err := d.checkPhysicalTables(ctx, report); err != nil {
		return nil, fmt.Errorf("checking physical tables: %w", err)
	}

	return report, nil
}

func (d *Doctor) checkModelFile(report *Report) {
	if _, err := os.Stat(d.modelPath); err != nil {
		report.AddCheck(CheckResult{
			Category: "model",
			Name:     "file",
			Status:   StatusFail,
			Message:  fmt.Sprintf("model document not found: %s", d.modelPath),
			FixHint:  "set model in cubist.yaml or pass --model",
		})
		return
	}

	doc, err := parser.ParseFile(d.modelPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "model",
			Name:     "parse",
			Status:   StatusFail,
			Message:  "model document does not parse",
			Details:  err.Error(),
		})
		return
	}
	d.doc = &doc

	report.AddCheck(CheckResult{
		Category: "model",
		Name:     "file",
		Status:   StatusPass,
		Message:  fmt.Sprintf("model document parsed (%d cubes, %d dimensions)", len(doc.Cubes), len(doc.Dimensions)),
	})
}

func (d *Doctor) checkModelBuild(report *Report) {
	if d.doc == nil {
		return
	}

	// Lenient build surfaces every bad cube instead of only the first.
	m, err := model.BuildModel(*d.doc, model.BuildOptions{Lenient: true})
	if m == nil {
		report.AddCheck(CheckResult{
			Category: "model",
			Name:     "build",
			Status:   StatusFail,
			Message:  "dimension registry failed to build",
			Details:  err.Error(),
		})
		return
	}
	d.model = m

	if err != nil {
		report.AddCheck(CheckResult{
			Category: "model",
			Name:     "build",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d of %d cubes failed to build", len(d.doc.Cubes)-len(m.CubeNames()), len(d.doc.Cubes)),
			Details:  err.Error(),
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: "model",
		Name:     "build",
		Status:   StatusPass,
		Message:  fmt.Sprintf("all %d cubes build", len(m.CubeNames())),
	})
}

func (d *Doctor) checkJoinPlans(report *Report) {
	if d.model == nil {
		return
	}

	for _, name := range d.model.CubeNames() {
		c, err := d.model.Cube(name)
		if err != nil {
			continue
		}
		if len(c.Dimensions()) > 0 && len(c.Joins()) == 0 {
			report.AddCheck(CheckResult{
				Category: "cubes",
				Name:     "joins",
				Status:   StatusWarn,
				Message:  fmt.Sprintf("cube %q references dimensions but declares no joins", name),
				FixHint:  "declare joins so drilldowns can reach the dimension tables",
			})
			continue
		}
		report.AddCheck(CheckResult{
			Category: "cubes",
			Name:     "joins",
			Status:   StatusPass,
			Message:  fmt.Sprintf("cube %q: %d joins, %d aggregates", name, len(c.Joins()), len(c.Aggregates())),
		})
	}
}

// checkPhysicalTables verifies that every fact and dimension table the
// model references exists in the connected database.
func (d *Doctor) checkPhysicalTables(ctx context.Context, report *Report) error {
	if d.model == nil {
		return nil
	}
	if d.db == nil {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "connection",
			Status:   StatusWarn,
			Message:  "no database configured, skipping table checks",
			FixHint:  "set database.url in cubist.yaml or pass --db",
		})
		return nil
	}

	existing, err := d.listTables(ctx)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "connection",
			Status:   StatusFail,
			Message:  "listing tables failed",
			Details:  err.Error(),
		})
		return nil
	}

	wanted := map[string]string{} // table -> first referencing cube
	for _, name := range d.model.CubeNames() {
		c, err := d.model.Cube(name)
		if err != nil {
			continue
		}
		if _, ok := wanted[c.FactTable()]; !ok {
			wanted[c.FactTable()] = name
		}
		for _, j := range c.Joins() {
			if _, ok := wanted[j.DetailTable]; !ok {
				wanted[j.DetailTable] = name
			}
		}
	}

	tables := make([]string, 0, len(wanted))
	for t := range wanted {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	missing := 0
	for _, t := range tables {
		if existing[t] {
			continue
		}
		missing++
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "tables",
			Status:   StatusFail,
			Message:  fmt.Sprintf("table %q missing (referenced by cube %q)", t, wanted[t]),
		})
	}
	if missing == 0 {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "tables",
			Status:   StatusPass,
			Message:  fmt.Sprintf("all %d referenced tables exist", len(tables)),
		})
	}
	return nil
}

func (d *Doctor) listTables(ctx context.Context) (map[string]bool, error) {
	rows, err := d.db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables[name] = true
	}
	return tables, rows.Err()
}
