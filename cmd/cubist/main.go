// Package main provides a CLI for working with cubist cube models.
//
// The CLI supports:
//   - validate: Parse and build a model document, reporting errors
//   - explain: Print a cube's resolved fact, dimensions, join plan and
//     aggregate plan
//   - sql: Emit (and optionally run) the compiled aggregation SELECT
//   - doctor: Run health checks on the model and its backing store
//   - config: Show effective configuration
//
// Commands that execute queries (sql --run) need database.url or
// CUBIST_DATABASE_URL. Everything else works purely on files.
package main

func main() {
	Execute()
}
