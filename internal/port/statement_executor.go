package port

import "context"

// StatementResult holds the column names and materialized rows of a
// completed warehouse statement. Rows are stringly typed because the
// statement API returns its data array as JSON strings.
type StatementResult struct {
	Columns []string
	Rows    [][]string
}

// StatementExecutor abstracts SQL statement execution against the
// analytics platform.
type StatementExecutor interface {
	ExecuteStatement(ctx context.Context, statement, waitTimeout string) (*StatementResult, error)
}
