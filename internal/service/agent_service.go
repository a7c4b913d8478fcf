package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"docsight/internal/config"
	"docsight/internal/csvexport"
	"docsight/internal/domain"
	"docsight/internal/port"
)

// identifierPattern bounds the table and column names that get
// interpolated into the statement text. Dots stay allowed so
// catalog.schema.table references work.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// AgentQueryInput is the DTO for agent query requests.
type AgentQueryInput struct {
	Table        string
	InputColumn  string
	OutputColumn string
	Prompt       string
	Limit        int
}

// AgentService runs ad-hoc ai_query statements over warehouse tables.
type AgentService interface {
	Run(ctx context.Context, input AgentQueryInput) (*domain.AgentQueryResult, error)
	ExportCSV(result *domain.AgentQueryResult) ([]byte, error)
}

type agentService struct {
	executor   port.StatementExecutor
	cfg        *config.AgentConfig
	databricks *config.DatabricksConfig
}

// NewAgentService creates a new AgentService implementation.
func NewAgentService(
	executor port.StatementExecutor,
	cfg *config.AgentConfig,
	databricks *config.DatabricksConfig,
) AgentService {
	return &agentService{
		executor:   executor,
		cfg:        cfg,
		databricks: databricks,
	}
}

func (s *agentService) Run(ctx context.Context, input AgentQueryInput) (*domain.AgentQueryResult, error) {
	if !identifierPattern.MatchString(input.Table) {
		return nil, fmt.Errorf("table name %q: %w", input.Table, domain.ErrInvalidAgentQuery)
	}
	if !identifierPattern.MatchString(input.InputColumn) {
		return nil, fmt.Errorf("input column %q: %w", input.InputColumn, domain.ErrInvalidAgentQuery)
	}
	if !identifierPattern.MatchString(input.OutputColumn) {
		return nil, fmt.Errorf("output column %q: %w", input.OutputColumn, domain.ErrInvalidAgentQuery)
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, fmt.Errorf("empty prompt: %w", domain.ErrInvalidAgentQuery)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	// The prompt lands inside a quoted SQL literal; the identifiers were
	// validated above, so quote-doubling the prompt is the one escape
	// this statement still needs.
	prompt := strings.ReplaceAll(input.Prompt, "'", "''")
	statement := fmt.Sprintf(
		"SELECT %s, ai_query('%s', CONCAT('%s', %s)) AS %s FROM %s LIMIT %d;",
		input.InputColumn, s.cfg.Model, prompt, input.InputColumn,
		input.OutputColumn, input.Table, limit,
	)

	log.Printf("agentService.Run: querying %s.%s -> %s (limit %d)",
		input.Table, input.InputColumn, input.OutputColumn, limit)

	result, err := s.executor.ExecuteStatement(ctx, statement, s.databricks.QueryWait)
	if err != nil {
		return nil, err
	}

	return &domain.AgentQueryResult{
		Columns:   result.Columns,
		Rows:      result.Rows,
		RowCount:  len(result.Rows),
		Statement: statement,
	}, nil
}

// ExportCSV renders a query result as a CSV attachment body, BOM first
// so Excel opens it as UTF-8.
func (s *agentService) ExportCSV(result *domain.AgentQueryResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf)
	if err := w.WriteResult(result); err != nil {
		return nil, fmt.Errorf("writing agent result csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing agent result csv: %w", err)
	}
	return buf.Bytes(), nil
}
