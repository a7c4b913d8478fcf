package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsight/internal/config"
	"docsight/internal/csvexport"
	"docsight/internal/domain"
	"docsight/internal/port"
	"docsight/internal/service"
	"docsight/mocks"
)

func newAgentFixture() (*mocks.MockStatementExecutor, service.AgentService) {
	executor := new(mocks.MockStatementExecutor)
	cfg := &config.AgentConfig{Model: "databricks-gpt-5-2", DefaultLimit: 100, MaxLimit: 1000}
	return executor, service.NewAgentService(executor, cfg, &config.DatabricksConfig{QueryWait: "50s"})
}

func TestAgentRun_BuildsStatement(t *testing.T) {
	executor, svc := newAgentFixture()

	var statement string
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "50s").
		Run(func(args mock.Arguments) { statement = args.String(1) }).
		Return(&port.StatementResult{
			Columns: []string{"doc_text", "answer"},
			Rows:    [][]string{{"contract text", "yes"}},
		}, nil)

	result, err := svc.Run(context.Background(), service.AgentQueryInput{
		Table:        "main.docs.parsed",
		InputColumn:  "doc_text",
		OutputColumn: "answer",
		Prompt:       "Does this mention a renewal clause? ",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT doc_text, ai_query('databricks-gpt-5-2', CONCAT('Does this mention a renewal clause? ', doc_text)) AS answer FROM main.docs.parsed LIMIT 100;",
		statement)
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, statement, result.Statement)
	assert.Equal(t, []string{"doc_text", "answer"}, result.Columns)
}

func TestAgentRun_EscapesPromptQuotes(t *testing.T) {
	executor, svc := newAgentFixture()

	var statement string
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "50s").
		Run(func(args mock.Arguments) { statement = args.String(1) }).
		Return(&port.StatementResult{}, nil)

	_, err := svc.Run(context.Background(), service.AgentQueryInput{
		Table:        "docs",
		InputColumn:  "body",
		OutputColumn: "vendor",
		Prompt:       "What's the vendor's name? ",
	})
	require.NoError(t, err)
	assert.Contains(t, statement, "CONCAT('What''s the vendor''s name? ', body)")
}

func TestAgentRun_LimitDefaultsAndCaps(t *testing.T) {
	executor, svc := newAgentFixture()

	var statements []string
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "50s").
		Run(func(args mock.Arguments) { statements = append(statements, args.String(1)) }).
		Return(&port.StatementResult{}, nil)

	input := service.AgentQueryInput{Table: "docs", InputColumn: "body", OutputColumn: "out", Prompt: "p"}

	input.Limit = 0
	_, err := svc.Run(context.Background(), input)
	require.NoError(t, err)

	input.Limit = 5000
	_, err = svc.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, statements, 2)
	assert.True(t, strings.HasSuffix(statements[0], "LIMIT 100;"))
	assert.True(t, strings.HasSuffix(statements[1], "LIMIT 1000;"))
}

func TestAgentRun_RejectsBadInput(t *testing.T) {
	executor, svc := newAgentFixture()

	cases := []service.AgentQueryInput{
		{Table: "docs; DROP TABLE x", InputColumn: "c", OutputColumn: "o", Prompt: "p"},
		{Table: "docs", InputColumn: "col name", OutputColumn: "o", Prompt: "p"},
		{Table: "docs", InputColumn: "c", OutputColumn: "out'col", Prompt: "p"},
		{Table: "", InputColumn: "c", OutputColumn: "o", Prompt: "p"},
		{Table: "docs", InputColumn: "c", OutputColumn: "o", Prompt: "   "},
	}
	for _, input := range cases {
		_, err := svc.Run(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrInvalidAgentQuery)
	}
	executor.AssertNotCalled(t, "ExecuteStatement", mock.Anything, mock.Anything, mock.Anything)
}

func TestAgentRun_ExecutorError(t *testing.T) {
	executor, svc := newAgentFixture()

	stmtErr := fmt.Errorf("statement stmt-2: cancelled: %w", domain.ErrStatementFailed)
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "50s").Return(nil, stmtErr)

	_, err := svc.Run(context.Background(), service.AgentQueryInput{
		Table: "docs", InputColumn: "body", OutputColumn: "out", Prompt: "p",
	})
	assert.ErrorIs(t, err, domain.ErrStatementFailed)
}

func TestAgentExportCSV(t *testing.T) {
	_, svc := newAgentFixture()

	data, err := svc.ExportCSV(&domain.AgentQueryResult{
		Columns: []string{"doc_text", "answer"},
		Rows:    [][]string{{"a,b", "line1\nline2"}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, csvexport.BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(csvexport.BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"doc_text", "answer"}, {"a,b", "line1\nline2"}}, records)
}
