package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsight/internal/domain"
)

func TestWriteResult(t *testing.T) {
	result := &domain.AgentQueryResult{
		Columns: []string{"doc_text", "answer"},
		Rows: [][]string{
			{"first invoice text", "Total is 42 USD"},
			{"second invoice text", "Total is 99 EUR"},
		},
		RowCount: 2,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResult(result))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"doc_text", "answer"}, rows[0])
	assert.Equal(t, []string{"first invoice text", "Total is 42 USD"}, rows[1])
	assert.Equal(t, []string{"second invoice text", "Total is 99 EUR"}, rows[2])
}

func TestWriteResult_QuotedCells(t *testing.T) {
	result := &domain.AgentQueryResult{
		Columns: []string{"input", "output"},
		Rows: [][]string{
			{`contains "quotes" inside`, "comma, separated, values"},
			{"multi\nline\ncell", ""},
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResult(result))
	w.Flush()
	require.NoError(t, w.Error())

	// Reading back through csv proves the quoting round-trips.
	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, `contains "quotes" inside`, rows[1][0])
	assert.Equal(t, "comma, separated, values", rows[1][1])
	assert.Equal(t, "multi\nline\ncell", rows[2][0])
	assert.Equal(t, "", rows[2][1])
}

func TestWriteResult_NoRows(t *testing.T) {
	result := &domain.AgentQueryResult{
		Columns: []string{"doc_text", "answer"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResult(result))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"doc_text", "answer"}, rows[0])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Q3 Annual Report", "Q3_Annual_Report"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"unicode", "कंपनी Reports", "Reports"},
		{"hyphens and underscores preserved", "my-scan_2025", "my-scan_2025"},
		{"consecutive underscores collapsed", "test___scan", "test_scan"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{
			"long name truncated",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-extra",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrs",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("agent results")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "agent_results_"+today+".csv", filename)
}
