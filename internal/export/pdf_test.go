package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsight/internal/domain"
)

func pageRef(n int) *int { return &n }

func TestTextPDF(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		IsStructured: true,
		Elements: []domain.Element{
			{Category: domain.CategoryHeader, Content: "Annual Report", PageID: pageRef(0)},
			{Category: domain.CategoryText, Content: "Revenue grew strongly.", PageID: pageRef(0)},
			{Category: domain.CategoryFigure, Description: "Growth chart", PageID: pageRef(1)},
		},
		Metadata: map[string]interface{}{"page_count": 2},
	}

	data, err := TextPDF("report.pdf", parsed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Greater(t, len(data), 500)
}

func TestTextPDF_PlainTextFallback(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		PlainText: "just some plain text output",
	}

	data, err := TextPDF("notes.txt", parsed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestTextPDF_RawContentWhenNothingElse(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		RawContent: "raw scalar payload",
	}

	data, err := TextPDF("scalar.json", parsed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
