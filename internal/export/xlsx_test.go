package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docsight/internal/domain"
)

func TestTablesWorkbook_NoTables(t *testing.T) {
	_, err := TablesWorkbook(&domain.NormalizedDocument{})
	assert.ErrorIs(t, err, domain.ErrNoTables)
}

func TestTablesWorkbook_HTMLTableGrid(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		Tables: []domain.Element{
			{
				Category: domain.CategoryTable,
				Content:  "<table><tr><th>Item</th><th>Qty</th></tr><tr><td>Widget</td><td>2</td></tr></table>",
			},
		},
	}

	data, err := TablesWorkbook(parsed)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Table 1"}, f.GetSheetList())

	item, err := f.GetCellValue("Table 1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Item", item)

	qty, err := f.GetCellValue("Table 1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", qty)
}

func TestTablesWorkbook_DescriptionAboveGrid(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		Tables: []domain.Element{
			{
				Category:    domain.CategoryTable,
				Description: "Quarterly revenue",
				Content:     "<table><tr><td>Q1</td></tr></table>",
			},
		},
	}

	data, err := TablesWorkbook(parsed)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	desc, err := f.GetCellValue("Table 1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly revenue", desc)

	cell, err := f.GetCellValue("Table 1", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Q1", cell)
}

func TestTablesWorkbook_OneSheetPerTable(t *testing.T) {
	parsed := &domain.NormalizedDocument{
		Tables: []domain.Element{
			{Category: domain.CategoryTable, Content: "<table><tr><td>first</td></tr></table>"},
			{Category: domain.CategoryTable, Content: "row one\nrow two"},
		},
	}

	data, err := TablesWorkbook(parsed)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Table 1", "Table 2"}, f.GetSheetList())

	first, err := f.GetCellValue("Table 1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "first", first)

	second, err := f.GetCellValue("Table 2", "A2")
	require.NoError(t, err)
	assert.Equal(t, "row two", second)
}
