package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docsight/internal/domain"
)

// TablesWorkbook renders every table element into an xlsx workbook, one
// sheet per table. HTML table content becomes a cell grid; anything
// else is written line by line into column A. The description, when
// present, sits above the grid.
func TablesWorkbook(parsed *domain.NormalizedDocument) ([]byte, error) {
	if len(parsed.Tables) == 0 {
		return nil, domain.ErrNoTables
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, table := range parsed.Tables {
		sheet := fmt.Sprintf("Table %d", i+1)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("renaming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("adding sheet %s: %w", sheet, err)
			}
		}

		startRow := 1
		if table.Description != "" {
			if err := f.SetCellValue(sheet, "A1", table.Description); err != nil {
				return nil, fmt.Errorf("writing description: %w", err)
			}
			startRow = 3
		}

		for r, row := range tableGrid(table) {
			for c, val := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, startRow+r)
				if err != nil {
					return nil, fmt.Errorf("cell name: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return nil, fmt.Errorf("writing cell %s: %w", cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// tableGrid converts one table element's content into rows of cells.
func tableGrid(table domain.Element) [][]string {
	if table.HasHTMLTable() {
		if grids, err := ExtractTables(table.Content); err == nil && len(grids) > 0 {
			return grids[0]
		}
	}
	var grid [][]string
	for _, line := range strings.Split(table.Content, "\n") {
		grid = append(grid, []string{line})
	}
	return grid
}
