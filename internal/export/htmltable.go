// Package export renders parsed documents into downloadable formats.
package export

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ExtractTables parses an HTML fragment and returns every table in it
// as a grid of cell texts, rowwise. Parse responses embed tables as
// fragments, so the lenient html.Parse wrapping is exactly what we
// want here.
func ExtractTables(fragment string) ([][][]string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parsing html fragment: %w", err)
	}

	var tables [][][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if grid := parseTable(n); len(grid) > 0 {
				tables = append(tables, grid)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables, nil
}

// parseTable collects the rows of one table element, looking through
// thead/tbody wrappers for tr nodes.
func parseTable(tableNode *html.Node) [][]string {
	var rows [][]string
	var findRows func(n *html.Node)
	findRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if row := parseRow(n); len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findRows(c)
		}
	}
	findRows(tableNode)
	return rows
}

func parseRow(tr *html.Node) []string {
	var row []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, cellText(c))
		}
	}
	return row
}

// cellText extracts a cell's text with whitespace collapsed, so markup
// indentation never leaks into spreadsheet cells.
func cellText(n *html.Node) string {
	var b strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
