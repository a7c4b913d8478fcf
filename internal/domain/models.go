package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Element is a single normalized unit of parsed document content. Exactly
// one Category is assigned at normalization time and never re-derived.
type Element struct {
	Category    Category               `json:"category"`
	Content     string                 `json:"content,omitempty"`
	Description string                 `json:"description,omitempty"`
	ID          interface{}            `json:"id,omitempty"`
	PageID      *int                   `json:"page_id,omitempty"`
	BoundingBox interface{}            `json:"bbox,omitempty"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// TypeLabel returns the lowercased type label the source payload declared
// for this element, or "unknown" when it declared none.
func (e Element) TypeLabel() string {
	if t, ok := e.Raw["type"].(string); ok && t != "" {
		return strings.ToLower(t)
	}
	return "unknown"
}

// HasHTMLTable reports whether the element content embeds an HTML table
// fragment. Summary previews and the xlsx export dispatch on this.
func (e Element) HasHTMLTable() bool {
	return strings.Contains(strings.ToLower(e.Content), "<table")
}

// NormalizedDocument is the uniform model built from one raw parse
// response. It is immutable once built. Tables, Figures and Headers are
// category views over Elements, materialized once at normalization time
// and never mutated afterwards. RawContent retains the source verbatim.
type NormalizedDocument struct {
	IsStructured bool                   `json:"is_structured"`
	Elements     []Element              `json:"elements"`
	PlainText    string                 `json:"plain_text"`
	RawContent   string                 `json:"raw_content"`
	Tables       []Element              `json:"tables"`
	Figures      []Element              `json:"figures"`
	Headers      []Element              `json:"headers"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Document represents one uploaded file and its parse outcome.
type Document struct {
	ID          uuid.UUID           `json:"id"`
	FileName    string              `json:"file_name"`
	FileType    FileType            `json:"file_type"`
	FileSize    int64               `json:"file_size"`
	ContentType string              `json:"content_type"`
	StagedKey   string              `json:"-"`
	SourcePath  string              `json:"source_path,omitempty"`
	Status      ParseStatus         `json:"status"`
	Error       string              `json:"error,omitempty"`
	Parsed      *NormalizedDocument `json:"-"`
	CreatedAt   time.Time           `json:"created_at"`
	ParsedAt    *time.Time          `json:"parsed_at,omitempty"`
}

// BatchItem is the per-file outcome within a batch parse.
type BatchItem struct {
	FileName string    `json:"file_name"`
	Document *Document `json:"document,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// BatchResult aggregates the outcome of a batch parse request.
type BatchResult struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// AgentQueryResult holds the rows returned by an ai_query statement.
type AgentQueryResult struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	RowCount  int        `json:"row_count"`
	Statement string     `json:"statement"`
}
