package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sort"

	"github.com/google/uuid"

	"docsight/internal/config"
	"docsight/internal/domain"
	"docsight/internal/normalize"
	"docsight/internal/port"
)

// RawView is the raw-response projection of a parsed document.
type RawView struct {
	Content string `json:"content"`
	IsJSON  bool   `json:"is_json"`
}

// TypeCount is one row of the per-type summary breakdown.
type TypeCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TablePreview is one table element prepared for display.
type TablePreview struct {
	Index       int    `json:"index"`
	Content     string `json:"content"`
	HTML        bool   `json:"html"`
	Description string `json:"description,omitempty"`
}

// FigureItem is one figure element prepared for display.
type FigureItem struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	PageID      *int   `json:"page_id,omitempty"`
}

// DocumentSummary aggregates what a parsed document contains.
type DocumentSummary struct {
	TotalElements int                    `json:"total_elements"`
	TableCount    int                    `json:"table_count"`
	FigureCount   int                    `json:"figure_count"`
	HeaderCount   int                    `json:"header_count"`
	IsStructured  bool                   `json:"is_structured"`
	Breakdown     []TypeCount            `json:"breakdown"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Tables        []TablePreview         `json:"tables"`
	Figures       []FigureItem           `json:"figures"`
}

// DocumentService provides the read side over stored documents.
type DocumentService interface {
	Get(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	StructuredView(ctx context.Context, docID uuid.UUID, page *int) ([]domain.Element, error)
	PageView(ctx context.Context, docID uuid.UUID) (*normalize.PageGroups, error)
	TextView(ctx context.Context, docID uuid.UUID) (string, error)
	RawView(ctx context.Context, docID uuid.UUID) (*RawView, error)
	Summary(ctx context.Context, docID uuid.UUID) (*DocumentSummary, error)
	OriginalFileURL(ctx context.Context, docID uuid.UUID) (string, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}

type documentService struct {
	store   port.DocumentStore
	storage port.ObjectStorage
	s3cfg   *config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	store port.DocumentStore,
	storage port.ObjectStorage,
	s3cfg *config.S3Config,
) DocumentService {
	return &documentService{
		store:   store,
		storage: storage,
		s3cfg:   s3cfg,
	}
}

func (s *documentService) Get(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.store.GetByID(ctx, docID)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.store.List(ctx, offset, limit)
}

// getParsed loads a document and requires a completed parse.
func (s *documentService) getParsed(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.store.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Parsed == nil {
		return nil, domain.ErrDocumentNotParsed
	}
	return doc, nil
}

func (s *documentService) StructuredView(ctx context.Context, docID uuid.UUID, page *int) ([]domain.Element, error) {
	doc, err := s.getParsed(ctx, docID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return doc.Parsed.Elements, nil
	}
	filtered := make([]domain.Element, 0)
	for _, el := range doc.Parsed.Elements {
		if el.PageID != nil && *el.PageID == *page {
			filtered = append(filtered, el)
		}
	}
	return filtered, nil
}

func (s *documentService) PageView(ctx context.Context, docID uuid.UUID) (*normalize.PageGroups, error) {
	doc, err := s.getParsed(ctx, docID)
	if err != nil {
		return nil, err
	}
	groups := normalize.GroupByPage(doc.Parsed.Elements)
	return &groups, nil
}

// TextView returns the plain-text projection, falling back to the raw
// content when the projection came out empty so unstructured responses
// still display something.
func (s *documentService) TextView(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.getParsed(ctx, docID)
	if err != nil {
		return "", err
	}
	if doc.Parsed.PlainText != "" {
		return doc.Parsed.PlainText, nil
	}
	return doc.Parsed.RawContent, nil
}

func (s *documentService) RawView(ctx context.Context, docID uuid.UUID) (*RawView, error) {
	doc, err := s.getParsed(ctx, docID)
	if err != nil {
		return nil, err
	}
	raw := []byte(doc.Parsed.RawContent)
	if !json.Valid(raw) {
		return &RawView{Content: doc.Parsed.RawContent}, nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return &RawView{Content: doc.Parsed.RawContent}, nil
	}
	return &RawView{Content: pretty.String(), IsJSON: true}, nil
}

func (s *documentService) Summary(ctx context.Context, docID uuid.UUID) (*DocumentSummary, error) {
	doc, err := s.getParsed(ctx, docID)
	if err != nil {
		return nil, err
	}
	parsed := doc.Parsed

	summary := &DocumentSummary{
		TotalElements: len(parsed.Elements),
		TableCount:    len(parsed.Tables),
		FigureCount:   len(parsed.Figures),
		HeaderCount:   len(parsed.Headers),
		IsStructured:  parsed.IsStructured,
		Metadata:      parsed.Metadata,
		Tables:        make([]TablePreview, 0, len(parsed.Tables)),
		Figures:       make([]FigureItem, 0, len(parsed.Figures)),
	}

	counts := make(map[string]int)
	for _, el := range parsed.Elements {
		counts[el.TypeLabel()]++
	}
	summary.Breakdown = make([]TypeCount, 0, len(counts))
	for label, count := range counts {
		summary.Breakdown = append(summary.Breakdown, TypeCount{Label: label, Count: count})
	}
	sort.Slice(summary.Breakdown, func(i, j int) bool {
		if summary.Breakdown[i].Count != summary.Breakdown[j].Count {
			return summary.Breakdown[i].Count > summary.Breakdown[j].Count
		}
		return summary.Breakdown[i].Label < summary.Breakdown[j].Label
	})

	for i, table := range parsed.Tables {
		summary.Tables = append(summary.Tables, TablePreview{
			Index:       i + 1,
			Content:     table.Content,
			HTML:        table.HasHTMLTable(),
			Description: table.Description,
		})
	}
	for i, figure := range parsed.Figures {
		description := figure.Description
		if description == "" {
			description = "No description"
		}
		summary.Figures = append(summary.Figures, FigureItem{
			Index:       i + 1,
			Description: description,
			PageID:      figure.PageID,
		})
	}

	return summary, nil
}

func (s *documentService) OriginalFileURL(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.store.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, doc.StagedKey, s.s3cfg.PresignExpiry)
}

func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.store.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	log.Printf("documentService.Delete: deleting document %s (%s)", doc.ID, doc.FileName)

	// The staged object may already be gone when cleanup ran after the
	// parse, so a failed delete only gets logged.
	if doc.StagedKey != "" {
		if err := s.storage.Delete(ctx, doc.StagedKey); err != nil {
			log.Printf("documentService.Delete: staged object delete failed for %s: %v", doc.StagedKey, err)
		}
	}

	return s.store.Delete(ctx, docID)
}
