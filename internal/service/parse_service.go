package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docsight/internal/config"
	"docsight/internal/csvexport"
	"docsight/internal/domain"
	"docsight/internal/normalize"
	"docsight/internal/port"
)

// parseStatement feeds a staged file through the warehouse parse
// function. READ_FILES needs binaryFile format so the content column
// carries the original bytes.
const parseStatement = "SELECT path, ai_parse_document(content) AS parsed_content FROM READ_FILES('%s', format => 'binaryFile')"

// ParseInput is the DTO for document parse requests.
type ParseInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ParseService defines the upload-stage-parse contract.
type ParseService interface {
	Parse(ctx context.Context, input ParseInput) (*domain.Document, error)
}

type parseService struct {
	store      port.DocumentStore
	storage    port.ObjectStorage
	executor   port.StatementExecutor
	staging    *config.StagingConfig
	databricks *config.DatabricksConfig
}

// NewParseService creates a new ParseService implementation.
func NewParseService(
	store port.DocumentStore,
	storage port.ObjectStorage,
	executor port.StatementExecutor,
	staging *config.StagingConfig,
	databricks *config.DatabricksConfig,
) ParseService {
	return &parseService{
		store:      store,
		storage:    storage,
		executor:   executor,
		staging:    staging,
		databricks: databricks,
	}
}

func (s *parseService) Parse(ctx context.Context, input ParseInput) (*domain.Document, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	if input.Header.Size == 0 {
		return nil, domain.ErrEmptyFile
	}
	maxBytes := s.staging.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for staging
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	// The staged key feeds a quoted SQL literal, so the filename part is
	// reduced to a safe charset before it gets anywhere near a statement.
	docID := uuid.New()
	base := filepath.Base(input.Header.Filename)
	stem := csvexport.SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "document"
	}
	stagedKey := fmt.Sprintf("%s/%s.%s", docID, stem, ext)
	contentType := domain.AllowedFileTypes[fileType]

	doc := &domain.Document{
		ID:          docID,
		FileName:    base,
		FileType:    fileType,
		FileSize:    input.Header.Size,
		ContentType: contentType,
		StagedKey:   stagedKey,
		Status:      domain.ParseStatusUploaded,
	}

	log.Printf("parseService.Parse: staging file %s (%s, %d bytes) as %s",
		base, contentType, input.Header.Size, stagedKey)

	if err := s.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document record: %w", err)
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         stagedKey,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		log.Printf("parseService.Parse: staging upload failed for document %s: %v", doc.ID, err)
		s.markFailed(ctx, doc.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if s.staging.Cleanup {
		defer func() {
			if err := s.storage.Delete(ctx, stagedKey); err != nil {
				log.Printf("parseService.Parse: staging cleanup failed for %s: %v", stagedKey, err)
			}
		}()
	}

	if err := s.store.UpdateStatus(ctx, doc.ID, domain.ParseStatusParsing, ""); err != nil {
		return nil, fmt.Errorf("updating document status: %w", err)
	}

	statement := fmt.Sprintf(parseStatement, s.storage.URI(stagedKey))
	result, err := s.executor.ExecuteStatement(ctx, statement, s.databricks.ParseWait)
	if err != nil {
		log.Printf("parseService.Parse: parse statement failed for document %s: %v", doc.ID, err)
		s.markFailed(ctx, doc.ID, err)
		return nil, err
	}

	if len(result.Rows) == 0 || len(result.Rows[0]) < 2 {
		s.markFailed(ctx, doc.ID, domain.ErrNoParseOutput)
		return nil, domain.ErrNoParseOutput
	}
	sourcePath := result.Rows[0][0]
	raw := result.Rows[0][1]

	parsed := normalize.Normalize(raw)
	if err := s.store.AttachResult(ctx, doc.ID, sourcePath, parsed); err != nil {
		return nil, fmt.Errorf("attaching parse result: %w", err)
	}

	log.Printf("parseService.Parse: document %s parsed (%d elements, structured=%t)",
		doc.ID, len(parsed.Elements), parsed.IsStructured)

	return s.store.GetByID(ctx, doc.ID)
}

// markFailed records a failed parse outcome. Failures to record are
// logged, not surfaced, so the original error stays the one returned.
func (s *parseService) markFailed(ctx context.Context, docID uuid.UUID, cause error) {
	if err := s.store.UpdateStatus(ctx, docID, domain.ParseStatusFailed, cause.Error()); err != nil {
		log.Printf("parseService: marking document %s failed: %v", docID, err)
	}
}
