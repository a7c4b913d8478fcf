package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsight/internal/config"
	"docsight/internal/domain"
	"docsight/internal/port"
	"docsight/internal/service"
	"docsight/mocks"
)

const parsedPayload = `{"document": {"elements": [{"type": "text", "content": "hello world", "page_id": 0}]}}`

// makeParseInput round-trips content through a real multipart form so
// the header carries the same Size and Open semantics the handler sees.
func makeParseInput(t *testing.T, fileName string, content []byte) service.ParseInput {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File["file"]
	require.Len(t, headers, 1)
	f, err := headers[0].Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	return service.ParseInput{File: f, Header: headers[0]}
}

func pdfBytes(filler string) []byte {
	return []byte("%PDF-1.4\n" + filler)
}

func newParseFixture(cleanup bool) (*mocks.MockDocumentStore, *mocks.MockObjectStorage, *mocks.MockStatementExecutor, service.ParseService) {
	store := new(mocks.MockDocumentStore)
	storage := new(mocks.MockObjectStorage)
	executor := new(mocks.MockStatementExecutor)
	staging := &config.StagingConfig{Backend: "dbfs", Prefix: "/tmp/docsight", Cleanup: cleanup, MaxFileSizeMB: 50}
	databricks := &config.DatabricksConfig{ParseWait: "30s", QueryWait: "50s"}
	return store, storage, executor, service.NewParseService(store, storage, executor, staging, databricks)
}

func TestParse_Success(t *testing.T) {
	store, storage, executor, svc := newParseFixture(true)

	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	var uploaded port.UploadInput
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) { uploaded = args.Get(1).(port.UploadInput) }).
		Return(&port.UploadOutput{Location: "/tmp/docsight/staged"}, nil)
	storage.On("URI", mock.AnythingOfType("string")).Return("/tmp/docsight/staged.pdf")
	storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusParsing, "").Return(nil)

	executor.On("ExecuteStatement", mock.Anything, mock.MatchedBy(func(stmt string) bool {
		return strings.Contains(stmt, "ai_parse_document(content)") &&
			strings.Contains(stmt, "READ_FILES('/tmp/docsight/staged.pdf'") &&
			strings.Contains(stmt, "format => 'binaryFile'")
	}), "30s").Return(&port.StatementResult{
		Columns: []string{"path", "parsed_content"},
		Rows:    [][]string{{"/tmp/docsight/staged.pdf", parsedPayload}},
	}, nil)

	store.On("AttachResult", mock.Anything, mock.AnythingOfType("uuid.UUID"), "/tmp/docsight/staged.pdf",
		mock.MatchedBy(func(parsed *domain.NormalizedDocument) bool {
			return parsed.IsStructured && len(parsed.Elements) == 1 && parsed.Elements[0].Content == "hello world"
		})).Return(nil)

	stored := &domain.Document{FileName: "report.pdf", Status: domain.ParseStatusParsed}
	store.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(stored, nil)

	doc, err := svc.Parse(context.Background(), makeParseInput(t, "report.pdf", pdfBytes("content")))
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusParsed, doc.Status)

	assert.Regexp(t, `^[0-9a-f-]{36}/report\.pdf$`, uploaded.Key)
	assert.Equal(t, "application/pdf", uploaded.ContentType)

	store.AssertExpectations(t)
	storage.AssertExpectations(t)
	executor.AssertExpectations(t)
}

func TestParse_SanitizesStagedKey(t *testing.T) {
	store, storage, executor, svc := newParseFixture(false)

	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	var uploaded port.UploadInput
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) { uploaded = args.Get(1).(port.UploadInput) }).
		Return(&port.UploadOutput{}, nil)
	storage.On("URI", mock.AnythingOfType("string")).Return("/tmp/docsight/key")

	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusParsing, "").Return(nil)
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "30s").Return(&port.StatementResult{
		Rows: [][]string{{"/tmp/docsight/key", parsedPayload}},
	}, nil)
	store.On("AttachResult", mock.Anything, mock.AnythingOfType("uuid.UUID"), "/tmp/docsight/key", mock.Anything).Return(nil)
	store.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(&domain.Document{}, nil)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "Q3 report (final).pdf", pdfBytes("x")))
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f-]{36}/Q3_report_final\.pdf$`, uploaded.Key)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	store, storage, _, svc := newParseFixture(false)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestParse_EmptyFile(t *testing.T) {
	_, _, _, svc := newParseFixture(false)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "report.pdf", nil))
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestParse_FileTooLarge(t *testing.T) {
	store := new(mocks.MockDocumentStore)
	storage := new(mocks.MockObjectStorage)
	executor := new(mocks.MockStatementExecutor)
	staging := &config.StagingConfig{MaxFileSizeMB: 1}
	svc := service.NewParseService(store, storage, executor, staging, &config.DatabricksConfig{ParseWait: "30s"})

	big := append(pdfBytes(""), bytes.Repeat([]byte("a"), 1<<20)...)
	_, err := svc.Parse(context.Background(), makeParseInput(t, "big.pdf", big))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestParse_ContentTypeMismatch(t *testing.T) {
	_, _, _, svc := newParseFixture(false)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "fake.pdf", []byte("just plain text, not a pdf")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestParse_UploadFailure(t *testing.T) {
	store, storage, _, svc := newParseFixture(true)

	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(nil, errors.New("bucket gone"))
	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "report.pdf", pdfBytes("x")))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestParse_StatementFailure(t *testing.T) {
	store, storage, executor, svc := newParseFixture(true)

	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(&port.UploadOutput{}, nil)
	storage.On("URI", mock.AnythingOfType("string")).Return("/tmp/docsight/key")
	storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusParsing, "").Return(nil)
	stmtErr := fmt.Errorf("statement stmt-1: table not found: %w", domain.ErrStatementFailed)
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "30s").Return(nil, stmtErr)
	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "report.pdf", pdfBytes("x")))
	assert.ErrorIs(t, err, domain.ErrStatementFailed)

	// Staging cleanup still runs when the statement fails.
	storage.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("string"))
	store.AssertExpectations(t)
}

func TestParse_NoParseOutput(t *testing.T) {
	store, storage, executor, svc := newParseFixture(false)

	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(&port.UploadOutput{}, nil)
	storage.On("URI", mock.AnythingOfType("string")).Return("/tmp/docsight/key")

	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusParsing, "").Return(nil)
	executor.On("ExecuteStatement", mock.Anything, mock.AnythingOfType("string"), "30s").Return(&port.StatementResult{}, nil)
	store.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ParseStatusFailed, mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Parse(context.Background(), makeParseInput(t, "report.pdf", pdfBytes("x")))
	assert.ErrorIs(t, err, domain.ErrNoParseOutput)
}
