package domain

import "errors"

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentNotParsed   = errors.New("document has not been parsed yet")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file has no content")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNoTables            = errors.New("document has no table elements")
	ErrPresignUnsupported  = errors.New("staging backend does not support download links")
	ErrInvalidAgentQuery   = errors.New("invalid agent query parameters")
	ErrPlatformAuth        = errors.New("platform authentication failed")
	ErrPlatformUnavailable = errors.New("platform request failed")
	ErrStatementFailed     = errors.New("statement execution failed")
	ErrNoParseOutput       = errors.New("parse statement returned no output")
)
