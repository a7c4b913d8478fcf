package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsight/internal/service"
)

// ParseHandler handles document upload and parse endpoints.
type ParseHandler struct {
	parseService service.ParseService
	queueWorker  *service.ParseQueueWorker
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(parseService service.ParseService, queueWorker *service.ParseQueueWorker) *ParseHandler {
	return &ParseHandler{parseService: parseService, queueWorker: queueWorker}
}

// Upload handles POST /api/v1/documents
// @Summary Upload and parse a document
// @Description Upload a file (PDF, JPG, PNG, max 50MB), stage it, and run it through ai_parse_document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to parse (PDF, JPG, or PNG)"
// @Success 201 {object} Response{data=domain.Document} "Document parsed"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type, or empty file"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Databricks rate limit"
// @Failure 502 {object} ErrorResponseBody "Databricks unavailable or statement failed"
// @Router /documents [post]
func (h *ParseHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.parseService.Parse(c.Request.Context(), service.ParseInput{File: file, Header: header})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// UploadBatch handles POST /api/v1/documents/batch
// @Summary Upload and parse multiple documents
// @Description Upload several files under the repeated files field; they are parsed concurrently and the batch outcome is returned once all finish
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to parse (repeatable field)"
// @Success 200 {object} Response{data=domain.BatchResult} "Per-file outcomes"
// @Failure 400 {object} ErrorResponseBody "Missing files"
// @Router /documents/batch [post]
func (h *ParseHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "could not read multipart form")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "files field is required")
		return
	}

	inputs := make([]service.ParseInput, 0, len(headers))
	for _, header := range headers {
		f, openErr := header.Open()
		if openErr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FORM", "could not open uploaded file "+header.Filename)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		inputs = append(inputs, service.ParseInput{File: f, Header: header})
	}

	result := h.queueWorker.RunBatch(c.Request.Context(), inputs)
	RespondOK(c, result)
}
