package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docsight/internal/csvexport"
	"docsight/internal/domain"
	"docsight/internal/export"
	"docsight/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DocumentHandler handles document read, view, and export endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// parseDocID reads the :id path parameter. Returns false if it is not a
// UUID (error response already written).
func parseDocID(c *gin.Context) (uuid.UUID, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}

// parsedDoc loads the document behind :id and requires a completed
// parse, for the download endpoints that read Parsed directly.
func (h *DocumentHandler) parsedDoc(c *gin.Context) (*domain.Document, bool) {
	docID, ok := parseDocID(c)
	if !ok {
		return nil, false
	}
	doc, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if doc.Parsed == nil {
		HandleError(c, domain.ErrDocumentNotParsed)
		return nil, false
	}
	return doc, true
}

// exportStem reduces a stored filename to a safe attachment-name stem.
func exportStem(fileName string) string {
	stem := csvexport.SanitizeFilename(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	if stem == "" {
		stem = "document"
	}
	return stem
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List uploaded documents, newest first, with pagination
// @Tags documents
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	docs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Description Get the stored document record with its parse status
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document record"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Structured handles GET /api/v1/documents/:id/structured
// @Summary Structured element view
// @Description List the normalized elements of a parsed document, optionally filtered to one page
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param page query int false "Only elements of this page (0-based)"
// @Success 200 {object} Response{data=[]domain.Element} "Normalized elements"
// @Failure 400 {object} ErrorResponseBody "Invalid ID, invalid page, or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/structured [get]
func (h *DocumentHandler) Structured(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	var page *int
	if pageStr := c.Query("page"); pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_PAGE", "page must be an integer")
			return
		}
		page = &n
	}

	elements, err := h.documentService.StructuredView(c.Request.Context(), docID, page)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, elements)
}

// Pages handles GET /api/v1/documents/:id/pages
// @Summary Page-grouped view
// @Description Elements grouped by source page, ascending, with a separate bucket for elements without a page
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=normalize.PageGroups} "Page groups"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/pages [get]
func (h *DocumentHandler) Pages(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	groups, err := h.documentService.PageView(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, groups)
}

// Text handles GET /api/v1/documents/:id/text
// @Summary Plain text view
// @Description The plain-text projection, falling back to the raw content when the projection is empty
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=TextResponse} "Plain text"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/text [get]
func (h *DocumentHandler) Text(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	text, err := h.documentService.TextView(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"text": text})
}

// Raw handles GET /api/v1/documents/:id/raw
// @Summary Raw response view
// @Description The raw parse response, pretty-printed when it is valid JSON
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=service.RawView} "Raw content"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/raw [get]
func (h *DocumentHandler) Raw(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	view, err := h.documentService.RawView(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Summary handles GET /api/v1/documents/:id/summary
// @Summary Document summary
// @Description Element counts, per-type breakdown, table previews, and figure descriptions
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=service.DocumentSummary} "Summary"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/summary [get]
func (h *DocumentHandler) Summary(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	summary, err := h.documentService.Summary(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}

// DownloadText handles GET /api/v1/documents/:id/download/text
// @Summary Download plain text
// @Description Download the plain-text projection exactly as stored
// @Tags documents
// @Produce plain
// @Param id path string true "Document ID (UUID)"
// @Success 200 {string} string "Plain text attachment"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/download/text [get]
func (h *DocumentHandler) DownloadText(c *gin.Context) {
	doc, ok := h.parsedDoc(c)
	if !ok {
		return
	}

	fileName := fmt.Sprintf("parsed_%s.txt", exportStem(doc.FileName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Parsed.PlainText))
}

// DownloadJSON handles GET /api/v1/documents/:id/download/json
// @Summary Download raw response
// @Description Download the raw parse response bytes exactly as received
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {string} string "Raw response attachment"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/download/json [get]
func (h *DocumentHandler) DownloadJSON(c *gin.Context) {
	doc, ok := h.parsedDoc(c)
	if !ok {
		return
	}

	fileName := fmt.Sprintf("parsed_%s.json", exportStem(doc.FileName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/json", []byte(doc.Parsed.RawContent))
}

// DownloadTables handles GET /api/v1/documents/:id/download/tables
// @Summary Download tables workbook
// @Description Download every table element as an xlsx workbook, one sheet per table
// @Tags documents
// @Produce octet-stream
// @Param id path string true "Document ID (UUID)"
// @Success 200 {string} string "Workbook attachment"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found or has no tables"
// @Router /documents/{id}/download/tables [get]
func (h *DocumentHandler) DownloadTables(c *gin.Context) {
	doc, ok := h.parsedDoc(c)
	if !ok {
		return
	}

	data, err := export.TablesWorkbook(doc.Parsed)
	if err != nil {
		HandleError(c, err)
		return
	}

	fileName := fmt.Sprintf("parsed_%s.xlsx", exportStem(doc.FileName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DownloadPDF handles GET /api/v1/documents/:id/download/pdf
// @Summary Download text as PDF
// @Description Download the document text as a paginated PDF
// @Tags documents
// @Produce octet-stream
// @Param id path string true "Document ID (UUID)"
// @Success 200 {string} string "PDF attachment"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or document not parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/download/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	doc, ok := h.parsedDoc(c)
	if !ok {
		return
	}

	data, err := export.TextPDF(doc.FileName, doc.Parsed)
	if err != nil {
		HandleError(c, err)
		return
	}

	fileName := fmt.Sprintf("parsed_%s.pdf", exportStem(doc.FileName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

// OriginalFile handles GET /api/v1/documents/:id/file
// @Summary Redirect to the original file
// @Description Redirect to a presigned URL for the originally staged object (s3 staging backend only)
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 303 {string} string "Redirect to presigned URL"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or staging backend cannot presign"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/file [get]
func (h *DocumentHandler) OriginalFile(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	url, err := h.documentService.OriginalFileURL(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, url)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Description Delete the document record and its staged object when one is still present
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}
