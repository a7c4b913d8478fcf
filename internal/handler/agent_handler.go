package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsight/internal/csvexport"
	"docsight/internal/service"
)

// AgentHandler handles ad-hoc agent query endpoints.
type AgentHandler struct {
	agentService service.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agentService service.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

type agentQueryBody struct {
	Table        string `json:"table" binding:"required"`
	InputColumn  string `json:"input_column" binding:"required"`
	OutputColumn string `json:"output_column" binding:"required"`
	Prompt       string `json:"prompt" binding:"required"`
	Limit        int    `json:"limit"`
	Name         string `json:"name"`
}

func (b agentQueryBody) toInput() service.AgentQueryInput {
	return service.AgentQueryInput{
		Table:        b.Table,
		InputColumn:  b.InputColumn,
		OutputColumn: b.OutputColumn,
		Prompt:       b.Prompt,
		Limit:        b.Limit,
	}
}

// Run handles POST /api/v1/agent/query
// @Summary Run an agent query
// @Description Run ai_query with the given prompt over a warehouse table column and return the rows
// @Tags agent
// @Accept json
// @Produce json
// @Param request body AgentQueryRequest true "Query details"
// @Success 200 {object} Response{data=domain.AgentQueryResult} "Query rows"
// @Failure 400 {object} ErrorResponseBody "Invalid request or identifiers"
// @Failure 429 {object} ErrorResponseBody "Databricks rate limit"
// @Failure 502 {object} ErrorResponseBody "Databricks unavailable or statement failed"
// @Router /agent/query [post]
func (h *AgentHandler) Run(c *gin.Context) {
	var req agentQueryBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "table, input_column, output_column, and prompt are required")
		return
	}

	result, err := h.agentService.Run(c.Request.Context(), req.toInput())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Export handles POST /api/v1/agent/query/export
// @Summary Run an agent query and download CSV
// @Description Run ai_query and return the rows as a UTF-8 CSV attachment
// @Tags agent
// @Accept json
// @Produce text/csv
// @Param request body AgentQueryRequest true "Query details"
// @Success 200 {string} string "CSV attachment"
// @Failure 400 {object} ErrorResponseBody "Invalid request or identifiers"
// @Failure 429 {object} ErrorResponseBody "Databricks rate limit"
// @Failure 502 {object} ErrorResponseBody "Databricks unavailable or statement failed"
// @Router /agent/query/export [post]
func (h *AgentHandler) Export(c *gin.Context) {
	var req agentQueryBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "table, input_column, output_column, and prompt are required")
		return
	}

	result, err := h.agentService.Run(c.Request.Context(), req.toInput())
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := h.agentService.ExportCSV(result)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Table
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvexport.BuildFilename(name)))
	c.Data(http.StatusOK, "text/csv", data)
}
