package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// AgentQueryRequest represents the agent query request body.
type AgentQueryRequest struct {
	Table        string `json:"table" binding:"required" example:"main.docs.parsed_documents"`
	InputColumn  string `json:"input_column" binding:"required" example:"doc_text"`
	OutputColumn string `json:"output_column" binding:"required" example:"answer"`
	Prompt       string `json:"prompt" binding:"required" example:"Summarize the key obligations in this contract: "`
	Limit        int    `json:"limit" example:"100"`
	Name         string `json:"name" example:"contract obligations"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"databricks warehouse not configured"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"document deleted"`
}

// TextResponse represents the plain text view response.
type TextResponse struct {
	Text string `json:"text" example:"First paragraph.\n\nSecond paragraph."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
