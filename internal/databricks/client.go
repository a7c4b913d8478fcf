// Package databricks is a minimal REST client for the two Databricks
// surfaces this service needs: the SQL Statement Execution API and DBFS
// file uploads. It deliberately covers nothing else.
package databricks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docsight/internal/config"
	"docsight/internal/domain"
	"docsight/internal/port"
)

const (
	statementsPath = "/api/2.0/sql/statements/"
	dbfsPath       = "/api/2.0/dbfs"

	// DBFS add-block rejects payloads over 1 MB before encoding.
	dbfsChunkSize = 1 << 20
)

// Statement execution states, per the Statement Execution API.
const (
	statePending   = "PENDING"
	stateRunning   = "RUNNING"
	stateSucceeded = "SUCCEEDED"
	stateFailed    = "FAILED"
	stateCanceled  = "CANCELED"
	stateClosed    = "CLOSED"
)

// Client talks to a Databricks workspace over its REST API.
type Client struct {
	host         string
	token        string
	warehouseID  string
	pollInterval time.Duration
	client       *http.Client
}

// NewClient creates a workspace client from config.
func NewClient(cfg *config.DatabricksConfig) *Client {
	return newClient(cfg, cfg.Host)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.DatabricksConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.DatabricksConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	poll := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if poll == 0 {
		poll = 500 * time.Millisecond
	}
	return &Client{
		host:         strings.TrimRight(endpoint, "/"),
		token:        cfg.Token,
		warehouseID:  cfg.WarehouseID,
		pollInterval: poll,
		client:       &http.Client{Timeout: timeout},
	}
}

type statementRequest struct {
	Statement     string `json:"statement"`
	WarehouseID   string `json:"warehouse_id"`
	WaitTimeout   string `json:"wait_timeout,omitempty"`
	OnWaitTimeout string `json:"on_wait_timeout,omitempty"`
}

// statementResponse models the Statement Execution API response envelope.
type statementResponse struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string `json:"state"`
		Error *struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	} `json:"status"`
	Manifest *struct {
		Schema struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"schema"`
	} `json:"manifest"`
	Result *struct {
		DataArray [][]string `json:"data_array"`
	} `json:"result"`
}

// ExecuteStatement submits a SQL statement to the configured warehouse and
// waits for completion, polling while the statement is PENDING or RUNNING.
// waitTimeout is the server-side wait (e.g. "30s"); the overall deadline
// belongs to ctx.
func (c *Client) ExecuteStatement(ctx context.Context, statement, waitTimeout string) (*port.StatementResult, error) {
	reqBody := statementRequest{
		Statement:     statement,
		WarehouseID:   c.warehouseID,
		WaitTimeout:   waitTimeout,
		OnWaitTimeout: "CONTINUE",
	}

	var resp statementResponse
	if err := c.post(ctx, statementsPath, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("executing statement: %w", err)
	}

	for resp.Status.State == statePending || resp.Status.State == stateRunning {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for statement %s: %w", resp.StatementID, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		statementID := resp.StatementID
		resp = statementResponse{}
		if err := c.get(ctx, statementsPath+statementID, &resp); err != nil {
			return nil, fmt.Errorf("polling statement %s: %w", statementID, err)
		}
		if resp.StatementID == "" {
			resp.StatementID = statementID
		}
	}

	switch resp.Status.State {
	case stateSucceeded:
		return buildResult(&resp), nil
	case stateFailed, stateCanceled, stateClosed:
		msg := strings.ToLower(resp.Status.State)
		if resp.Status.Error != nil && resp.Status.Error.Message != "" {
			msg = resp.Status.Error.Message
		}
		return nil, fmt.Errorf("statement %s: %s: %w", resp.StatementID, msg, domain.ErrStatementFailed)
	default:
		return nil, fmt.Errorf("statement %s in unexpected state %q: %w", resp.StatementID, resp.Status.State, domain.ErrStatementFailed)
	}
}

func buildResult(resp *statementResponse) *port.StatementResult {
	result := &port.StatementResult{}
	if resp.Manifest != nil {
		for _, col := range resp.Manifest.Schema.Columns {
			result.Columns = append(result.Columns, col.Name)
		}
	}
	if resp.Result != nil {
		result.Rows = resp.Result.DataArray
	}
	return result
}

// UploadFile streams r to path on DBFS through the create/add-block/close
// handle protocol.
func (c *Client) UploadFile(ctx context.Context, path string, r io.Reader) error {
	var created struct {
		Handle int64 `json:"handle"`
	}
	create := map[string]interface{}{"path": path, "overwrite": true}
	if err := c.post(ctx, dbfsPath+"/create", create, &created); err != nil {
		return fmt.Errorf("creating dbfs handle for %s: %w", path, err)
	}

	buf := make([]byte, dbfsChunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			block := map[string]interface{}{
				"handle": created.Handle,
				"data":   base64.StdEncoding.EncodeToString(buf[:n]),
			}
			if err := c.post(ctx, dbfsPath+"/add-block", block, nil); err != nil {
				return fmt.Errorf("writing dbfs block to %s: %w", path, err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading upload for %s: %w", path, readErr)
		}
	}

	if err := c.post(ctx, dbfsPath+"/close", map[string]interface{}{"handle": created.Handle}, nil); err != nil {
		return fmt.Errorf("closing dbfs handle for %s: %w", path, err)
	}
	return nil
}

// DeleteFile removes a file from DBFS.
func (c *Client) DeleteFile(ctx context.Context, path string) error {
	del := map[string]interface{}{"path": path, "recursive": false}
	if err := c.post(ctx, dbfsPath+"/delete", del, nil); err != nil {
		return fmt.Errorf("deleting dbfs file %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling databricks API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(resp, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, body []byte) error {
	detail := truncate(string(body), 500)
	var apiErr struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		detail = apiErr.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("databricks API error (status %d): %s: %w", resp.StatusCode, detail, domain.ErrPlatformAuth)
	case http.StatusTooManyRequests:
		baseErr := fmt.Errorf("databricks API error (status %d): %s", resp.StatusCode, detail)
		return NewRateLimitError(baseErr, ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}
	return fmt.Errorf("databricks API error (status %d): %s: %w", resp.StatusCode, detail, domain.ErrPlatformUnavailable)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
