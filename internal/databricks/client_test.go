package databricks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsight/internal/config"
	"docsight/internal/domain"
)

func newTestClient(srv *httptest.Server) *Client {
	cfg := &config.DatabricksConfig{
		Token:          "test-token",
		WarehouseID:    "wh-1",
		TimeoutSecs:    5,
		PollIntervalMS: 1,
	}
	return NewClientWithEndpoint(cfg, srv.URL)
}

func TestExecuteStatement_ImmediateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/2.0/sql/statements/", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var req struct {
			Statement     string `json:"statement"`
			WarehouseID   string `json:"warehouse_id"`
			WaitTimeout   string `json:"wait_timeout"`
			OnWaitTimeout string `json:"on_wait_timeout"`
		}
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "SELECT 1", req.Statement)
		assert.Equal(t, "wh-1", req.WarehouseID)
		assert.Equal(t, "30s", req.WaitTimeout)
		assert.Equal(t, "CONTINUE", req.OnWaitTimeout)

		fmt.Fprint(w, `{
			"statement_id": "stmt-1",
			"status": {"state": "SUCCEEDED"},
			"manifest": {"schema": {"columns": [{"name": "path"}, {"name": "parsed_content"}]}},
			"result": {"data_array": [["/Volumes/in/report.pdf", "{\"elements\": []}"]]}
		}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "30s")
	require.NoError(t, err)
	assert.Equal(t, []string{"path", "parsed_content"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "/Volumes/in/report.pdf", result.Rows[0][0])
}

func TestExecuteStatement_PollsUntilSucceeded(t *testing.T) {
	var gets int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			fmt.Fprint(w, `{"statement_id": "stmt-7", "status": {"state": "PENDING"}}`)
		case http.MethodGet:
			assert.Equal(t, "/api/2.0/sql/statements/stmt-7", r.URL.Path)
			if atomic.AddInt32(&gets, 1) == 1 {
				fmt.Fprint(w, `{"statement_id": "stmt-7", "status": {"state": "RUNNING"}}`)
				return
			}
			fmt.Fprint(w, `{
				"statement_id": "stmt-7",
				"status": {"state": "SUCCEEDED"},
				"result": {"data_array": [["done"]]}
			}`)
		}
	}))
	defer srv.Close()

	result, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "0s")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"done"}}, result.Rows)
	assert.EqualValues(t, 2, atomic.LoadInt32(&gets))
}

func TestExecuteStatement_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"statement_id": "stmt-9",
			"status": {"state": "FAILED", "error": {"error_code": "BAD_REQUEST", "message": "table not found"}}
		}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "30s")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStatementFailed)
	assert.Contains(t, err.Error(), "table not found")
}

func TestExecuteStatement_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error_code": "PERMISSION_DENIED", "message": "invalid token"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "30s")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPlatformAuth)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestExecuteStatement_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "30s")
	require.Error(t, err)

	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
}

func TestExecuteStatement_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `upstream unavailable`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExecuteStatement(context.Background(), "SELECT 1", "30s")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPlatformUnavailable)
}

func TestUploadFile_ChunksAndCloses(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var blocks [][]byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/api/2.0/dbfs/create":
			var req struct {
				Path      string `json:"path"`
				Overwrite bool   `json:"overwrite"`
			}
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "/tmp/docsight/doc.pdf", req.Path)
			assert.True(t, req.Overwrite)
			fmt.Fprint(w, `{"handle": 42}`)
		case "/api/2.0/dbfs/add-block":
			var req struct {
				Handle int64  `json:"handle"`
				Data   string `json:"data"`
			}
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.EqualValues(t, 42, req.Handle)
			decoded, decErr := base64.StdEncoding.DecodeString(req.Data)
			assert.NoError(t, decErr)
			mu.Lock()
			blocks = append(blocks, decoded)
			mu.Unlock()
			fmt.Fprint(w, `{}`)
		case "/api/2.0/dbfs/close":
			var req struct {
				Handle int64 `json:"handle"`
			}
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.EqualValues(t, 42, req.Handle)
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	// Just over one chunk, so the upload splits into two blocks.
	payload := bytes.Repeat([]byte("x"), (1<<20)+16)
	err := newTestClient(srv).UploadFile(context.Background(), "/tmp/docsight/doc.pdf", bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/2.0/dbfs/create",
		"/api/2.0/dbfs/add-block",
		"/api/2.0/dbfs/add-block",
		"/api/2.0/dbfs/close",
	}, calls)
	assert.Equal(t, payload, bytes.Join(blocks, nil))
}

func TestDeleteFile(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/api/2.0/dbfs/delete", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var req struct {
			Path      string `json:"path"`
			Recursive bool   `json:"recursive"`
		}
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "/tmp/docsight/doc.pdf", req.Path)
		assert.False(t, req.Recursive)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	err := newTestClient(srv).DeleteFile(context.Background(), "/tmp/docsight/doc.pdf")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ParseRetryAfterHeader("soon"))
	assert.Equal(t, 30, ParseRetryAfterHeader("30"))
}
