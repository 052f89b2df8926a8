package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sysscope/sysscope/internal/plan"
)

const (
	maxResponseBytes      = 50 << 20 // 50 MB
	maxErrorResponseBytes = 1 << 20  // 1 MB
)

// HTTPClient talks to the diagnostics backend over its JSON/HTTP API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a Client for the backend at baseURL.
// token is optional; when set it is sent as a bearer token.
func NewHTTPClient(baseURL, token string) (*HTTPClient, error) {
	raw := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	if _, err := url.Parse(raw); err != nil {
		return nil, NewGatewayError(ErrInvalidConfig,
			fmt.Sprintf("invalid gateway URL %q: %v", baseURL, err),
			"Set gateway.url in sysscope.yml or SYSSCOPE_GATEWAY_URL")
	}
	return &HTTPClient{
		baseURL: raw,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultAPITimeout,
		},
	}, nil
}

// GenerateTestPlan requests a new plan from the backend generator.
func (c *HTTPClient) GenerateTestPlan(ctx context.Context) (*plan.TestPlan, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/test-plan/generate", nil)
	if err != nil {
		return nil, err
	}
	var p plan.TestPlan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("invalid test plan response: %v", err), "")
	}
	p.Reindex()
	return &p, nil
}

// ExecuteTests submits the enabled items for asynchronous execution.
func (c *HTTPClient) ExecuteTests(ctx context.Context, req ExecutionRequest) (*ExecutionAck, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal execution request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/api/test/execute", payload)
	if err != nil {
		return nil, err
	}
	var ack ExecutionAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("invalid execution response: %v", err), "")
	}
	return &ack, nil
}

// GetProgress fetches the full current progress snapshot.
func (c *HTTPClient) GetProgress(ctx context.Context) (*ProgressSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/test/progress", nil)
	if err != nil {
		return nil, err
	}
	var records []ProgressRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("invalid progress response: %v", err), "")
	}
	return &ProgressSnapshot{Records: records}, nil
}

// GetSystemInfo fetches the host metadata snapshot.
func (c *HTTPClient) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/system/info", nil)
	if err != nil {
		return nil, err
	}
	var info SystemInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("invalid system info response: %v", err), "")
	}
	return &info, nil
}

// reportListResponse matches the backend's report listing structure.
type reportListResponse struct {
	Reports []ReportInfo `json:"reports"`
}

// ListReports lists the generated Markdown reports.
func (c *HTTPClient) ListReports(ctx context.Context) ([]ReportInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/reports", nil)
	if err != nil {
		return nil, err
	}
	var resp reportListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("invalid report list response: %v", err), "")
	}
	return resp.Reports, nil
}

// GetReport fetches one report's Markdown content.
func (c *HTTPClient) GetReport(ctx context.Context, reportID string) (*Report, error) {
	if reportID == "" {
		return nil, NewGatewayError(ErrInvalidParameter,
			"Report ID is required", "Provide a valid report ID")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(reportID), nil)
	if err != nil {
		var ge *GatewayError
		if errors.As(err, &ge) && ge.httpStatus == http.StatusNotFound {
			return nil, NewGatewayError(ErrReportNotFound,
				fmt.Sprintf("Report '%s' not found", reportID),
				"List available reports first")
		}
		return nil, err
	}
	return &Report{
		ID:      reportID,
		Name:    reportID + ".md",
		Content: string(body),
	}, nil
}

// do performs one request against the backend and returns the response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("failed to create request: %v", err), "")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		code, isNet := MapNetworkError(err)
		if isNet {
			return nil, NewGatewayError(code,
				fmt.Sprintf("gateway unreachable: %v", err),
				"Check that the diagnostics backend is running")
		}
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("%s %s failed: %v", method, path, err), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorResponseBytes))
		ge := NewGatewayError(ErrAPIError,
			fmt.Sprintf("gateway returned HTTP %d for %s %s: %s",
				resp.StatusCode, method, path, strings.TrimSpace(string(respBody))), "")
		ge.httpStatus = resp.StatusCode
		return nil, ge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewGatewayError(ErrAPIError,
			fmt.Sprintf("failed to read response: %v", err), "")
	}
	return body, nil
}
