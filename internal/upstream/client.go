// Package upstream implements the HTTP client for the third-party document-sync API:
// host discovery, device registration, token refresh and document upload.
package upstream

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

	"github.com/allisson/docrelay/internal/metrics"
)

// Endpoint names used for metrics and error reporting.
const (
	EndpointDiscovery = "discovery"
	EndpointRegister  = "register"
	EndpointRefresh   = "refresh"
	EndpointUpload    = "upload"
)

const (
	registerPath = "/token/json/2/device/new"
	refreshPath  = "/token/json/2/user/new"
	uploadPath   = "/doc/v2/files"

	// maxErrorBody caps how much of a failed response is kept for diagnostics.
	maxErrorBody = 4 << 10
)

// Hosts is the resolved pair of upstream base URLs.
type Hosts struct {
	AuthHost string
	SyncHost string
}

// Document is a single file sent to the sync host.
type Document struct {
	Name           string
	ContentType    string
	Body           io.Reader
	IdempotencyKey string
}

// UploadResult is what the sync host answered for an accepted upload.
type UploadResult struct {
	StatusCode int
	DocID      string
}

// Client talks to the upstream document-sync API.
type Client struct {
	httpClient   *http.Client
	discoveryURL string
	deviceDesc   string
	metrics      metrics.BusinessMetrics
}

// NewClient creates a Client. A zero timeout disables the per-request deadline.
func NewClient(
	discoveryURL, deviceDesc string,
	timeout time.Duration,
	businessMetrics metrics.BusinessMetrics,
) *Client {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		discoveryURL: discoveryURL,
		deviceDesc:   deviceDesc,
		metrics:      businessMetrics,
	}
}

type discoveryResponse struct {
	AuthHost string `json:"auth_host"`
	SyncHost string `json:"sync_host"`
}

// Discover resolves the current auth and sync hosts.
func (c *Client) Discover(ctx context.Context) (*Hosts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build discovery request: %w", err)
	}

	body, _, err := c.do(req, EndpointDiscovery)
	if err != nil {
		return nil, err
	}

	var resp discoveryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDiscovery, err)
	}
	if strings.TrimSpace(resp.AuthHost) == "" || strings.TrimSpace(resp.SyncHost) == "" {
		return nil, fmt.Errorf("%w: auth_host and sync_host are required", ErrMalformedDiscovery)
	}

	return &Hosts{
		AuthHost: hostURL(resp.AuthHost),
		SyncHost: hostURL(resp.SyncHost),
	}, nil
}

type registerRequest struct {
	Code       string `json:"code"`
	DeviceDesc string `json:"deviceDesc"`
	DeviceID   string `json:"deviceID"`
	Secret     string `json:"secret"`
}

// RegisterDevice exchanges a one-time link code for a refresh token.
func (c *Client) RegisterDevice(ctx context.Context, authHost, linkCode, deviceID string) (string, error) {
	payload, err := json.Marshal(registerRequest{
		Code:       linkCode,
		DeviceDesc: c.deviceDesc,
		DeviceID:   deviceID,
		Secret:     "",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authHost+registerPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doToken(req, EndpointRegister)
}

// RefreshToken exchanges a refresh token for a short-lived access token.
func (c *Client) RefreshToken(ctx context.Context, authHost, refreshToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authHost+refreshPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	return c.doToken(req, EndpointRefresh)
}

type uploadMeta struct {
	Parent   string `json:"parent"`
	FileName string `json:"file_name"`
}

// UploadDocument creates a document on the sync host.
func (c *Client) UploadDocument(
	ctx context.Context,
	syncHost, accessToken string,
	doc Document,
) (*UploadResult, error) {
	meta, err := json.Marshal(uploadMeta{Parent: "", FileName: doc.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, syncHost+uploadPath, doc.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", doc.ContentType)
	req.Header.Set("rm-meta", base64.StdEncoding.EncodeToString(meta))
	req.Header.Set("rm-source", "WebLibrary")
	if doc.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", doc.IdempotencyKey)
	}

	body, status, err := c.do(req, EndpointUpload)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{StatusCode: status}
	var parsed struct {
		DocID string `json:"docID"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		result.DocID = parsed.DocID
	}
	return result, nil
}

// doToken runs a token endpoint call and returns the trimmed, non-empty body.
func (c *Client) doToken(req *http.Request, endpoint string) (string, error) {
	body, _, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("%s: %w", endpoint, ErrEmptyBody)
	}
	return token, nil
}

// do sends the request and returns the body and status of a 2xx response. Any
// other status becomes a *StatusError carrying a truncated copy of the body.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, int, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(req.Context(), endpoint, 0, time.Since(start))
		return nil, 0, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.metrics.RecordUpstreamRequest(req.Context(), endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}

// hostURL turns a bare host name into an https base URL. Values that already
// carry a scheme are used verbatim.
func hostURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}
