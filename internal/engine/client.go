// Package engine is the HTTP client for the scanning engine's command API.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
)

const (
	pathPortScan      = "/api/command/portscan"
	pathBannerGrab    = "/api/command/bannergrab"
	pathMACLookup     = "/api/command/maclookup"
	pathHostUpdate    = "/api/host/update"
	pathScannerStart  = "/api/scanner/start"
	pathScannerPause  = "/api/scanner/pause"
	pathScannerResume = "/api/scanner/resume"
	pathScannerStop   = "/api/scanner/stop"
	pathScan          = "/api/scan"

	maxErrorBody = 64 << 10
)

var _ dispatch.Engine = (*Client)(nil)

// Client talks to one engine.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewClient returns a client for the engine at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}, nil
}

func (c *Client) PortScan(ctx context.Context, req models.PortScanRequest) (models.PortScanResponse, error) {
	var resp models.PortScanResponse

	return resp, c.do(ctx, http.MethodPost, pathPortScan, req, &resp)
}

func (c *Client) BannerGrab(ctx context.Context, req models.BannerGrabRequest) (models.BannerGrabResponse, error) {
	var resp models.BannerGrabResponse

	return resp, c.do(ctx, http.MethodPost, pathBannerGrab, req, &resp)
}

func (c *Client) MACLookup(ctx context.Context, req models.MACLookupRequest) (models.MACLookupResponse, error) {
	var resp models.MACLookupResponse

	return resp, c.do(ctx, http.MethodPost, pathMACLookup, req, &resp)
}

func (c *Client) UpdateHost(ctx context.Context, req models.HostUpdateRequest) (models.StatusResponse, error) {
	var resp models.StatusResponse

	return resp, c.do(ctx, http.MethodPost, pathHostUpdate, req, &resp)
}

func (c *Client) StartScanner(ctx context.Context, req models.ScannerStartRequest) (models.StatusResponse, error) {
	var resp models.StatusResponse

	return resp, c.do(ctx, http.MethodPost, pathScannerStart, req, &resp)
}

func (c *Client) PauseScanner(ctx context.Context) (models.StatusResponse, error) {
	var resp models.StatusResponse

	return resp, c.do(ctx, http.MethodPost, pathScannerPause, nil, &resp)
}

func (c *Client) ResumeScanner(ctx context.Context) (models.StatusResponse, error) {
	var resp models.StatusResponse

	return resp, c.do(ctx, http.MethodPost, pathScannerResume, nil, &resp)
}

func (c *Client) StopScanner(ctx context.Context) (models.StatusResponse, error) {
	var resp models.StatusResponse

	return resp, c.do(ctx, http.MethodPost, pathScannerStop, nil, &resp)
}

// Snapshot fetches the engine's current host map.
func (c *Client) Snapshot(ctx context.Context) (models.Snapshot, error) {
	snap := models.Snapshot{}

	if err := c.do(ctx, http.MethodGet, pathScan, nil, &snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Engine request failed")

		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("Engine responded")

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload models.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(raw))
	}

	return &Error{Status: resp.StatusCode, Message: payload.Error}
}
