package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"stockboard/domain/core"
	"stockboard/domain/dataset"
	"stockboard/internal"
	"stockboard/internal/errors"
)

const serviceName = "analysis"

// Client talks to the analysis backend over HTTP. Concurrent identical GETs
// share one round trip.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	group      singleflight.Group
	logger     *internal.Logger
}

// NewClient creates a client for the configured backend
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ValidationError(err.Error()), "invalid analysis client config")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     internal.DefaultLogger.WithComponent("AnalysisClient"),
	}, nil
}

// BaseURL returns the backend root the client is bound to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload posts the file as multipart field "file" to /upload-csv
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*dataset.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload form")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.Wrap(err, "failed to read upload file")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-csv", &body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result dataset.UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("malformed upload response: %w", err))
	}
	if result.Token.IsEmpty() {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("upload response carried no token"))
	}
	c.logger.Info("Uploaded %s: token=%s rows=%d can_analyze=%t",
		filename, result.Token, result.Summary.Rows, result.Summary.CanAnalyze)
	return &result, nil
}

// Metrics fetches the flat metric mapping of a stock dataset
func (c *Client) Metrics(ctx context.Context, token core.Token) (dataset.StockMetrics, error) {
	var metrics dataset.StockMetrics
	if err := c.getJSON(ctx, stockPath(token, "metrics"), &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// StockCharts fetches price, moving-average and volatility series
func (c *Client) StockCharts(ctx context.Context, token core.Token) (*dataset.StockCharts, error) {
	var charts dataset.StockCharts
	if err := c.getJSON(ctx, stockPath(token, "charts"), &charts); err != nil {
		return nil, err
	}
	return &charts, nil
}

// Returns fetches the return histogram, cumulative and rolling volatility series
func (c *Client) Returns(ctx context.Context, token core.Token) (*dataset.StockReturns, error) {
	var returns dataset.StockReturns
	if err := c.getJSON(ctx, stockPath(token, "returns"), &returns); err != nil {
		return nil, err
	}
	return &returns, nil
}

// MetaKPIs fetches the listing summary figures
func (c *Client) MetaKPIs(ctx context.Context, token core.Token) (*dataset.MetaKPIs, error) {
	var kpis dataset.MetaKPIs
	if err := c.getJSON(ctx, metaPath(token, "kpis"), &kpis); err != nil {
		return nil, err
	}
	return &kpis, nil
}

// MetaCharts fetches the exchange, market category and round lot series
func (c *Client) MetaCharts(ctx context.Context, token core.Token) (*dataset.MetaCharts, error) {
	var charts dataset.MetaCharts
	if err := c.getJSON(ctx, metaPath(token, "charts"), &charts); err != nil {
		return nil, err
	}
	return &charts, nil
}

// MetaAdvanced fetches the optional advanced listing sections
func (c *Client) MetaAdvanced(ctx context.Context, token core.Token) (*dataset.MetaAdvanced, error) {
	var adv dataset.MetaAdvanced
	if err := c.getJSON(ctx, metaPath(token, "advanced"), &adv); err != nil {
		return nil, err
	}
	return &adv, nil
}

func stockPath(token core.Token, endpoint string) string {
	return "/analyze/" + url.PathEscape(token.String()) + "/" + endpoint
}

func metaPath(token core.Token, endpoint string) string {
	return "/analyze-meta/" + url.PathEscape(token.String()) + "/" + endpoint
}

// getJSON performs a GET and decodes the body into out. Callers asking for
// the same path at the same time share the response body.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	v, err, shared := c.group.Do(path, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build request for %s", path)
		}
		return c.do(req)
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.Trace("Shared in-flight response for %s", path)
	}
	if err := json.Unmarshal(v.([]byte), out); err != nil {
		return errors.ExternalServiceError(serviceName, fmt.Errorf("malformed response from %s: %w", path, err))
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}
	c.logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalServiceError(serviceName,
			fmt.Errorf("%s %s returned status %d: %s", req.Method, req.URL.Path, resp.StatusCode, errorMessage(body)))
	}
	return body, nil
}

// errorMessage extracts the backend's {"error": "..."} message when present.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return msg.String()
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
