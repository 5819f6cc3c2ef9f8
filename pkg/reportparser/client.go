package reportparser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/pkg/config"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
)

const (
	parsePath                 = "/v1/reports:parse"
	responseBodyLimit   int64 = 1024
	defaultParseTimeout       = 30 * time.Second
)

var errBaseURLRequired = errors.New("report parser base url is required")

// Client wraps the external report-parser service that turns uploaded PDF
// sale reports into structured sale data.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the report parser client from service configuration.
func NewClient(cfg config.ReportParserConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultParseTimeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ParsedReport is the structured sale extracted from a PDF report.
type ParsedReport struct {
	OrderNumber  string           `json:"order_number"`
	CustomerName string           `json:"customer_name"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	ShippingCost decimal.Decimal  `json:"shipping_cost"`
	Total        decimal.Decimal  `json:"total"`
	OrderDate    *time.Time       `json:"order_date,omitempty"`
	Commission   *decimal.Decimal `json:"commission_percentage,omitempty"`
}

// Parse submits the PDF to the parser service and returns the extracted
// sale data. Unparseable documents come back as InvalidFile so the caller
// can surface the parser's message directly.
func (c *Client) Parse(ctx context.Context, filename string, file io.Reader) (*ParsedReport, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "report parser client not configured")
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report file is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build report payload")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read report file")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize report payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+parsePath, &buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build parse request")
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute parse request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFile, "report could not be parsed").
			WithDetails(map[string]any{"parser_message": strings.TrimSpace(string(msg))})
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"parse request failed")
	}

	var parsed ParsedReport
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode parse response")
	}
	if parsed.OrderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFile, "report is missing an order number")
	}
	return &parsed, nil
}
