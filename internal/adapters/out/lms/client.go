// Package lms is the HTTP client of the external Logistics Management
// System. Every request is signed with the shared API key; server errors are
// retried by RetryTransport before the client sees them.
package lms

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/clock"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second

	headerAPIKey    = "X-API-Key"
	headerTimestamp = "X-Timestamp"
	headerSignature = "X-Signature"
)

type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// StatusError is a non-2xx answer from the LMS.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("lms %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("lms %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

var _ ports.LMSClient = (*Client)(nil)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	clock   clock.Clock
}

func NewClient(cfg Config, clk clock.Clock, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	transport := NewRetryTransport(
		otelhttp.NewTransport(http.DefaultTransport),
		cfg.RetryAttempts,
		cfg.RetryDelay,
		logger,
	)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		clock:   clk,
	}
}

type shipmentPayload struct {
	HandoverID          string    `json:"handoverId"`
	HandoverNumber      string    `json:"handoverNumber"`
	PackingJobNumber    string    `json:"packingJobNumber"`
	RiderID             string    `json:"riderId"`
	TrackingNumber      string    `json:"trackingNumber"`
	ManifestNumber      string    `json:"manifestNumber"`
	TotalItems          int       `json:"totalItems"`
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
	RequestedAt         time.Time `json:"requestedAt"`
}

type shipmentResponse struct {
	ShipmentID     string `json:"shipmentId"`
	TrackingNumber string `json:"trackingNumber"`
	Status         string `json:"status"`
}

type statusPayload struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) CreateShipment(ctx context.Context, req ports.ShipmentRequest) (ports.ShipmentReceipt, error) {
	body, err := c.do(ctx, http.MethodPost, "/shipments", shipmentPayload{
		HandoverID:          req.HandoverID,
		HandoverNumber:      req.HandoverNumber,
		PackingJobNumber:    req.JobNumber,
		RiderID:             req.RiderID,
		TrackingNumber:      req.TrackingNumber,
		ManifestNumber:      req.ManifestNumber,
		TotalItems:          req.TotalItems,
		SpecialInstructions: req.SpecialInstructions,
		RequestedAt:         req.RequestedAt,
	})
	if err != nil {
		return ports.ShipmentReceipt{}, err
	}

	receipt := ports.ShipmentReceipt{Payload: body}
	if len(bytes.TrimSpace(body)) == 0 {
		return receipt, nil
	}
	var resp shipmentResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return ports.ShipmentReceipt{}, fmt.Errorf("decode lms shipment response: %w", err)
	}
	receipt.LMSReference = resp.ShipmentID
	receipt.TrackingNumber = resp.TrackingNumber
	receipt.Status = resp.Status
	return receipt, nil
}

func (c *Client) UpdateShipmentStatus(ctx context.Context, trackingNumber string, update ports.ShipmentStatusUpdate) error {
	path := "/shipments/" + url.PathEscape(trackingNumber) + "/status"
	_, err := c.do(ctx, http.MethodPut, path, statusPayload{
		Status:    update.Status,
		Reason:    update.Reason,
		UpdatedAt: update.UpdatedAt,
	})
	return err
}

// Health succeeds when GET /health answers 2xx.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	timestamp := strconv.FormatInt(c.clock.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerTimestamp, timestamp)
	req.Header.Set(headerSignature, Sign(body, timestamp, c.apiKey))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lms %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read lms response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}

// Sign returns hex(sha256(payload + timestamp + apiKey)).
func Sign(payload []byte, timestamp, apiKey string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(timestamp))
	h.Write([]byte(apiKey))
	return hex.EncodeToString(h.Sum(nil))
}
