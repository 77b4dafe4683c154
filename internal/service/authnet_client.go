package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"payment-relay/internal/models"
)

const maxResponseBytes = 1 << 20

// Gateway sends a hosted payment page request and returns the raw response
// body of a 2xx answer.
type Gateway interface {
	GetHostedPaymentPage(ctx context.Context, req *models.HostedPaymentPageRequest) ([]byte, error)
}

// AuthNetClient talks to one Authorize.net JSON endpoint. It never retries.
type AuthNetClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAuthNetClient(endpoint string, timeout time.Duration, logger *zap.Logger) *AuthNetClient {
	return &AuthNetClient{
		endpoint: endpoint,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

func (c *AuthNetClient) GetHostedPaymentPage(ctx context.Context, payload *models.HostedPaymentPageRequest) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	gatewayDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &TransportError{Hint: c.hintFor(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Hint: c.hintFor(err), Err: fmt.Errorf("failed to read response: %w", err)}
	}
	raw = stripBOM(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("gateway returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(raw)))

		diag := extractDiagnostic(raw)
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Hint:       http.StatusText(resp.StatusCode),
			Diagnostic: &diag,
		}
	}

	return raw, nil
}

func (c *AuthNetClient) hintFor(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("payment gateway did not respond within %s", c.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "request was cancelled before the payment gateway answered"
	}
	return "payment gateway is unreachable: " + err.Error()
}

// Authorize.net prefixes its JSON responses with a UTF-8 byte order mark.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}
