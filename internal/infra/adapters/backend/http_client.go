package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"parallel-muhit-webapp/internal/domain"
	"parallel-muhit-webapp/internal/domain/model"
	"parallel-muhit-webapp/internal/domain/ports/adapter"
	"parallel-muhit-webapp/internal/infra/logging"
	"parallel-muhit-webapp/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.BackendClient = (*HTTPClient)(nil)

const (
	apiKeyHeader = "X-API-KEY"

	pathProfile       = "/api/common/profile/me/"
	pathFAQ           = "/api/common/extra/faq/"
	pathHistory       = "/api/common/profile/transaction-history/"
	pathPaymentCheck  = "/api/common/profile/payment-check/"
	receiptFormField  = "payment_check"
	maxErrorBodyBytes = 4 << 10
)

// HTTPClient implements BackendClient over plain HTTP calls.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

// NewHTTPClient creates a backend client. A zero timeout leaves the
// transport without a deadline.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// fieldErrors is the 400 body of the payment-check endpoint.
type fieldErrors struct {
	NonFieldErrors []string `json:"non_field_errors"`
}

// GetProfile implements BackendClient.GetProfile.
func (c *HTTPClient) GetProfile(ctx context.Context, apiKey string) (*model.UserProfile, error) {
	if apiKey == "" {
		metrics.IncBackendSkipped("profile")
		return nil, domain.ErrMissingCredential
	}
	var profile model.UserProfile
	if err := c.getJSON(ctx, "profile", pathProfile, apiKey, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetFAQs implements BackendClient.GetFAQs. The endpoint is public.
func (c *HTTPClient) GetFAQs(ctx context.Context) ([]model.FAQ, error) {
	var faqs []model.FAQ
	if err := c.getJSON(ctx, "faq", pathFAQ, "", &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// GetTransactionHistory implements BackendClient.GetTransactionHistory.
func (c *HTTPClient) GetTransactionHistory(ctx context.Context, apiKey string, page int) (*model.TransactionPage, error) {
	if apiKey == "" {
		metrics.IncBackendSkipped("history")
		return nil, domain.ErrMissingCredential
	}
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	var out model.TransactionPage
	if err := c.getJSON(ctx, "history", pathHistory+"?"+q.Encode(), apiKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPaymentReceipt implements BackendClient.UploadPaymentReceipt.
func (c *HTTPClient) UploadPaymentReceipt(ctx context.Context, apiKey string, file *model.ReceiptFile) (*model.UploadResult, error) {
	if apiKey == "" {
		metrics.IncBackendSkipped("payment_check")
		return nil, domain.ErrMissingCredential
	}
	if file == nil || len(file.Data) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, receiptFormField, file.Name))
	hdr.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("failed to write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathPaymentCheck, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(ctx, "payment_check", "error", start, 0)
		return nil, fmt.Errorf("%w: send receipt: %v", domain.ErrServiceError, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		c.observe(ctx, "payment_check", "ok", start, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		return &model.UploadResult{OK: true}, nil
	case http.StatusBadRequest:
		c.observe(ctx, "payment_check", "validation", start, resp.StatusCode)
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		var fe fieldErrors
		verr := &domain.ValidationError{}
		if json.Unmarshal(raw, &fe) == nil && len(fe.NonFieldErrors) > 0 {
			verr.Message = fe.NonFieldErrors[0]
		}
		return nil, verr
	case http.StatusUnauthorized:
		c.observe(ctx, "payment_check", "unauthenticated", start, resp.StatusCode)
		return nil, domain.ErrUnauthenticated
	default:
		c.observe(ctx, "payment_check", "error", start, resp.StatusCode)
		return nil, fmt.Errorf("%w: payment-check status %d", domain.ErrServiceError, resp.StatusCode)
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint, path, apiKey string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(ctx, endpoint, "error", start, 0)
		return fmt.Errorf("%w: %s: %v", domain.ErrServiceError, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.observe(ctx, endpoint, "unauthenticated", start, resp.StatusCode)
		return domain.ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(ctx, endpoint, "error", start, resp.StatusCode)
		return fmt.Errorf("%w: %s status %d", domain.ErrServiceError, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(ctx, endpoint, "error", start, resp.StatusCode)
		return fmt.Errorf("%w: read %s body: %v", domain.ErrServiceError, endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.observe(ctx, endpoint, "error", start, resp.StatusCode)
		return fmt.Errorf("%w: decode %s: %v", domain.ErrServiceError, endpoint, err)
	}
	c.observe(ctx, endpoint, "ok", start, resp.StatusCode)
	return nil
}

func (c *HTTPClient) observe(ctx context.Context, endpoint, outcome string, start time.Time, status int) {
	elapsed := time.Since(start)
	metrics.ObserveBackendCall(endpoint, outcome, elapsed)
	logging.With(ctx, c.log).Debug().
		Str("endpoint", endpoint).
		Str("outcome", outcome).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("backend_call")
}
