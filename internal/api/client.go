// Package api talks to the remote reply service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/models"
)

const maxErrorBody = 2048

// ReplyRequest is the payload sent for one user message
type ReplyRequest struct {
	ContactID models.ContactID `json:"contactId"`
	UserText  string           `json:"userText"`
}

// ReplyClient obtains a contact's reply to a user message
type ReplyClient interface {
	FetchReply(ctx context.Context, req ReplyRequest) (string, error)
}

// HTTPReplyClient is the ReplyClient backed by the reply service
type HTTPReplyClient struct {
	httpClient tls_client.HttpClient
	baseURL    string
	timeout    time.Duration
}

// Ensure HTTPReplyClient implements ReplyClient
var _ ReplyClient = (*HTTPReplyClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*HTTPReplyClient)

// WithBackendURL sets the reply service base URL
func WithBackendURL(url string) ClientOption {
	return func(c *HTTPReplyClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPReplyClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying transport (used in tests)
func WithHTTPClient(client tls_client.HttpClient) ClientOption {
	return func(c *HTTPReplyClient) {
		c.httpClient = client
	}
}

// NewClient creates a reply client
func NewClient(opts ...ClientOption) (*HTTPReplyClient, error) {
	client := &HTTPReplyClient{
		baseURL: models.DefaultBackendURL,
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the reply service base URL
func (c *HTTPReplyClient) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the full message endpoint URL
func (c *HTTPReplyClient) Endpoint() string {
	return c.baseURL + models.EndpointMessage
}

// FetchReply posts the user's message and returns the reply text.
// Non-200 responses yield *errors.APIError, transport failures
// *errors.NetworkError, and a blank reply errors.ErrEmptyReply.
func (c *HTTPReplyClient) FetchReply(ctx context.Context, req ReplyRequest) (string, error) {
	endpoint := c.Endpoint()

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apierrors.NewNetworkError("fetch reply", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(errorBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", apierrors.NewAPIError(resp.StatusCode, endpoint, msg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewNetworkError("read reply", endpoint, err)
	}

	return parseReply(body)
}

func parseReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("reply body is not valid JSON", "")
	}

	// Only a missing or empty replyText counts as empty; whitespace is
	// shown as sent.
	reply := gjson.GetBytes(body, "replyText")
	if reply.Type != gjson.String || reply.String() == "" {
		return "", apierrors.ErrEmptyReply
	}

	return reply.String(), nil
}
