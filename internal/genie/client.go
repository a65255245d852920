// Package genie binds the Databricks Genie conversation API: the HTTP
// client, the completion poller and the answer resolver. All conversation
// state lives with the caller; the client is stateless between calls.
package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/yuanchaoma-db/genie-space/internal/auth"
	"github.com/yuanchaoma-db/genie-space/internal/logger"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = 500 * time.Millisecond
)

type Client struct {
	baseURL     string
	tokens      auth.TokenProvider
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

func New(host, spaceID string, tokens auth.TokenProvider, opts ...Option) *Client {
	base := host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	c := &Client{
		baseURL:     strings.TrimRight(base, "/") + "/api/2.0/genie/spaces/" + spaceID,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartConversation opens a new remote conversation with the first
// question.
func (c *Client) StartConversation(ctx context.Context, question string) (*StartConversationResponse, error) {
	var out StartConversationResponse
	err := c.call(ctx, "start-conversation", "POST", "/start-conversation", map[string]string{"content": question}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage adds a follow-up question to an existing conversation and
// returns the created message id.
func (c *Client) SendMessage(ctx context.Context, conversationID, question string) (string, error) {
	var out sendMessageResponse
	path := "/conversations/" + conversationID + "/messages"
	err := c.call(ctx, "send-message", "POST", path, map[string]string{"content": question}, &out)
	if err != nil {
		return "", err
	}
	if out.MessageID != "" {
		return out.MessageID, nil
	}
	return out.ID, nil
}

// GetMessage fetches the current state of a message.
func (c *Client) GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	var out Message
	path := "/conversations/" + conversationID + "/messages/" + messageID
	err := c.call(ctx, "get-message", "GET", path, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueryResult fetches the executed result of a query attachment.
func (c *Client) GetQueryResult(ctx context.Context, conversationID, messageID, attachmentID string) (*QueryResult, error) {
	var out QueryResult
	path := "/conversations/" + conversationID + "/messages/" + messageID + "/attachments/" + attachmentID + "/query-result"
	err := c.call(ctx, "get-query-result", "GET", path, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteQuery triggers execution of a query attachment. Only needed when
// the space does not auto-execute generated queries.
func (c *Client) ExecuteQuery(ctx context.Context, conversationID, messageID, attachmentID string) (json.RawMessage, error) {
	var out json.RawMessage
	path := "/conversations/" + conversationID + "/messages/" + messageID + "/attachments/" + attachmentID + "/execute-query"
	err := c.call(ctx, "execute-query", "POST", path, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// call runs one API operation under the retry policy: up to maxAttempts
// tries, delay doubling per attempt with full random jitter. A 401/403
// invalidates the token provider and earns one extra immediate retry
// outside the attempt budget; a second rejection fails the operation.
func (c *Client) call(ctx context.Context, op, method, path string, payload, out any) error {
	var jsonBody []byte
	if payload != nil {
		var err error
		jsonBody, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := range c.maxAttempts {
		err := c.doOnce(ctx, method, path, jsonBody, out)
		if err == nil {
			return nil
		}

		var se *statusError
		if errors.As(err, &se) && isAuthStatus(se.code) {
			logger.Warn("credential rejected, refreshing token", "op", op, "status", se.code)
			c.tokens.Invalidate()
			err = c.doOnce(ctx, method, path, jsonBody, out)
			if err == nil {
				return nil
			}
			if errors.As(err, &se) && isAuthStatus(se.code) {
				return &RemoteServiceError{Op: op, Err: fmt.Errorf("%w: %v", ErrAuth, err)}
			}
		}

		if ctx.Err() != nil {
			return &RemoteServiceError{Op: op, Err: ctx.Err()}
		}

		lastErr = err
		if attempt < c.maxAttempts-1 {
			delay := c.jitteredDelay(attempt)
			logger.Debug("request failed, retrying", "op", op, "attempt", attempt+1, "delay", delay, "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &RemoteServiceError{Op: op, Err: ctx.Err()}
			}
		}
	}

	return &RemoteServiceError{Op: op, Err: lastErr}
}

// jitteredDelay is full jitter over an exponentially growing window:
// uniform in [0, base << attempt).
func (c *Client) jitteredDelay(attempt int) time.Duration {
	window := float64(c.baseDelay << attempt)
	return time.Duration(rand.Float64() * window)
}

func (c *Client) doOnce(ctx context.Context, method, path string, jsonBody []byte, out any) error {
	// Fresh credential immediately before the network call; the provider
	// owns caching and refresh.
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	var body io.Reader
	if jsonBody != nil {
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, body: truncate(respBody, 512)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
