package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// APIError represents an error response from the SelfDB API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("selfdb api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ErrorFromResponse builds an APIError from a non-2xx response body.
// SelfDB reports failures as {"detail": "..."}; fall back to the HTTP
// status text when the body is not in that shape.
func ErrorFromResponse(statusCode int, body []byte) *APIError {
	message := http.StatusText(statusCode)
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// NewRequest builds a request against the API with auth headers set.
// Used directly for bodies that cannot be replayed, such as multipart
// uploads, which bypass the retry path.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	return req, nil
}

// DoRequest executes a prepared request once, without retry, and
// decodes the JSON response into result when it is non-nil.
func (c *Client) DoRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ErrorFromResponse(resp.StatusCode, body)
	}
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Raw executes a request without retry and returns the response with
// its body still open, for streaming downloads. The caller must close
// the body. Non-2xx responses are drained and mapped to an APIError.
func (c *Client) Raw(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, ErrorFromResponse(resp.StatusCode, body)
	}
	return resp, nil
}

// doOnce performs a single round trip and returns the response body.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, ErrorFromResponse(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// Do performs a request with exponential backoff retry. body is
// JSON-encoded when non-nil. Only transport failures and retryable
// status codes are retried; 4xx responses fail immediately.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, reqBody any) ([]byte, error) {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	operation := func() ([]byte, error) {
		respBody, err := c.doOnce(ctx, method, path, query, payload)
		if err == nil {
			return respBody, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.maxTries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("retrying request",
				"method", method,
				"path", path,
				"backoff", next,
				"error", err,
			)
		}),
	)
}

// DoJSON performs a request with retries and decodes the JSON response
// into result when it is non-nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, reqBody, result any) error {
	respBody, err := c.Do(ctx, method, path, query, reqBody)
	if err != nil {
		return err
	}
	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
