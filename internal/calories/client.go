package calories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kcal-cli/internal/form"

	"go.uber.org/zap"
)

const DefaultEndpoint = "http://localhost:8080/products/CalculateCalories"

// RequestError is returned for any failed calculation request: transport
// failures, non-2xx responses and undecodable bodies alike.
type RequestError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func New(endpoint string, timeout time.Duration) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     zap.NewNop(),
	}
}

// URL returns the full request URL for q.
func (c *Client) URL(q form.Query) string {
	sep := "?"
	if strings.Contains(c.Endpoint, "?") {
		sep = "&"
	}
	return c.Endpoint + sep + q.Encode()
}

// Calculate sends one GET with q and returns the display lines from the
// response body.
func (c *Client) Calculate(ctx context.Context, q form.Query) ([]string, error) {
	u := c.URL(q)
	log := c.logger()
	log.Debug("calculate request", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		log.Warn("calculate request failed", zap.Error(err))
		return nil, &RequestError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := parseError(resp.StatusCode, body)
		log.Warn("calculate request rejected", zap.Int("status", resp.StatusCode), zap.String("message", rerr.Message))
		return nil, rerr
	}

	var lines []string
	if err := json.Unmarshal(body, &lines); err != nil {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response body: %v", err),
			Err:        err,
		}
	}
	log.Debug("calculate response", zap.Int("lines", len(lines)))
	return lines, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseError(code int, body []byte) *RequestError {
	msg := fmt.Sprintf("request failed with status code %d", code)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if s := strings.TrimSpace(eb.Message); s != "" {
			msg += ": " + s
		} else if s := strings.TrimSpace(eb.Error); s != "" {
			msg += ": " + s
		}
	} else if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		msg += ": " + s
	}
	return &RequestError{StatusCode: code, Message: msg}
}

func transportMessage(err error) string {
	var te interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return "network error: " + err.Error()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
