package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LookupResult is the best match a lookup backend found for a food name.
type LookupResult struct {
	Name            string
	CaloriesPer100g int
}

// Lookup resolves foods that are not in the local product store.
type Lookup interface {
	Lookup(ctx context.Context, query string) (LookupResult, error)
}

// HTTPLookup posts term=<query> as a form and expects
// {"results":[{"text":"...","cal":N}, ...]}; the first result wins.
type HTTPLookup struct {
	URL    string
	Client *http.Client
}

func NewHTTPLookup(rawURL string) *HTTPLookup {
	return &HTTPLookup{URL: strings.TrimSpace(rawURL), Client: &http.Client{Timeout: 15 * time.Second}}
}

type lookupResponse struct {
	Results []struct {
		Text string          `json:"text"`
		Cal  json.RawMessage `json:"cal"`
	} `json:"results"`
}

func (l *HTTPLookup) Lookup(ctx context.Context, query string) (LookupResult, error) {
	form := url.Values{}
	form.Set("term", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return LookupResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup %q: %w", query, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup %q: %w", query, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LookupResult{}, &BadRequestError{
			Message: fmt.Sprintf("calorie lookup for %q failed with status %d", query, resp.StatusCode),
		}
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return LookupResult{}, &BadRequestError{Message: fmt.Sprintf("could not read calorie data for %q", query), Err: err}
	}
	if len(lr.Results) == 0 {
		return LookupResult{}, notFound(nil, "no product information found for %q", query)
	}
	first := lr.Results[0]
	name := strings.TrimSpace(first.Text)
	if name == "" {
		name = query
	}
	return LookupResult{Name: name, CaloriesPer100g: parseCal(first.Cal)}, nil
}

// parseCal accepts the calorie value as a JSON number or numeric string.
func parseCal(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	n := json.Number(strings.Trim(string(raw), `"`))
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}
