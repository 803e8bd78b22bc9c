package calories

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kcal-cli/internal/form"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestCalculate_SendsOrderedQueryAndDecodesLines(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/products/CalculateCalories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["150g. Apple / cal/100g: 52","Total calories: 78"]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/products/CalculateCalories", time.Second)
	q := form.BuildQuery([]form.Row{{Food: "Apple ", Grams: "150"}, {Food: "Rice", Grams: "200"}})
	lines, err := c.Calculate(context.Background(), q)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if gotQuery != "productCount=2&food=Apple&gram=150&food=Rice&gram=200" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if diff := cmp.Diff([]string{"150g. Apple / cal/100g: 52", "Total calories: 78"}, lines); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
	c.HTTPClient.CloseIdleConnections()
}

func TestCalculate_NonSuccessStatusCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"error":"Bad Request","message":"productCount must be positive"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Calculate(context.Background(), form.BuildQuery(nil))
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RequestError, got %T %v", err, err)
	}
	if rerr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rerr.StatusCode)
	}
	if !strings.Contains(rerr.Error(), "status code 400") || !strings.Contains(rerr.Error(), "productCount must be positive") {
		t.Fatalf("unexpected message %q", rerr.Error())
	}
	c.HTTPClient.CloseIdleConnections()
}

func TestCalculate_BadBodyIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Calculate(context.Background(), form.BuildQuery(nil))
	var rerr *RequestError
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusOK {
		t.Fatalf("expected decode RequestError, got %v", err)
	}
	c.HTTPClient.CloseIdleConnections()
}

func TestCalculate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u := srv.URL
	srv.Close()

	c := New(u, time.Second)
	_, err := c.Calculate(context.Background(), form.BuildQuery(nil))
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if rerr.StatusCode != 0 {
		t.Fatalf("expected no status code, got %d", rerr.StatusCode)
	}
	if !strings.HasPrefix(rerr.Error(), "network error") {
		t.Fatalf("unexpected message %q", rerr.Error())
	}
}

func TestURL_AppendsToExistingQuery(t *testing.T) {
	c := New("http://example.test/calc?key=1", 0)
	got := c.URL(form.BuildQuery(nil))
	if got != "http://example.test/calc?key=1&productCount=0" {
		t.Fatalf("unexpected url %q", got)
	}
	if New("", 0).Endpoint != DefaultEndpoint {
		t.Fatalf("empty endpoint should fall back to default")
	}
}
