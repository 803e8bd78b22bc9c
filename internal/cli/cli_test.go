package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kcal-cli/internal/calories"
	"kcal-cli/internal/nutrition"
	"kcal-cli/internal/store"
	"kcal-cli/internal/tui"
	"kcal-cli/internal/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errb.String(), err
}

// isolate keeps the test away from ~/.kcal and the caller's KCAL_* env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KCAL_CONFIG_DIR", dir)
	for _, k := range []string{"KCAL_CONFIG", "KCAL_ENDPOINT", "KCAL_FORMAT", "KCAL_LOG_LEVEL", "KCAL_LOG_FILE", "KCAL_DB", "KCAL_ADDR"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestCalc_SendsOrderedQuery(t *testing.T) {
	isolate(t)
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["Total: 500 kcal"]`))
	}))
	defer ts.Close()

	stdout, stderr, err := runCLI(t, "--endpoint", ts.URL, "calc", "--food", "Apple", "--gram", "150", "--food", "Rice", "--gram", "200")
	require.NoError(t, err, stderr)
	assert.Equal(t, "productCount=2&food=Apple&gram=150&food=Rice&gram=200", gotQuery)

	var env struct {
		Data calcResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, []string{"Total: 500 kcal"}, env.Data.Lines)
	assert.Equal(t, ts.URL+"?"+gotQuery, env.Data.URL)

	stdout, _, err = runCLI(t, "--endpoint", ts.URL, "--format", "text", "calc", "--food", "Apple", "--gram", "150")
	require.NoError(t, err)
	assert.Equal(t, "Total: 500 kcal\n", stdout)
}

func TestCalc_ValidationBlocksRequest(t *testing.T) {
	isolate(t)
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer ts.Close()

	_, stderr, err := runCLI(t, "--endpoint", ts.URL, "calc", "--food", " ", "--gram", "0")
	require.Error(t, err)
	assert.Contains(t, stderr, "Please fix the highlighted rows:")
	assert.False(t, called)

	_, _, err = runCLI(t, "--endpoint", ts.URL, "calc", "--food", "Apple")
	assert.Error(t, err)
}

func TestCalc_ServerErrorMessage(t *testing.T) {
	isolate(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"error":"Bad Request","message":"gram for 'Apple' must be a positive number"}`))
	}))
	defer ts.Close()

	_, stderr, err := runCLI(t, "--endpoint", ts.URL, "calc", "--food", "Apple", "--gram", "5")
	require.Error(t, err)
	assert.Contains(t, stderr, "request failed with status code 400")
	assert.Contains(t, stderr, "must be a positive number")
}

func TestProducts_CRUD(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "kcal.sqlite")

	stdout, stderr, err := runCLI(t, "products", "create", "--db", db, "--name", "Apple", "--calories", "52")
	require.NoError(t, err, stderr)
	assert.JSONEq(t, `{"data":{"id":1,"name":"Apple","caloriesPer100g":52}}`, stdout)

	_, _, err = runCLI(t, "products", "update", "1", "--db", db, "--calories", "55")
	require.NoError(t, err)

	stdout, _, err = runCLI(t, "--format", "text", "products", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "1\tApple\t55 kcal/100g\n", stdout)

	_, _, err = runCLI(t, "products", "delete", "1", "--db", db)
	require.NoError(t, err)

	_, stderr, err = runCLI(t, "products", "show", "1", "--db", db)
	require.Error(t, err)
	assert.NotEmpty(t, stderr)

	_, _, err = runCLI(t, "products", "show", "abc", "--db", db)
	assert.Error(t, err)
}

func TestCalcAgainstServer_RecordsMeal(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "kcal.sqlite")

	ctx := context.Background()
	st, err := store.Open(ctx, db)
	require.NoError(t, err)
	defer st.Close()
	svc := nutrition.NewService(st)
	_, err = svc.CreateProduct(ctx, "Apple", 52)
	require.NoError(t, err)
	srv, err := web.NewServer(web.ServerConfig{Addr: "127.0.0.1:0"}, svc, zap.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	stdout, stderr, err := runCLI(t, "--endpoint", ts.URL+"/products/CalculateCalories", "--format", "text", "calc", "--food", "Apple", "--gram", "150")
	require.NoError(t, err, stderr)
	assert.Equal(t, "150g. Apple / cal/100g: 52\nTotal calories: 78\n", stdout)

	stdout, _, err = runCLI(t, "--format", "text", "meals", "show", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "78 kcal")
	assert.Contains(t, stdout, "150g Apple")
}

func TestDocs(t *testing.T) {
	isolate(t)
	stdout, _, err := runCLI(t, "docs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":["api","config","form","serve"]}`, stdout)

	stdout, _, err = runCLI(t, "--format", "text", "docs", "form")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Submitting")

	_, _, err = runCLI(t, "docs", "nope")
	assert.Error(t, err)
}

func TestServeUntilDone_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	go func() { done <- serveUntilDone(ctx, ln, h, zap.NewNop()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestUnknownFormat(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, "--format", "xml", "docs")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown format"))
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	stdout, stderr, err := runCLI(t, "config", "init")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, filepath.Join(dir, "config.yaml"))

	_, _, err = runCLI(t, "config", "init")
	assert.Error(t, err)

	stdout, _, err = runCLI(t, "--endpoint", "http://calc.test", "config", "show")
	require.NoError(t, err)
	var env struct {
		Data struct {
			Endpoint  string `json:"endpoint"`
			StatusTTL string `json:"status_ttl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, "http://calc.test", env.Data.Endpoint)
	assert.Equal(t, "15s", env.Data.StatusTTL)
}

func TestRoot_NoSubcommandStartsForm(t *testing.T) {
	isolate(t)
	var got []tui.Options
	orig := startTUI
	startTUI = func(opts tui.Options) error {
		got = append(got, opts)
		return nil
	}
	t.Cleanup(func() { startTUI = orig })

	_, stderr, err := runCLI(t, "--endpoint", "http://calc.test/api")
	require.NoError(t, err, stderr)
	_, stderr, err = runCLI(t, "form")
	require.NoError(t, err, stderr)

	require.Len(t, got, 2)
	client, ok := got[0].Calculator.(*calories.Client)
	require.True(t, ok, "calculator %T", got[0].Calculator)
	assert.Equal(t, "http://calc.test/api", client.Endpoint)
	assert.Equal(t, 15*time.Second, got[0].StatusTTL)

	client, ok = got[1].Calculator.(*calories.Client)
	require.True(t, ok)
	assert.Equal(t, calories.DefaultEndpoint, client.Endpoint)
}
