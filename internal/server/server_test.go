package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

func newTestServer(t *testing.T, mutate func(*runtime.ServeConfig)) *httptest.Server {
	t.Helper()
	cfg := runtime.DefaultConfig.Serve
	cfg.AllowedOrigins = []string{"http://editor.test"}
	if mutate != nil {
		mutate(&cfg)
	}
	ts := httptest.NewServer(New(runtime.New(), cfg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestParse(t *testing.T) {
	ts := newTestServer(t, nil)

	var ok ParseResponse
	resp := post(t, ts, "/v1/parse", `{"expression": "1+2 *x"}`, &ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ok.OK)
	assert.Equal(t, "1 + 2 * x", ok.Formatted)
	assert.Empty(t, ok.Diagnostics)

	var bad ParseResponse
	post(t, ts, "/v1/parse", `{"expression": "(1 +"}`, &bad)
	assert.False(t, bad.OK)
	require.Len(t, bad.Diagnostics, 1)
	assert.Equal(t, diagnostics.ESyntax, bad.Diagnostics[0].Code)
}

func TestRun(t *testing.T) {
	ts := newTestServer(t, nil)

	var res RunResponse
	post(t, ts, "/v1/run", `{"source": "a: Array<Int>(4) = [2,4,6,7]\nprint a"}`, &res)
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"Array Value: Size 4, Elements: [2, 4, 6, 7]"}, res.Output)
	assert.Empty(t, res.Diagnostics)
}

func TestRunReportsVariables(t *testing.T) {
	ts := newTestServer(t, nil)

	var res RunResponse
	post(t, ts, "/v1/run", `{"source": "x: Int = 2\nlater: Int = x * 10\nname: String = \"bob\"\nprint x"}`, &res)
	require.True(t, res.OK, "%v", res.Diagnostics)
	assert.JSONEq(t, `{"x":2,"later":null,"name":null}`, string(res.Variables), "unread initializers stay pending")
}

func TestRunFailureKeepsOutput(t *testing.T) {
	ts := newTestServer(t, nil)

	var res RunResponse
	post(t, ts, "/v1/run", `{"source": "print 1\nprint 1 / 0"}`, &res)
	assert.False(t, res.OK)
	assert.Equal(t, []string{"1"}, res.Output)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostics.EArith, res.Diagnostics[0].Code)
	assert.Equal(t, ProgramFile, res.Diagnostics[0].Span.File)
}

func TestRunParseError(t *testing.T) {
	ts := newTestServer(t, nil)

	var res RunResponse
	post(t, ts, "/v1/run", `{"source": "print ("}`, &res)
	assert.False(t, res.OK)
	assert.Empty(t, res.RunID)
	assert.NotNil(t, res.Output)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostics.ESyntax, res.Diagnostics[0].Code)
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t, nil)

	var res CheckResponse
	post(t, ts, "/v1/check", `{"source": "return 1"}`, &res)
	assert.True(t, res.OK, "warnings do not fail a check")
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostics.WReturnOutsideFunc, res.Diagnostics[0].Code)
	assert.Equal(t, diagnostics.SeverityWarning, res.Diagnostics[0].Severity)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t, func(cfg *runtime.ServeConfig) { cfg.MaxBodyBytes = 64 })

	resp := post(t, ts, "/v1/run", `{"source": 5}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/v1/run", `{"program": "print 1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown fields are rejected")

	resp = post(t, ts, "/v1/run", `{"source": "`+strings.Repeat("x", 100)+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "oversized bodies are rejected")

	resp, err := http.Get(ts.URL + "/v1/run")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *runtime.ServeConfig) {
		cfg.RunsPerSecond = 0.001
		cfg.RunBurst = 1
	})

	resp := post(t, ts, "/v1/run", `{"source": "print 1"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = post(t, ts, "/v1/run", `{"source": "print 1"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/run", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://editor.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://editor.test", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://elsewhere.test")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRunConfig(t *testing.T) {
	cfg := runtime.DefaultConfig
	cfg.Serve.MaxSteps = 500
	cfg.Serve.TimeLimitMs = 100
	cfg.Run.TimeLimitMs = 50

	got := RunConfig(cfg)
	assert.Equal(t, int64(500), got.Run.MaxSteps)
	assert.Equal(t, int64(50), got.Run.TimeLimitMs, "the stricter run limit is kept")
	assert.Equal(t, int64(0), cfg.Run.MaxSteps, "the input is not modified")
}

func TestRunEndlessLoopHitsBudget(t *testing.T) {
	cfg := runtime.DefaultConfig
	cfg.Serve.MaxSteps = 1000
	cfg.Serve.AllowedOrigins = []string{"*"}
	ts := httptest.NewServer(New(runtime.New(runtime.WithConfig(RunConfig(cfg))), cfg.Serve, nil).Handler())
	t.Cleanup(ts.Close)

	var res RunResponse
	post(t, ts, "/v1/run", `{"source": "print \"start\"\nwhile true {}"}`, &res)
	assert.False(t, res.OK)
	assert.Equal(t, []string{"start"}, res.Output)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostics.EBudget, res.Diagnostics[0].Code)
}
