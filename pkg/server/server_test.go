package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

const threeCurves = `{"name":["A","E","B"],"graph":[[1],[0,2],[1]],"selfint":[-2,-1,-2],"K2":3,"blps":[1]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	s := New(analysis.NewRunner(nil, nil, logger), logger, Options{Version: "test"})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestIDIsKept(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestDeterminant(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/determinant", `{"matrix":[[2,1],[1,2]]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got determinantResponse
	decodeBody(t, resp, &got)
	if got.Determinant != 3 || got.Size != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestProject(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/project", `{"graph":`+threeCurves+`,"used":[0,2]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got projectResponse
	decodeBody(t, resp, &got)
	if !slices.Equal(got.BaseUsed, []int{0, 2}) || got.Determinant != 0 {
		t.Errorf("got %+v", got)
	}
	if got.Matrix[0][0] != -1 || got.Matrix[0][1] != 1 {
		t.Errorf("matrix = %v", got.Matrix)
	}
}

func TestBlowdown(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/blowdown", `{"graph":`+threeCurves+`,"used":[0,2],"order":[1]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got blowdownResponse
	decodeBody(t, resp, &got)
	if !got.NormalCrossing || got.RevisedK2 != 4 || got.Contracted != 1 {
		t.Errorf("got %+v", got.Contraction)
	}
	if !slices.Equal(got.Adjacency[0], []int{2}) || len(got.Adjacency[1]) != 0 {
		t.Errorf("graph = %v", got.Adjacency)
	}
	if got.SelfInt[0] != -1 || got.SelfInt[2] != -1 {
		t.Errorf("selfint = %v", got.SelfInt)
	}
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		wantIndex int
	}{
		{"selection", `{"graph":` + threeCurves + `,"used":[0,2],"order":[1],"verify":true}`, 0},
		{"example", `{"graph":` + threeCurves + `,"example":{"#":1,"K2":4,"N":4,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"chain":[0,1],"selfint":[-1,-1],"disc":[-1,-3]}}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/analyze", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var got analysis.Result
			decodeBody(t, resp, &got)
			if got.Index != tt.wantIndex || got.Ratio != "-4/9" || got.Invariants.C2 != 9 {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"not square", "/v1/determinant", `{"matrix":[[1,2]]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty body", "/v1/determinant", ``, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", "/v1/determinant", `{"rows":[[1]]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing graph", "/v1/project", `{"used":[0]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed graph", "/v1/project", `{"graph":{"graph":"x"},"used":[0]}`, http.StatusBadRequest, errors.ErrCodeInvalidRecord},
		{"asymmetric graph", "/v1/project", `{"graph":{"graph":[[1],[]],"selfint":[-1,-1],"blps":[]},"used":[0]}`, http.StatusBadRequest, errors.ErrCodeInvalidGraph},
		{"unknown curve", "/v1/analyze", `{"graph":` + threeCurves + `,"used":[7]}`, http.StatusBadRequest, errors.ErrCodeInvalidSelection},
		{"base curve contracted", "/v1/blowdown", `{"graph":` + threeCurves + `,"used":[0],"order":[0]}`, http.StatusBadRequest, errors.ErrCodeInvalidSelection},
		{"bad example", "/v1/analyze", `{"graph":` + threeCurves + `,"example":{"#":5}}`, http.StatusBadRequest, errors.ErrCodeInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var got errorResponse
			decodeBody(t, resp, &got)
			if got.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Error.Code, tt.code, got.Error.Message)
			}
			if got.RequestID == "" {
				t.Error("error response without request ID")
			}
		})
	}
}

// emptyGraph returns a graph record of n base curves that meet nothing.
func emptyGraph(n int) string {
	adj := make([][]int, n)
	selfint := make([]int64, n)
	for i := range n {
		adj[i] = []int{}
		selfint[i] = -2
	}
	data, _ := json.Marshal(map[string]any{"graph": adj, "selfint": selfint, "blps": []int{}})
	return string(data)
}

func TestCurveLimit(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(analysis.NewRunner(nil, nil, logger), logger, Options{MaxCurves: 3})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"graph at limit", "/v1/project", `{"graph":` + emptyGraph(3) + `,"used":[0]}`, http.StatusOK},
		{"graph over limit", "/v1/project", `{"graph":` + emptyGraph(4) + `,"used":[0]}`, http.StatusBadRequest},
		{"blowdown over limit", "/v1/blowdown", `{"graph":` + emptyGraph(4) + `,"used":[0]}`, http.StatusBadRequest},
		{"selfint only", "/v1/analyze", `{"graph":{"graph":[],"selfint":[-2,-2,-2,-2]},"used":[0]}`, http.StatusBadRequest},
		{"matrix over limit", "/v1/determinant", `{"matrix":[[1,0,0,0],[0,1,0,0],[0,0,1,0],[0,0,0,1]]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusOK {
				return
			}
			var got errorResponse
			decodeBody(t, resp, &got)
			if got.Error.Code != errors.ErrCodeInvalidInput {
				t.Errorf("code = %q, want %q", got.Error.Code, errors.ErrCodeInvalidInput)
			}
			if !strings.Contains(got.Error.Message, "limit is 3") {
				t.Errorf("message = %q", got.Error.Message)
			}
		})
	}
}

func TestDefaultCurveLimit(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/project", `{"graph":`+emptyGraph(DefaultMaxCurves+1)+`,"used":[0]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	var got errorResponse
	decodeBody(t, resp, &got)
	if got.Error.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %q, want %q", got.Error.Code, errors.ErrCodeInvalidInput)
	}
}

func TestContentType(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/determinant", "text/plain", bytes.NewReader([]byte(`{"matrix":[]}`)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}
