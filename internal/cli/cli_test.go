package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

const testFile = `{"name":["A","E","B"],"graph":[[1],[0,2],[1]],"selfint":[-2,-1,-2],"K2":3,"blps":[1]}
{"#":1,"K2":4,"N":4,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"chain":[0,1],"selfint":[-1,-1],"disc":[-1,-3]}
{"#":2,"WH":0,"K2":4,"N0":4,"N1":9,"used":[0,1,2],"blds":[],"blps":[[0,1]],"en0":1,"ea0":0,"eb0":2,"en1":0,"ea1":0,"eb1":0,"chain0":[0],"chain1":[2,3],"selfint":[-4,-1,-2,-5],"disc":[-2,0,-4,-5]}
`

const testConfig = `[summary]
chern = false
precision = 2

[cache]
backend = "none"
`

// setup writes the example file and a config disabling the cache.
func setup(t *testing.T) (file, cfg string) {
	t.Helper()
	dir := t.TempDir()
	file = filepath.Join(dir, "examples.jsonl")
	cfg = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(file, []byte(testFile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return file, cfg
}

func execute(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMatrixJSON(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "matrix", "--json", "--verify", file, "1")
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	var got struct {
		BaseUsed    []int     `json:"base_used"`
		Names       []string  `json:"names"`
		Matrix      [][]int64 `json:"matrix"`
		Determinant int64     `json:"determinant"`
		Verified    bool      `json:"verified"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if strings.Join(got.Names, ",") != "A,B" {
		t.Errorf("names = %v, want [A B]", got.Names)
	}
	if got.Determinant != 0 || !got.Verified {
		t.Errorf("determinant = %d verified = %v, want 0 true", got.Determinant, got.Verified)
	}
}

func TestMatrixTable(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "matrix", file, "1")
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	for _, want := range []string{"Example 1", "Determinant", "-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExampleErrors(t *testing.T) {
	file, cfg := setup(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad index", []string{"matrix", file, "x"}, errors.ErrCodeInvalidInput},
		{"zero index", []string{"matrix", file, "0"}, errors.ErrCodeInvalidInput},
		{"missing example", []string{"show", file, "9"}, errors.ErrCodeExampleNotFound},
		{"missing file", []string{"invariants", filepath.Join(t.TempDir(), "none.jsonl"), "1"}, errors.ErrCodeFileNotFound},
		{"bad format", []string{"dot", "-f", "gif", file, "1"}, errors.ErrCodeInvalidFormat},
		{"bad precision", []string{"show", "--precision", "20", file, "1"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, cfg, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestShowRaw(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "show", "--raw", file, "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out, "Example with K^2 = 4, (n,a) = (4,1), length = 2\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if strings.Contains(out, "Determinant") {
		t.Errorf("raw report should not contain the matrix:\n%s", out)
	}
}

func TestShowAnalyzed(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "show", file, "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Intersection matrix of base curves", "Determinant: 0."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInvariantsJSON(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "invariants", "--json", file, "1")
	if err != nil {
		t.Fatalf("invariants: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) == 0 {
		t.Error("empty result")
	}
}

func TestSummaryStdout(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "summary", "--no-progress", "-o", "-", file)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.HasPrefix(out, "%\\usepackage{longtable}\n") {
		t.Errorf("missing preamble:\n%s", out)
	}
	if strings.Count(out, "\\begin{longtable}") != 2 {
		t.Errorf("want one table per chain count:\n%s", out)
	}
}

func TestSummaryFile(t *testing.T) {
	file, cfg := setup(t)
	dest := filepath.Join(t.TempDir(), "out.tex")
	if _, err := execute(t, cfg, "summary", "--no-progress", "-c", "-o", dest, file); err != nil {
		t.Fatalf("summary: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\\end{longtable}") {
		t.Errorf("summary not written:\n%s", data)
	}
}

func TestDotCommand(t *testing.T) {
	file, cfg := setup(t)
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "used curves",
			args: []string{"dot", file, "1"},
			want: []string{"graph G {", `label="A"`, `label="B"`},
		},
		{
			name:    "contracted",
			args:    []string{"dot", "--contracted", file, "1"},
			want:    []string{"0 -- 2;"},
			notWant: []string{`label="E`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, cfg, tt.args...)
			if err != nil {
				t.Fatalf("dot: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wahl", "config.toml")
	if _, err := execute(t, path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	_, err := execute(t, path, "config", "init")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v, want INVALID_INPUT", err)
	}
	if _, err := execute(t, path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, err := execute(t, path, "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, %v", out, err)
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	cacheDir := filepath.Join(dir, "cache")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(cacheDir) {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}
	if _, err := execute(t, cfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	_, cfg := setup(t)
	out, err := execute(t, cfg, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "wahl") {
		t.Error("completion script does not mention wahl")
	}
}

func TestRealizableStdout(t *testing.T) {
	file, cfg := setup(t)
	out, err := execute(t, cfg, "realizable", "--k2", "4", "--stdout", file)
	if err != nil {
		t.Fatalf("realizable: %v", err)
	}
	for _, want := range []string{
		"{Realizable configurations, 1 chain, $K^2 = 4$}",
		"{Realizable configurations, 2 chains, $K^2 = 4$}",
		"\\endfoot\n\n0 & 2 & 0 & 0 & 0 & 1 & 0 & 0 & 0 & $-0.44$ & \\texttt{examples.jsonl} -- 1\n\\end{longtable}\n",
		"\\endfoot\n\n0 & 2 & 0 & 0 & 0 & 1 & 0 & 0 & 0 & $-0.44$ & \\texttt{examples.jsonl} -- 2\n\\end{longtable}\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRealizableFiles(t *testing.T) {
	file, cfg := setup(t)
	dir := t.TempDir()
	if _, err := execute(t, cfg, "realizable", "--k2", "4", "-d", dir, file); err != nil {
		t.Fatalf("realizable: %v", err)
	}
	for _, name := range []string{"Found_K4P1.tex", "Found_K4P2.tex"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if strings.Count(string(data), "\\begin{longtable}") != 1 {
			t.Errorf("%s: want one table:\n%s", name, data)
		}
	}

	empty := t.TempDir()
	if _, err := execute(t, cfg, "realizable", "-d", empty, file); err != nil {
		t.Fatalf("realizable with no matching K²: %v", err)
	}
	if entries, _ := os.ReadDir(empty); len(entries) != 0 {
		t.Errorf("wrote %d files for an empty K²", len(entries))
	}
}

const statsFile = `{"name":["A","E","B"],"graph":[[1],[0,2],[1]],"selfint":[-2,-1,-2],"K2":3,"blps":[1]}
{"#":1,"K2":2,"N":4,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"chain":[0,1],"selfint":[-1,-1],"disc":[-1,-3],"nef":true,"nef_warn":false,"obs":true,"Qef":true}
{"#":1,"K2":2,"N":4,"used":[0,2],"blds":[1],"blps":[],"en":0,"ea":0,"eb":0,"chain":[0,1],"selfint":[-1,-1],"disc":[-1,-3],"nef":true,"nef_warn":false,"obs":false,"Qef":true}
`

func TestStats(t *testing.T) {
	_, cfg := setup(t)
	file := filepath.Join(t.TempDir(), "stats.jsonl")
	if err := os.WriteFile(file, []byte(statsFile), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, cfg, "stats", "--json", file)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var got struct {
		Surfaces int `json:"surfaces"`
		Buckets  []struct {
			K2            int64 `json:"k2"`
			Surfaces      int   `json:"surfaces"`
			Singularities int   `json:"singularities"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Surfaces != 1 || len(got.Buckets) != 4 {
		t.Fatalf("census = %+v", got)
	}
	if b := got.Buckets[1]; b.K2 != 2 || b.Surfaces != 1 || b.Singularities != 1 {
		t.Errorf("K² = 2 bucket = %+v", b)
	}

	out, err = execute(t, cfg, "stats", file)
	if err != nil {
		t.Fatalf("stats table: %v", err)
	}
	if !strings.Contains(out, "Configurations") {
		t.Errorf("table missing header:\n%s", out)
	}

	_, err = execute(t, cfg, "stats", "--min-k2", "5", "--max-k2", "1", file)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("inverted range: err = %v", err)
	}
}
