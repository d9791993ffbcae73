package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%q, %v, %v), want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"det":3}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `{"det":3}` {
		t.Fatalf("Get = (%q, %v, %v)", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned as hit")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	type graph struct {
		SelfInt []int `json:"selfint"`
		K2      int   `json:"K2"`
	}
	a, err := HashJSON(graph{SelfInt: []int{-2, -1}, K2: 3})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(graph{SelfInt: []int{-2, -1}, K2: 3})
	c, _ := HashJSON(graph{SelfInt: []int{-1, -2}, K2: 3})
	if a != b {
		t.Error("equal values should hash equally")
	}
	if a == c {
		t.Error("different values should hash differently")
	}
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("HashJSON(chan) should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	pk := k.ProjectionKey("g1")
	if !strings.HasPrefix(pk, "projection:") || pk != k.ProjectionKey("g1") {
		t.Errorf("ProjectionKey unexpected: %s", pk)
	}
	if pk == k.ProjectionKey("g2") {
		t.Error("different graphs should produce different projection keys")
	}

	a1 := k.AnalysisKey("g1", "e1", AnalysisKeyOpts{})
	if !strings.HasPrefix(a1, "analysis:") {
		t.Errorf("AnalysisKey unexpected: %s", a1)
	}
	if a1 == k.AnalysisKey("g1", "e1", AnalysisKeyOpts{Verify: true}) {
		t.Error("options should change the analysis key")
	}
	if a1 == k.AnalysisKey("g1", "e2", AnalysisKeyOpts{}) {
		t.Error("examples should change the analysis key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")

	if got := scoped.ProjectionKey("g"); got != "api:"+inner.ProjectionKey("g") {
		t.Errorf("ScopedKeyer ProjectionKey unexpected: %s", got)
	}
	opts := AnalysisKeyOpts{Verify: true}
	if got := scoped.AnalysisKey("g", "e", opts); got != "api:"+inner.AnalysisKey("g", "e", opts) {
		t.Errorf("ScopedKeyer AnalysisKey unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.ProjectionKey("g"); key != "prefix:"+NewDefaultKeyer().ProjectionKey("g") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	err := fmt.Errorf("ping: %w", Transient(ErrNetwork))
	if !IsTransient(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("wrapped transient error lost its marks: %v", err)
	}
	if IsTransient(ErrCorrupt) {
		t.Error("unmarked error reported as transient")
	}
}

func TestBackoffRetry(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent failure", 5, ErrCorrupt, 1, ErrCorrupt},
		{"recovers", 1, Transient(ErrNetwork), 2, nil},
		{"exhausted", 5, Transient(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Retry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffSingleAttempt(t *testing.T) {
	calls := 0
	err := Backoff{}.Retry(context.Background(), func() error {
		calls++
		return Transient(ErrNetwork)
	})
	if calls != 1 || !errors.Is(err, ErrNetwork) {
		t.Errorf("zero Backoff: calls=%d err=%v", calls, err)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Delay: time.Hour}.Retry(ctx, func() error {
		return Transient(ErrNetwork)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var got []int
	if hit, err := GetJSON(ctx, c, "matrix", &got); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	n, err := SetJSON(ctx, c, "matrix", []int{-1, 1}, time.Hour)
	if err != nil || n != len("[-1,1]") {
		t.Fatalf("SetJSON = %d, %v", n, err)
	}
	if hit, err := GetJSON(ctx, c, "matrix", &got); !hit || err != nil || len(got) != 2 || got[0] != -1 {
		t.Errorf("GetJSON = %v, %v, %v", got, hit, err)
	}

	if err := c.Set(ctx, "broken", []byte("{"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if hit, err := GetJSON(ctx, c, "broken", &got); hit || !errors.Is(err, ErrCorrupt) {
		t.Errorf("corrupt entry: hit=%v err=%v, want ErrCorrupt", hit, err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	plain := errors.New("WRONGTYPE")
	if got := classify(plain); got != plain {
		t.Errorf("classify(plain) = %v", got)
	}
	netErr := &timeoutError{}
	got := classify(netErr)
	if !IsTransient(got) || !errors.Is(got, ErrNetwork) {
		t.Errorf("classify(net error) = %v, want transient ErrNetwork", got)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
