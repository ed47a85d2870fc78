package r2s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeUploader struct {
	mu    sync.Mutex
	keys  []string
	fails int
}

func (f *fakeUploader) PutFile(ctx context.Context, key, localPath string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("temporary")
	}
	f.keys = append(f.keys, key)
	return nil
}

func writeTemp(t *testing.T, dir, rel string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMirror_UploadsRelativeKeysWithRetry(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{fails: 1}
	m := NewMirror(up, MirrorConfig{DataDir: dir, Prefix: "/prod/", MaxAttempts: 3})

	m.Enqueue(writeTemp(t, dir, "builds/builds-2026-03-01-14.jsonl.zst"))
	m.Enqueue(filepath.Join(t.TempDir(), "outside.zst"))
	m.Close()
	m.Close()

	if len(up.keys) != 1 || up.keys[0] != "prod/builds/builds-2026-03-01-14.jsonl.zst" {
		t.Fatalf("keys=%v", up.keys)
	}
	st := m.Stats()
	if st.UploadSuccessTotal != 1 || st.UploadFailTotal != 0 || st.EnqueuedTotal != 2 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestClient_PutFileSignsRequest(t *testing.T) {
	var gotPath, gotAuth, gotHash, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotHash = r.Header.Get("x-amz-content-sha256")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, Bucket: "logs", AccessKeyID: "AKID", SecretAccessKey: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	p := writeTemp(t, t.TempDir(), "a b.jsonl.zst")
	if err := c.PutFile(context.Background(), "builds/a b.jsonl.zst", p); err != nil {
		t.Fatalf("PutFile: %v", err)
	}
	if gotPath != "/logs/builds/a b.jsonl.zst" {
		t.Fatalf("path=%q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AKID/20260301/auto/s3/aws4_request, SignedHeaders=host;x-amz-content-sha256;x-amz-date, Signature=") {
		t.Fatalf("authorization=%q", gotAuth)
	}
	if gotHash != sha256Hex([]byte("data")) || gotBody != "data" {
		t.Fatalf("hash=%q body=%q", gotHash, gotBody)
	}
}

func TestNormalizeObjectKey(t *testing.T) {
	cases := map[string]string{
		"/a/b":      "a/b",
		`a\b`:       "a/b",
		"a/../../x": "x",
		"  ":        "",
		"./a/./b":   "a/b",
	}
	for in, want := range cases {
		if got := normalizeObjectKey(in); got != want {
			t.Fatalf("normalizeObjectKey(%q)=%q want %q", in, got, want)
		}
	}
}
