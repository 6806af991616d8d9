package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newTempStore(t *testing.T) Store {
	t.Helper()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return store
}

func TestFilesystemPutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "probes/archive.json", bytes.NewReader([]byte("hello")), PutOptions{ContentType: "application/json", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "probes/archive.json" || info.Size != 5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "probes/archive.json", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	h, err := store.Head(ctx, "probes/archive.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "probes/archive.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != h.ETag {
		t.Fatalf("unexpected get artifacts")
	}
	list, err := store.List(ctx, "probes/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "probes/archive.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	url, err := store.PresignURL(ctx, "probes/archive.json", SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("presign url: %v %s", err, url)
	}
	ok, err := store.Delete(ctx, "probes/archive.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "probes/archive.json")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestFilesystemPathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "../escape.txt", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatalf("expected traversal error")
	}
	if _, err := store.Put(ctx, "/abs.txt", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatalf("expected absolute error")
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestFilesystemPutErrorBranches(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.Put(context.Background(), "bad.bin", errorReader{}, PutOptions{}); err == nil {
		t.Fatalf("expected copy error")
	}
}

func TestFilesystemListOrderAndPresignVariants(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "b/2.json", bytes.NewReader([]byte("b2")), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a/1.json", bytes.NewReader([]byte("a1")), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 2 {
		t.Fatalf("list root: %v %v", err, list)
	}
	if list[0].Key > list[1].Key {
		t.Fatalf("expected sorted order: %+v", list)
	}
	if url, err := store.PresignURL(ctx, "a/1.json", SignedURLOptions{Method: "get"}); err != nil || url == "" {
		t.Fatalf("presign lower: %v %s", err, url)
	}
	if _, err := store.PresignURL(ctx, "a/1.json", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported for PUT, got %v", err)
	}
}

func TestFilesystemCorruptMeta(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystem(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	data := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(data, []byte("data"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := os.WriteFile(data+".meta", []byte("{"), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatalf("expected list error on corrupt meta")
	}
}

func TestSanitizeKeyErrors(t *testing.T) {
	for _, c := range []string{"", "../escape", "/abs", "a/../b"} {
		if _, err := sanitizeKey(c); err == nil {
			t.Fatalf("expected error for key %q", c)
		}
	}
}

func TestCloneMetadata(t *testing.T) {
	if cloneMetadata(nil) != nil {
		t.Fatalf("expected nil pass-through")
	}
	src := map[string]string{"a": "1"}
	cp := cloneMetadata(src)
	src["a"] = "2"
	if cp["a"] != "1" {
		t.Fatalf("expected deep copy isolation")
	}
}
