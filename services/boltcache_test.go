package services

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func newTestBoltCache(t *testing.T, path string) *BoltCacheService {
	t.Helper()

	svc := NewBoltCacheService(path)
	if err := svc.Start(); err != nil {
		t.Fatalf("failed to open bolt cache: %v", err)
	}
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestBoltCacheRoundTrip(t *testing.T) {
	svc := newTestBoltCache(t, filepath.Join(t.TempDir(), "cache.db"))
	ctx := context.Background()

	want := Blob{Data: []byte("image-bytes"), ContentType: "image/png"}
	if err := svc.Put(ctx, "GET http://cdn/a.png", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := svc.Get(ctx, "GET http://cdn/a.png")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !bytes.Equal(got.Data, want.Data) || got.ContentType != want.ContentType {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, ok := svc.Get(ctx, "GET http://cdn/missing.png"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestBoltCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first := NewBoltCacheService(path)
	if err := first.Start(); err != nil {
		t.Fatalf("failed to open bolt cache: %v", err)
	}
	want := Blob{Data: []byte("persisted"), ContentType: "image/gif"}
	if err := first.Put(ctx, "key", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	first.Shutdown()

	second := newTestBoltCache(t, path)
	got, ok := second.Get(ctx, "key")
	if !ok {
		t.Fatal("entry should survive a restart")
	}
	if !bytes.Equal(got.Data, want.Data) {
		t.Errorf("got %q, want %q", got.Data, want.Data)
	}
}
