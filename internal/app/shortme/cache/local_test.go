package cache

import (
	"testing"
	"time"

	"shortme.local/internal/app/shortme"
)

func TestLocalCache_SetGet(t *testing.T) {
	lc, err := NewLocalCache(1000)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	defer lc.Close()

	rec := &shortme.LinkRecord{
		ID:        42,
		ShortCode: "g",
		LongURL:   "https://example.com",
		CreatedAt: time.Now(),
		Status:    shortme.StatusActive,
	}
	lc.Set(rec)
	lc.Wait() // ristretto 的写是异步缓冲的

	got, ok := lc.Get("g")
	if !ok {
		t.Fatal("expected hit after Set+Wait")
	}
	if got.LongURL != rec.LongURL || got.ID != rec.ID {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
}

func TestLocalCache_Del(t *testing.T) {
	lc, err := NewLocalCache(1000)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	defer lc.Close()

	lc.Set(&shortme.LinkRecord{ShortCode: "x", LongURL: "https://example.com/x"})
	lc.Wait()
	lc.Del("x")

	if _, ok := lc.Get("x"); ok {
		t.Fatal("expected miss after Del")
	}
}

func TestLocalCache_MissOnUnknown(t *testing.T) {
	lc, err := NewLocalCache(10)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	defer lc.Close()

	if _, ok := lc.Get("never-set"); ok {
		t.Fatal("expected miss for unknown code")
	}
}
