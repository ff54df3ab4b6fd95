package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"

	"shortme.local/internal/app/shortme"
	"shortme.local/internal/app/shortme/stats"
)

type countingCounter struct {
	n atomic.Int64
}

func (c *countingCounter) Increment(ctx context.Context, code string) {
	c.n.Add(1)
}

func doRedirect(t *testing.T, handler echo.HandlerFunc, code string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)
	c.SetParamNames("code")
	c.SetParamValues(code)

	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rr
}

func TestRedirectHandler_Found(t *testing.T) {
	store := newMemStore()
	engine := shortme.NewLinkEngine(store, nil, nil, nil)
	rec, err := engine.CreateShortLink(context.Background(), "https://example.com/target", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	counter := &countingCounter{}
	collector := stats.NewChannelCollector(8)
	handler := NewRedirectHandler(engine, counter, collector)

	rr := doRedirect(t, handler, rec.ShortCode)

	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://example.com/target" {
		t.Fatalf("Location: got %q", loc)
	}
	// 解析成功才计数、才收事件。
	if counter.n.Load() != 1 {
		t.Fatalf("counter: got %d, want 1", counter.n.Load())
	}
	select {
	case ev := <-collector.Events():
		if ev.Code != rec.ShortCode {
			t.Fatalf("event code: got %q, want %q", ev.Code, rec.ShortCode)
		}
	default:
		t.Fatal("expected a click event")
	}
}

func TestRedirectHandler_UnknownCodeGoesToErrorPage(t *testing.T) {
	engine := shortme.NewLinkEngine(newMemStore(), nil, nil, nil)
	counter := &countingCounter{}
	collector := stats.NewChannelCollector(8)
	handler := NewRedirectHandler(engine, counter, collector)

	rr := doRedirect(t, handler, "zzz9")

	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != shortme.SentinelTarget {
		t.Fatalf("Location: got %q, want %q", loc, shortme.SentinelTarget)
	}
	// 哨兵结果不产生任何统计副作用。
	if counter.n.Load() != 0 {
		t.Fatalf("counter: got %d, want 0", counter.n.Load())
	}
	select {
	case ev := <-collector.Events():
		t.Fatalf("unexpected click event %+v", ev)
	default:
	}
}

func TestRedirectHandler_NilStatsDependencies(t *testing.T) {
	store := newMemStore()
	engine := shortme.NewLinkEngine(store, nil, nil, nil)
	rec, err := engine.CreateShortLink(context.Background(), "https://example.com/nostats", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 统计子系统整体关闭时跳转照常工作。
	handler := NewRedirectHandler(engine, nil, nil)
	rr := doRedirect(t, handler, rec.ShortCode)
	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
}

func TestErrorPageHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	if err := NewErrorPageHandler()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Short link not found or invalid") {
		t.Fatalf("body: %q", body)
	}
}
