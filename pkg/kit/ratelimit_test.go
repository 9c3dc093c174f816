package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Window(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, ok := l.Allow("1.2.3.4"); !ok {
			t.Fatalf("hit %d rejected", i)
		}
	}
	wait, ok := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("third hit allowed")
	}
	if wait != time.Minute {
		t.Fatalf("wait=%v", wait)
	}

	if _, ok := l.Allow("5.6.7.8"); !ok {
		t.Fatal("other key limited")
	}

	now = now.Add(61 * time.Second)
	if _, ok := l.Allow("1.2.3.4"); !ok {
		t.Fatal("window did not slide")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewRateLimiter(1, time.Second)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * time.Second)
	l.Allow("b")
	l.Sweep()

	if _, ok := l.hits["a"]; ok {
		t.Fatal("idle key kept")
	}
	if _, ok := l.hits["b"]; !ok {
		t.Fatal("active key dropped")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:1234"
	if got := ClientIP(req); got != "192.168.1.9" {
		t.Fatalf("remote: %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("xff: %q", got)
	}
}
