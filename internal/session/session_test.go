package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestResolveMintsTokenWhenAbsent(t *testing.T) {
	rs := NewResolver(7 * 24 * time.Hour)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)

	token, issued := rs.Resolve(rr, req)
	if !issued {
		t.Fatalf("expected a new token to be issued")
	}
	if _, err := uuid.Parse(token); err != nil {
		t.Fatalf("token %q is not a UUID: %v", token, err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected exactly one Set-Cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != token {
		t.Errorf("cookie value = %q, want %q", c.Value, token)
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Errorf("cookie max-age = %d, want %d", c.MaxAge, 7*24*60*60)
	}
}

func TestResolveReusesExistingToken(t *testing.T) {
	rs := NewResolver(7 * 24 * time.Hour)
	existing := uuid.NewString()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: existing})

	token, issued := rs.Resolve(rr, req)
	if issued {
		t.Fatalf("expected existing token to be reused")
	}
	if token != existing {
		t.Fatalf("token = %q, want %q", token, existing)
	}
	if got := len(rr.Result().Cookies()); got != 0 {
		t.Fatalf("expected no Set-Cookie when reusing, got %d", got)
	}
}

func TestResolveIssuesDistinctTokens(t *testing.T) {
	rs := NewResolver(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
		token, _ := rs.Resolve(rr, req)
		if seen[token] {
			t.Fatalf("token %q issued twice", token)
		}
		seen[token] = true
	}
}

func TestCurrent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	if _, ok := Current(req); ok {
		t.Fatalf("expected no session on bare request")
	}

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	tok, ok := Current(req)
	if !ok || tok != "abc" {
		t.Fatalf("Current() = %q, %v; want abc, true", tok, ok)
	}
}
