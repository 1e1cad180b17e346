package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_RejectsBadURL(t *testing.T) {
	for _, in := range []string{"", "not a url", "/relative"} {
		if _, err := New(in, time.Second); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestPostJSON_DecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/x" || r.Header.Get("X-Test") != "1" {
			t.Errorf("unexpected request %s %q", r.URL.Path, r.Header.Get("X-Test"))
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"busy"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = c.PostJSON(context.Background(), "api/x", map[string]string{"X-Test": "1"}, map[string]string{}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict || apiErr.Message != "busy" {
		t.Fatalf("expected APIError 409 busy, got %v", err)
	}
}
