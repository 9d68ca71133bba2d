package marketplace

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewClient("secret", "license", srv.URL, srv.URL, srv.URL, srv.URL)
	return c, srv
}

func TestAuthHeader(t *testing.T) {
	c := NewClient("my-secret", "my-license", "", "", "", "")
	want := "ESA " + base64.StdEncoding.EncodeToString([]byte("my-secret:my-license"))
	if got := c.authHeader(); got != want {
		t.Errorf("authHeader() = %q, want %q", got, want)
	}
}

func TestProductUpsertSuccess(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "ESA ") {
			t.Errorf("expected ESA auth header, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	result := c.ProductUpsert(context.Background(), "mn-1", map[string]string{"title": "x"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestProductGetNotFound(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	result := c.ProductGet(context.Background(), "mn-missing")
	if result.Success {
		t.Fatal("expected failure for 404")
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", result.StatusCode)
	}
}

func TestProductUpsertServerError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	defer srv.Close()

	result := c.ProductUpsert(context.Background(), "mn-1", nil)
	if result.Success {
		t.Fatal("expected failure for 500")
	}
	if len(result.ErrorData) == 0 {
		t.Error("expected error data to be populated")
	}
}

func TestDedupeCap(t *testing.T) {
	got := dedupeCap([]string{"a", "b", "a", "", "c", "d", "e"}, 3)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCategoryMapBuildsBody(t *testing.T) {
	var captured string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	result := c.CategoryMap(context.Background(), "mn-1", []string{"c1", "c2"}, "")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.Contains(captured, "c1") || !strings.Contains(captured, "c2") {
		t.Errorf("expected category ids in request body, got %q", captured)
	}
}
