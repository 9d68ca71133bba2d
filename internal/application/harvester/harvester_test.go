package harvester

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSignIsDeterministicMD5(t *testing.T) {
	c := NewClient("", "key", "secret")
	want := md5.Sum([]byte("keysecret1700000000"))
	if got := c.sign("1700000000"); got != hex.EncodeToString(want[:]) {
		t.Errorf("sign() = %q, want %q", got, hex.EncodeToString(want[:]))
	}
}

func TestSearchReturnsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart form, got error: %v", err)
		}
		if r.FormValue("keyword") != "handbag" {
			t.Errorf("expected keyword=handbag, got %q", r.FormValue("keyword"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"productId":"p1","titleT":"bag"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	products, err := c.Search(context.Background(), SearchRequest{Keyword: "handbag", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != "p1" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestSearchReturnsListEnvelopeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"list":[{"productId":"p2"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	products, err := c.Search(context.Background(), SearchRequest{Keyword: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != "p2" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestSearchUnsuccessfulReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	if _, err := c.Search(context.Background(), SearchRequest{Keyword: "x"}); err == nil {
		t.Error("expected an error for an unsuccessful response")
	}
}
