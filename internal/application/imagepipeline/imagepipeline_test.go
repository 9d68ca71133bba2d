package imagepipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestExtensionFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a.JPG":       "jpg",
		"https://example.com/a.png?x=1":   "png",
		"https://example.com/no-ext":      "jpg",
		"https://example.com/a.jpeg#frag": "jpeg",
	}
	for url, want := range cases {
		if got := extensionFromURL(url); got != want {
			t.Errorf("extensionFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestRelativePathPrefixesNumericFolder(t *testing.T) {
	got := RelativePath("bucket/products/12345678/12345678_1.jpg")
	want := "img12345678/12345678_1.jpg"
	if got != want {
		t.Errorf("RelativePath() = %q, want %q", got, want)
	}
}

func TestRelativePathLeavesNonNumericFolder(t *testing.T) {
	got := RelativePath("products/abc/abc_1.jpg")
	if got != "abc/abc_1.jpg" {
		t.Errorf("RelativePath() = %q, want abc/abc_1.jpg", got)
	}
}

type fakeUploader struct {
	uploaded []string
	fail     bool
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.fail {
		return nil, bytes.ErrTooLarge
	}
	f.uploaded = append(f.uploaded, *input.Key)
	return &manager.UploadOutput{}, nil
}

func TestProcessAllSkipsFailedImagesWithoutAbortingBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("fake-image-bytes"))
	}))
	defer srv.Close()

	uploader := &fakeUploader{}
	p := New(uploader, "test-bucket")
	p.transform = func(b []byte) ([]byte, error) { return b, nil }

	results, err := p.ProcessAll(context.Background(), "00000042", []string{srv.URL + "/good.jpg", srv.URL + "/bad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one successful result, got %d: %+v", len(results), results)
	}
	if len(uploader.uploaded) != 1 {
		t.Errorf("expected exactly one upload call, got %d", len(uploader.uploaded))
	}
}
