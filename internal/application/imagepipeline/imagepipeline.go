// Package imagepipeline fetches product images, applies a content-aware
// transform, uploads the result to an S3-compatible object store, and
// derives the stable relative path the marketplace registration step
// stores on the canonical product (§4.5).
package imagepipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"

	domerrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

// Result is one processed image's outcome (§4.5).
type Result struct {
	OriginalURL  string
	ProcessedURL string
	RelativePath string
}

// Uploader is the subset of the S3 manager the pipeline needs, kept as
// an interface so tests can substitute an in-memory fake.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Pipeline processes a product's source image URLs into object-store
// locations.
type Pipeline struct {
	http       *http.Client
	uploader   Uploader
	bucket     string
	quotaHit   atomic.Bool
	transform  func([]byte) ([]byte, error)
}

func New(uploader Uploader, bucket string) *Pipeline {
	return &Pipeline{
		http:      &http.Client{Timeout: 20 * time.Second},
		uploader:  uploader,
		bucket:    bucket,
		transform: EraseTextAndLogos,
	}
}

// QuotaHit reports whether the last error observed was a quota/429 class
// error, letting callers degrade the UX without retrying immediately (§4.5).
func (p *Pipeline) QuotaHit() bool {
	return p.quotaHit.Load()
}

// ProcessAll fetches, transforms, and uploads every source URL for a
// product, deriving each relative path. A single image's failure never
// aborts the batch: an image whose fetch or upload fails is skipped, and
// one whose transform fails is uploaded as the original (§4.5 step 2).
func (p *Pipeline) ProcessAll(ctx context.Context, productImageCode string, urls []string) ([]Result, error) {
	results := make([]Result, 0, len(urls))
	for i, u := range urls {
		r, err := p.processOne(ctx, productImageCode, i+1, u)
		if err != nil {
			logger.ImageLogger().Err(err).Str("url", u).Msg("image processing failed, skipping")
			metrics.Global().RecordImageStage("upload", "error")
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (p *Pipeline) processOne(ctx context.Context, code string, index int, sourceURL string) (Result, error) {
	raw, err := p.fetchWithRetry(ctx, sourceURL)
	if err != nil {
		return Result{}, err
	}

	processed, transformErr := p.transform(raw)
	if transformErr != nil {
		logger.ImageLogger().Err(transformErr).Str("url", sourceURL).Msg("transform failed, retaining original")
		processed = raw
		metrics.Global().RecordImageStage("transform", "fallback_original")
	} else {
		metrics.Global().RecordImageStage("transform", "success")
	}

	ext := extensionFromURL(sourceURL)
	key := fmt.Sprintf("products/%s/%s_%d.%s", code, code, index, ext)

	if _, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(processed),
	}); err != nil {
		metrics.Global().RecordImageStage("upload", "error")
		return Result{}, domerrors.NewUpstream("image_upload_failed", "upload to object store failed", err)
	}
	metrics.Global().RecordImageStage("upload", "success")

	return Result{
		OriginalURL:  sourceURL,
		ProcessedURL: key,
		RelativePath: RelativePath(key),
	}, nil
}

// fetchWithRetry downloads a source image with exponential backoff, max
// 2 retries, 3s base (§4.5 step 1).
func (p *Pipeline) fetchWithRetry(ctx context.Context, sourceURL string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 3 * time.Second
	bo.MaxElapsedTime = 0
	retrying := backoff.WithMaxRetries(bo, 2)

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := p.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			p.quotaHit.Store(true)
			return backoff.Permanent(domerrors.NewQuota("image_fetch_quota", "image fetch rate limited"))
		}
		p.quotaHit.Store(false)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("image fetch returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(domerrors.NewUpstream("image_fetch_failed", fmt.Sprintf("image fetch returned %d", resp.StatusCode), nil))
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	if err := backoff.Retry(op, retrying); err != nil {
		return nil, domerrors.NewTransient("image_fetch_exhausted", "image fetch retries exhausted", err)
	}
	return body, nil
}

func extensionFromURL(u string) string {
	ext := strings.TrimPrefix(path.Ext(u), ".")
	if ext == "" {
		return "jpg"
	}
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	return strings.ToLower(ext)
}

// RelativePath strips the bucket/products prefix and, when the first
// path segment is purely numeric, prefixes it with "img" to match the
// marketplace's Cabinet folder naming convention (§4.5 step 4, §8
// property 9).
func RelativePath(storedPath string) string {
	idx := strings.Index(storedPath, "/products/")
	var rest string
	if idx >= 0 {
		rest = storedPath[idx+len("/products/"):]
	} else {
		rest = strings.TrimPrefix(storedPath, "products/")
	}

	segments := strings.SplitN(rest, "/", 2)
	if len(segments) == 0 {
		return rest
	}
	if isNumeric(segments[0]) {
		segments[0] = "img" + segments[0]
	}
	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
