// Package harvester talks to the upstream Rakumart/1688 search and
// detail API and yields raw product records with a filtered detail
// payload ready for the materializer (§4.2).
package harvester

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	domerrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// Client wraps the upstream harvester API. Every request is signed with
// md5(app_key + app_secret + timestamp) and sent as multipart form data.
type Client struct {
	baseURL   string
	appKey    string
	appSecret string
	http      *http.Client
}

func NewClient(baseURL, appKey, appSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		appKey:    appKey,
		appSecret: appSecret,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchRequest is the keyword/category search request shape (§4.2,
// §6 "keyword search, category search").
type SearchRequest struct {
	Keyword     string
	CategoryIDs []string
	Filters     map[string]string
	Page        int
	PageSize    int
}

// RawProduct is one row of a harvester search/detail response, prior to
// detail-JSON filtering.
type RawProduct struct {
	ProductID   string          `json:"productId"`
	TitleC      string          `json:"titleC"`
	TitleT      string          `json:"titleT"`
	MainCat     string          `json:"mainCategory"`
	MiddleCat   string          `json:"middleCategory"`
	DetailJSON  json.RawMessage `json:"detail"`
}

func (c *Client) sign(timestamp string) string {
	sum := md5.Sum([]byte(c.appKey + c.appSecret + timestamp))
	return hex.EncodeToString(sum[:])
}

// Search issues a keyword/category search and returns the raw, unfiltered
// product records the response declares under `success=true`.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]RawProduct, error) {
	form := map[string]string{
		"keyword":  req.Keyword,
		"page":     strconv.Itoa(req.Page),
		"pageSize": strconv.Itoa(req.PageSize),
	}
	if len(req.CategoryIDs) > 0 {
		ids, _ := json.Marshal(req.CategoryIDs)
		form["categoryIds"] = string(ids)
	}
	for k, v := range req.Filters {
		form[k] = v
	}

	var resp struct {
		Success bool            `json:"success"`
		Data    []RawProduct    `json:"data"`
		List    []RawProduct    `json:"list"`
		Result  json.RawMessage `json:"result"`
		Message string          `json:"message"`
	}
	if err := c.doMultipart(ctx, "/search", form, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domerrors.NewUpstream("harvester_search_failed", resp.Message, nil)
	}

	// Defensive parsing: the upstream API has shipped results under at
	// least four different envelope shapes historically.
	if len(resp.Data) > 0 {
		return resp.Data, nil
	}
	if len(resp.List) > 0 {
		return resp.List, nil
	}
	if len(resp.Result) > 0 {
		var products []RawProduct
		if err := json.Unmarshal(resp.Result, &products); err == nil && len(products) > 0 {
			return products, nil
		}
		var wrapped struct {
			Products []RawProduct `json:"products"`
		}
		if err := json.Unmarshal(resp.Result, &wrapped); err == nil {
			return wrapped.Products, nil
		}
	}
	return nil, nil
}

// Detail fetches one product's full detail payload, returning it with
// FilterDetailJson already applied.
func (c *Client) Detail(ctx context.Context, productID string) (json.RawMessage, error) {
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := c.doMultipart(ctx, "/detail", map[string]string{"productId": productID}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, domerrors.NewUpstream("harvester_detail_failed", resp.Message, nil)
	}

	var tree interface{}
	if err := json.Unmarshal(resp.Data, &tree); err != nil {
		return nil, domerrors.NewInternal("harvester_detail_decode", "decode detail payload", err)
	}
	filtered := FilterDetailJson(tree)
	out, err := json.Marshal(filtered)
	if err != nil {
		return nil, domerrors.NewInternal("harvester_detail_encode", "encode filtered detail payload", err)
	}
	return out, nil
}

func (c *Client) doMultipart(ctx context.Context, path string, form map[string]string, out interface{}) error {
	timestamp := strconv.FormatInt(timeNowUnix(), 10)
	sign := c.sign(timestamp)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("app_key", c.appKey)
	_ = w.WriteField("timestamp", timestamp)
	_ = w.WriteField("sign", sign)
	for k, v := range form {
		_ = w.WriteField(k, v)
	}
	if err := w.Close(); err != nil {
		return domerrors.NewInternal("harvester_multipart_encode", "encode multipart form", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return domerrors.NewInternal("harvester_request_build", "build harvester request", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.HarvesterLogger().Err(err).Str("path", path).Msg("harvester request failed")
		return domerrors.NewTransient("harvester_transport", "harvester request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domerrors.NewTransient("harvester_read_body", "read harvester response", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domerrors.NewQuota("harvester_quota", "harvester rate limit exceeded")
	}
	if resp.StatusCode >= 500 {
		return domerrors.NewTransient("harvester_5xx", fmt.Sprintf("harvester returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return domerrors.NewUpstream("harvester_4xx", fmt.Sprintf("harvester returned %d: %s", resp.StatusCode, body), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domerrors.NewInternal("harvester_decode", "decode harvester response", err)
	}
	return nil
}

// timeNowUnix is a seam so signing can be exercised deterministically in
// tests without depending on wall-clock time directly in this file.
var timeNowUnix = func() int64 { return time.Now().Unix() }
