package marketplace

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

const (
	cabinetMaxFileBytes = 2 * 1024 * 1024
	cabinetMaxDimension = 3840
)

var cabinetAllowedExt = map[string]bool{
	"jpg": true, "jpeg": true, "gif": true, "png": true, "tiff": true, "bmp": true,
}

type cabinetFolderRequest struct {
	XMLName          xml.Name `xml:"request"`
	FolderName       string   `xml:"folderName"`
	DirectoryName    string   `xml:"directoryName,omitempty"`
	UpperFolderID    string   `xml:"upperFolderId,omitempty"`
}

type cabinetFolderResponse struct {
	XMLName  xml.Name `xml:"result"`
	FolderID string   `xml:"folderId"`
}

// CabinetCreateFolder creates a Cabinet image folder, returning its id.
// Any non-200 response, including one for a folder that already exists,
// comes back as an unsuccessful Result with an empty id; no lookup of an
// existing folder's id is made (§4.6).
func (c *Client) CabinetCreateFolder(ctx context.Context, folderName, directoryName, upperFolderID string) (string, Result) {
	body, err := xml.Marshal(cabinetFolderRequest{
		FolderName:    folderName,
		DirectoryName: directoryName,
		UpperFolderID: upperFolderID,
	})
	if err != nil {
		return "", Result{ErrorText: fmt.Sprintf("encode folder request: %v", err)}
	}

	url := c.cabinetBase + "/folder/insert"
	result := c.doXML(ctx, "cabinet_create_folder", url, body)
	if !result.Success {
		return "", result
	}

	var parsed cabinetFolderResponse
	if err := xml.Unmarshal(result.Data, &parsed); err != nil {
		result.Success = false
		result.ErrorText = fmt.Sprintf("decode folder response: %v", err)
		return "", result
	}
	return parsed.FolderID, result
}

// CabinetUploadFile uploads one image to a Cabinet folder, validating
// size, dimensions, and extension before sending (§4.6).
func (c *Client) CabinetUploadFile(ctx context.Context, fileBytes []byte, fileName, folderID, filePathName string, overwrite bool) (string, Result) {
	if len(fileBytes) > cabinetMaxFileBytes {
		return "", Result{ErrorText: fmt.Sprintf("file exceeds %d bytes", cabinetMaxFileBytes)}
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if !cabinetAllowedExt[ext] {
		return "", Result{ErrorText: fmt.Sprintf("unsupported image extension %q", ext)}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(fileBytes))
	if err != nil {
		return "", Result{ErrorText: fmt.Sprintf("decode image dimensions: %v", err)}
	}
	if cfg.Width > cabinetMaxDimension || cfg.Height > cabinetMaxDimension {
		return "", Result{ErrorText: fmt.Sprintf("image exceeds %dx%d", cabinetMaxDimension, cabinetMaxDimension)}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("folderId", folderID)
	if filePathName != "" {
		_ = w.WriteField("filePathName", filePathName)
	}
	_ = w.WriteField("overwrite", fmt.Sprintf("%t", overwrite))
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", Result{ErrorText: fmt.Sprintf("build multipart file part: %v", err)}
	}
	if _, err := part.Write(fileBytes); err != nil {
		return "", Result{ErrorText: fmt.Sprintf("write multipart file part: %v", err)}
	}
	if err := w.Close(); err != nil {
		return "", Result{ErrorText: fmt.Sprintf("close multipart writer: %v", err)}
	}

	url := c.cabinetBase + "/file/insert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", Result{ErrorText: fmt.Sprintf("build upload request: %v", err), URL: url}
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", w.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.Global().RecordMarketplaceCall("cabinet_upload_file", "transport_error", time.Since(start))
		return "", Result{ErrorText: err.Error(), URL: url}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	metrics.Global().RecordMarketplaceCall("cabinet_upload_file", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	result := Result{URL: url, StatusCode: resp.StatusCode, ResponseHeaders: flattenHeaders(resp.Header)}
	if resp.StatusCode != http.StatusOK {
		result.ErrorData = respBody
		result.ErrorText = fmt.Sprintf("cabinet upload returned %d", resp.StatusCode)
		logger.MarketplaceLogger().Int("status", resp.StatusCode).Str("file", fileName).Msg("cabinet upload failed")
		return "", result
	}

	var parsed struct {
		XMLName xml.Name `xml:"result"`
		FileID  string   `xml:"fileId"`
	}
	if err := xml.Unmarshal(respBody, &parsed); err != nil {
		result.Success = false
		result.ErrorText = fmt.Sprintf("decode upload response: %v", err)
		return "", result
	}
	result.Success = true
	return parsed.FileID, result
}

func (c *Client) doXML(ctx context.Context, endpoint, url string, body []byte) Result {
	start := time.Now()
	result := Result{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		result.ErrorText = fmt.Sprintf("build request: %v", err)
		return result
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		result.ErrorText = err.Error()
		metrics.Global().RecordMarketplaceCall(endpoint, "transport_error", time.Since(start))
		return result
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	result.StatusCode = resp.StatusCode
	result.ResponseHeaders = flattenHeaders(resp.Header)
	metrics.Global().RecordMarketplaceCall(endpoint, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusOK {
		result.Success = true
		result.Data = respBody
	} else {
		result.ErrorData = respBody
		result.ErrorText = fmt.Sprintf("marketplace returned %d", resp.StatusCode)
		logger.MarketplaceLogger().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("marketplace call unsuccessful")
	}

	return result
}
