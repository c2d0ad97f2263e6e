package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/invoice-drafts/models"
)

// OCRClientInterface extracts structured invoice data from a scanned file.
type OCRClientInterface interface {
	Extract(ctx context.Context, path string) (*models.ExtractionResult, error)
	Provider() string
}

// OCRClient talks to the HTTP extraction service.
type OCRClient struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
}

// ocrResponse is the envelope returned by the extraction service.
type ocrResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func NewOCRClient(apiURL, apiToken string, timeout time.Duration) OCRClientInterface {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OCRClient{
		apiURL:   apiURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OCRClient) Provider() string {
	return "http"
}

// Extract uploads the file at path and decodes the extraction result.
func (c *OCRClient) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var result ocrResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("OCR API error: %s", result.Message)
	}

	data, err := DecodeExtraction(result.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction: %w", err)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
