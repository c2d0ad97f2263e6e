package utils

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/invoice-drafts/models"
	"google.golang.org/api/option"
)

const extractionPrompt = "You are an invoice processing expert. Extract from the attached document: " +
	"supplier name, client name, invoice date, total amount and every line item " +
	"(code, name, quantity, unit price, line total). Reply with JSON only, no prose, using this structure:\n" +
	`{"supplier": "", "client": "", "date": "", "total": "0.00", ` +
	`"items": [{"code": "", "name": "", "qty": "0", "price": "0.00", "total": "0.00"}], ` +
	`"warnings": [], "confidence": 0.0}`

// GeminiExtractor runs invoice extraction through a Gemini model.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) Provider() string {
	return "gemini"
}

func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

// Extract sends the file to the model and decodes the JSON it answers with.
func (g *GeminiExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.Text(extractionPrompt),
		genai.Blob{MIMEType: detectMIME(path, data), Data: data},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini recognition error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("gemini response is not text")
	}

	return ParseExtractionJSON(string(text))
}

// ParseExtractionJSON decodes a model reply, tolerating markdown code fences.
func ParseExtractionJSON(text string) (*models.ExtractionResult, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	res, err := DecodeExtraction([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}
	res.RawText = text
	return res, nil
}

func detectMIME(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return http.DetectContentType(data)
}
