package services

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ExtractedFields is the best-effort result of one field extraction. A nil
// field means the extractor could not resolve it.
type ExtractedFields struct {
	Amount      *string
	Date        *string
	Description *string
}

// FieldExtractor turns free text and/or a receipt image into transaction
// fields. Implementations never surface network or parse errors to request
// handlers; a failed extraction is a nil result.
type FieldExtractor interface {
	Extract(ctx context.Context, text string, imageData string) (*ExtractedFields, error)
}

// TextGenerator is the raw generation surface used by the direct model
// endpoints.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var nonAmountChars = regexp.MustCompile(`[^\d.,-]`)

// ParseAmount normalizes an amount string in Brazilian convention ('.' as
// thousands separator, ',' as decimal separator) and parses it as a float.
// Invalid input yields nil.
func ParseAmount(raw string) *float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	normalized := nonAmountChars.ReplaceAllString(raw, "")
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	n, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil
	}
	return &n
}

// TruncateDescription caps machine-generated descriptions at 255 characters.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= 255 {
		return s
	}
	return string(runes[:255])
}

// Gemini calls the generative-language API for field extraction and raw
// generation. The zero API key is allowed; calls then fail and callers
// degrade to no extraction.
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
	images  *ImagePipeline
	log     zerolog.Logger
}

const defaultModel = "gemini-2.5-flash"

// NewGeminiFromEnv reads GOOGLE_API_KEY and the optional GEMINI_MODEL
// override. A missing key is logged, not fatal.
func NewGeminiFromEnv(log zerolog.Logger) *Gemini {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY is not set; remote field extraction will be unavailable")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		timeout: 30 * time.Second,
		images:  NewImagePipeline(log),
		log:     log,
	}
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// Generate sends a plain text prompt and returns the raw model output.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []*genai.Part{{Text: prompt}})
}

const extractInstruction = `Extract from the following OCR text (or image if OCR text is missing) the amount, the date, and a short description. Return ONLY a single JSON object with keys "amount", "date", and "description". If a field is not present, use null. Do not include any extra commentary or formatting.`

// Extract asks the model for an {amount, date, description} triple. When the
// OCR text is empty and an image is supplied, the (preprocessed) image is
// attached inline and the model is instructed to analyze it instead.
func (g *Gemini) Extract(ctx context.Context, text string, imageData string) (*ExtractedFields, error) {
	parts := []*genai.Part{}

	if strings.TrimSpace(text) != "" {
		prompt := extractInstruction + "\n\nOCR Text:\n\n\"\"\"" + text + "\"\"\""
		parts = append(parts, &genai.Part{Text: prompt})
	} else if imageData != "" {
		payload, mime := g.images.Prepare(imageData)
		if payload == nil {
			return nil, fmt.Errorf("image payload could not be decoded")
		}
		prompt := extractInstruction + "\n\nOCR Text is empty. Analyze the attached image and extract amount, date and a short description."
		parts = append(parts,
			&genai.Part{Text: prompt},
			&genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: payload}},
		)
	} else {
		return nil, fmt.Errorf("nothing to extract: no text and no image")
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	fields, outcome := ParseModelFields(raw, map[string]string{
		"amount":      "amount",
		"date":        "date",
		"description": "description",
	})
	if outcome == ParseNone {
		return nil, fmt.Errorf("no fields recovered from model output")
	}

	return &ExtractedFields{
		Amount:      fieldString(fields["amount"]),
		Date:        fieldString(fields["date"]),
		Description: fieldString(fields["description"]),
	}, nil
}

// fieldString coerces a parsed model value (string or number) into a string
// pointer, nil for null/absent values.
func fieldString(v interface{}) *string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}
