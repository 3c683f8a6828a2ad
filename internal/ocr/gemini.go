package ocr

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// geminiFallbackConfidence is reported when the response carries no log probabilities.
	geminiFallbackConfidence = 0.9
)

const transcribePrompt = "Transcribe all text in this image exactly as printed, line by line.\n" +
	"- Keep the original line breaks and the original order.\n" +
	"- Keep numbers, commas and currency marks as they appear.\n" +
	"- Do not translate, summarise or add anything.\n" +
	"Return ONLY the transcribed text.\n" +
	"Do NOT use Markdown or code fences.\n"

// contentGenerator is the part of the genai client the engine calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini recognises text with a Gemini multimodal model. It accepts raw
// photos, so no preprocessing is applied.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini engine using the Developer API with apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGemini(client.Models, model), nil
}

func newGemini(models contentGenerator, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{models: models, model: model}
}

// Name implements Recognizer.
func (g *Gemini) Name() string { return "gemini" }

// Recognize implements Recognizer.
func (g *Gemini) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: transcribePrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: http.DetectContentType(image),
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return recognitionFromResponse(resp), nil
}

// recognitionFromResponse converts the first candidate's average log
// probability to a confidence shared by every line.
func recognitionFromResponse(resp *genai.GenerateContentResponse) *Recognition {
	rec := &Recognition{Engine: "gemini"}
	if resp == nil {
		return rec
	}
	rec.Text = cleanTranscript(resp.Text())

	confidence := geminiFallbackConfidence
	if len(resp.Candidates) > 0 && resp.Candidates[0].AvgLogprobs < 0 {
		confidence = math.Exp(resp.Candidates[0].AvgLogprobs)
	}
	for _, l := range strings.Split(rec.Text, "\n") {
		if strings.TrimSpace(l) != "" {
			rec.LineConfidences = append(rec.LineConfidences, confidence)
		}
	}
	return rec
}

// cleanTranscript drops Markdown fences the model may add despite the prompt.
func cleanTranscript(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return ""
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
