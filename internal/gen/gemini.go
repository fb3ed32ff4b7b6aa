package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yiba-it/postir/internal/logging"
)

// Gemini generates post copy, reel scripts, and images through the Gemini API.
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
}

// NewGemini creates a Gemini-backed generator. apiKey must be non-empty. A
// positive timeout bounds each model call; zero leaves the caller's context
// untouched.
func NewGemini(ctx context.Context, apiKey, textModel, imageModel string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, textModel: textModel, imageModel: imageModel, timeout: timeout}, nil
}

// callContext bounds one model call with the configured timeout.
func (g *Gemini) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// GeneratePosts asks the text model for req.NumPosts posts. The response is
// requested as JSON; a truncated or malformed body surfaces as
// ErrProviderUnavailable so callers can fall back to templates.
func (g *Gemini) GeneratePosts(ctx context.Context, req PostRequest) ([]Post, error) {
	ctx, span := logging.StartSpan(ctx, "gemini.generate_posts")
	defer span.End()
	ctx, cancel := g.callContext(ctx)
	defer cancel()
	logger := logging.FromContext(ctx)

	contents := []*genai.Content{
		genai.NewContentFromText(postsPrompt(req), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.95),
		TopP:             genai.Ptr[float32](0.95),
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, config)
	if err != nil {
		logger.Warn("gemini post generation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var payload struct {
		Posts []Post `json:"posts"`
	}
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &payload); err != nil {
		logger.Warn("gemini returned unparseable posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderUnavailable, err)
	}
	if len(payload.Posts) == 0 {
		return nil, fmt.Errorf("%w: empty post list", ErrProviderUnavailable)
	}

	for i := range payload.Posts {
		if payload.Posts[i].Day == 0 {
			payload.Posts[i].Day = i + 1
		}
	}
	return payload.Posts, nil
}

// GenerateScript asks the text model for a 6-8 slide reel script.
func (g *Gemini) GenerateScript(ctx context.Context, req ScriptRequest) ([]Slide, error) {
	ctx, span := logging.StartSpan(ctx, "gemini.generate_script")
	defer span.End()
	ctx, cancel := g.callContext(ctx)
	defer cancel()
	logger := logging.FromContext(ctx)

	contents := []*genai.Content{
		genai.NewContentFromText(scriptPrompt(req), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.9),
		TopP:             genai.Ptr[float32](0.95),
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, config)
	if err != nil {
		logger.Warn("gemini script generation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var slides []Slide
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &slides); err != nil {
		logger.Warn("gemini returned unparseable script", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderUnavailable, err)
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: empty script", ErrProviderUnavailable)
	}

	for i := range slides {
		if slides[i].Slide == 0 {
			slides[i].Slide = i + 1
		}
		if slides[i].DurationSeconds < 2 || slides[i].DurationSeconds > 4 {
			slides[i].DurationSeconds = 3
		}
		if slides[i].VisualKeyword == "" {
			slides[i].VisualKeyword = stockKeywordLabel(req.BusinessType)
		}
	}
	return slides, nil
}

// GenerateImage asks the image model for a single image. The model emits
// interleaved text and image parts; the first inline image wins and any text
// part becomes the alt text.
func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	ctx, span := logging.StartSpan(ctx, "gemini.generate_image")
	defer span.End()
	ctx, cancel := g.callContext(ctx)
	defer cancel()
	logger := logging.FromContext(ctx)

	contents := []*genai.Content{
		genai.NewContentFromText(imagePrompt(req), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, config)
	if err != nil {
		logger.Warn("gemini image generation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	img := &Image{}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 && len(img.Data) == 0 {
				img.Data = part.InlineData.Data
				img.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" && img.AltText == "" {
				img.AltText = strings.TrimSpace(part.Text)
			}
		}
	}
	if len(img.Data) == 0 {
		return nil, ErrNoImage
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/png"
	}
	if img.AltText == "" {
		img.AltText = req.Prompt
	}
	return img, nil
}

// stripFences removes a markdown code fence the model sometimes wraps JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
