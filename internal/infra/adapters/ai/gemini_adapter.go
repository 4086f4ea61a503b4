// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/infra/metrics"
)

var _ adapter.Generator = (*GeminiAdapter)(nil)

// GeminiAdapter implements the generator port on the official SDK.
// Text operations use textModel; GenerateBackground uses imageModel,
// which differs between the primary and fallback instances.
type GeminiAdapter struct {
	client     *genai.Client
	textModel  string
	imageModel string
	imageSize  string
	maxOut     int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, textModel, imageModel, imageSize string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:     c,
		textModel:  textModel,
		imageModel: imageModel,
		imageSize:  imageSize,
		maxOut:     maxOut,
	}, nil
}

func (g *GeminiAdapter) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	contents, err := imageContents(imageDataURI, classifyPrompt)
	if err != nil {
		return model.Persona{}, err
	}
	var out model.Persona
	if err := g.generateJSON(ctx, "classify_persona", contents, personaSchema, &out); err != nil {
		return model.Persona{}, err
	}
	return out, nil
}

func (g *GeminiAdapter) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	contents, err := imageContents(imageDataURI, parsePrompt)
	if err != nil {
		return nil, err
	}
	var out model.ResumeRecord
	if err := g.generateJSON(ctx, "parse_resume", contents, resumeSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiAdapter) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	prompt := fmt.Sprintf("Persona: %q, Title: %q. Generate 3 distinct themes.", persona, title)
	var out []model.Theme
	if err := g.generateJSON(ctx, "suggest_themes", textContents(prompt), themeListSchema, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ID = fmt.Sprintf("dynamic-theme-%d", i)
	}
	return out, nil
}

func (g *GeminiAdapter) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	prompt := fmt.Sprintf("Custom theme prompt: %q. Persona: %q.", userPrompt, persona)
	var out model.Theme
	if err := g.generateJSON(ctx, "custom_theme", textContents(prompt), customThemeSchema, &out); err != nil {
		return model.Theme{}, err
	}
	out.ID = model.CustomThemeID
	out.Variant = model.VariantCustom
	return out, nil
}

func (g *GeminiAdapter) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	prompt := fmt.Sprintf(
		"Professional abstract texture for a portfolio background. Style: %s. Vibe: %s. Persona: %s. 4k resolution.",
		theme.Style, theme.Variant, persona,
	)
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: "16:9"},
	}
	if g.imageSize != "" {
		cfg.ImageConfig.ImageSize = g.imageSize
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, textContents(prompt), cfg)
	metrics.ObserveAICall("gemini", "generate_background", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	g.observeUsage(g.imageModel, resp)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return EncodeDataURI(mime, p.InlineData.Data), nil
		}
	}
	return "", nil
}

func (g *GeminiAdapter) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(refinePersonaBrief)
	b.WriteString("\nResume Data: ")
	b.Write(recordJSON)
	b.WriteString("\nHistory:\n")
	for _, t := range history {
		if t.Speaker == model.SpeakerUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	b.WriteString("User Message: ")
	b.WriteString(message)

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: refineSystemInstruction}},
		},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, textContents(b.String()), cfg)
	metrics.ObserveAICall("gemini", "refine_chat", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	g.observeUsage(g.textModel, resp)

	if text := firstText(resp); text != "" {
		return text, nil
	}
	return refineFallbackReply, nil
}

// --- internal ---

// generateJSON runs a schema-constrained generation and unmarshals the
// reply into out. A malformed reply surfaces as a DecodeError so the
// retry layer can tell it apart from transport failures.
func (g *GeminiAdapter) generateJSON(ctx context.Context, op string, contents []*genai.Content, schema *genai.Schema, out any) error {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(g.maxOut),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, cfg)
	metrics.ObserveAICall("gemini", op, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return err
	}
	g.observeUsage(g.textModel, resp)

	text := firstText(resp)
	if text == "" {
		return &domain.DecodeError{Op: op, Err: errors.New("empty reply")}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &domain.DecodeError{Op: op, Err: err}
	}
	return nil
}

func (g *GeminiAdapter) observeUsage(modelName string, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	metrics.ObserveTokenUsage("gemini", modelName,
		int(resp.UsageMetadata.PromptTokenCount),
		int(resp.UsageMetadata.CandidatesTokenCount),
	)
}

func imageContents(imageDataURI, prompt string) ([]*genai.Content, error) {
	mime, data, err := DecodeDataURI(imageDataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
			{Text: prompt},
		},
	}}, nil
}

func textContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}
