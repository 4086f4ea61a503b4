// File: internal/infra/adapters/ai/openai_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Generator = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements the generator port on Chat Completions.
// It covers the text and vision operations; background image generation
// is not offered here and reports ErrUnsupported, which keeps the image
// pipeline on the primary provider.
type OpenAIAdapter struct {
	client openai.Client
	model  string
	maxOut int
	enc    *tiktoken.Tiktoken
}

func NewOpenAIAdapter(apiKey, model string, maxOut int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	// Token estimates only; a missing encoding just disables them.
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &OpenAIAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		maxOut: maxOut,
		enc:    enc,
	}, nil
}

func (o *OpenAIAdapter) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	var out model.Persona
	err := o.completeJSON(ctx, "classify_persona", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(jsonOnlyInstruction(`{"persona": string, "title": string, "roast": string}`)),
		visionMessage(imageDataURI, classifyPrompt),
	}, &out)
	if err != nil {
		return model.Persona{}, err
	}
	return out, nil
}

func (o *OpenAIAdapter) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	var out model.ResumeRecord
	err := o.completeJSON(ctx, "parse_resume", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(jsonOnlyInstruction(resumeShapeHint)),
		visionMessage(imageDataURI, parsePrompt),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OpenAIAdapter) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	prompt := fmt.Sprintf("Persona: %q, Title: %q. Generate 3 distinct themes.", persona, title)
	var out []model.Theme
	err := o.completeJSON(ctx, "suggest_themes", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(jsonOnlyInstruction(themeListShapeHint)),
		openai.UserMessage(prompt),
	}, &out)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ID = fmt.Sprintf("dynamic-theme-%d", i)
	}
	return out, nil
}

func (o *OpenAIAdapter) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	prompt := fmt.Sprintf("Custom theme prompt: %q. Persona: %q.", userPrompt, persona)
	var out model.Theme
	err := o.completeJSON(ctx, "custom_theme", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(jsonOnlyInstruction(themeShapeHint)),
		openai.UserMessage(prompt),
	}, &out)
	if err != nil {
		return model.Theme{}, err
	}
	out.ID = model.CustomThemeID
	out.Variant = model.VariantCustom
	return out, nil
}

func (o *OpenAIAdapter) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	return "", fmt.Errorf("openai: background generation: %w", domain.ErrUnsupported)
}

func (o *OpenAIAdapter) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+3)
	msgs = append(msgs,
		openai.SystemMessage(refinePersonaBrief),
		openai.SystemMessage("Resume Data: "+string(recordJSON)),
	)
	for _, t := range history {
		if t.Speaker == model.SpeakerUser {
			msgs = append(msgs, openai.UserMessage(t.Text))
		} else {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	text, err := o.complete(ctx, "refine_chat", msgs)
	if err != nil {
		return "", err
	}
	if text == "" {
		return refineFallbackReply, nil
	}
	return text, nil
}

// --- internal ---

func (o *OpenAIAdapter) complete(ctx context.Context, op string, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(int64(o.maxOut)),
	})
	metrics.ObserveAICall("openai", op, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}

	text := ""
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			text = c.Message.Content
			break
		}
	}
	if resp.Usage.TotalTokens > 0 {
		metrics.ObserveTokenUsage("openai", o.model, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))
	} else if o.enc != nil {
		// Usage omitted; estimate the completion side locally.
		metrics.ObserveTokenUsage("openai", o.model, 0, len(o.enc.Encode(text, nil, nil)))
	}
	return text, nil
}

func (o *OpenAIAdapter) completeJSON(ctx context.Context, op string, msgs []openai.ChatCompletionMessageParamUnion, out any) error {
	text, err := o.complete(ctx, op, msgs)
	if err != nil {
		return err
	}
	text = stripFences(text)
	if text == "" {
		return &domain.DecodeError{Op: op, Err: errors.New("empty reply")}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &domain.DecodeError{Op: op, Err: err}
	}
	return nil
}

func visionMessage(imageDataURI, prompt string) openai.ChatCompletionMessageParamUnion {
	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageDataURI}),
		openai.TextContentPart(prompt),
	})
}

func jsonOnlyInstruction(shape string) string {
	return "Respond with a single JSON value matching this shape, no prose, no code fences: " + shape
}

// stripFences removes a surrounding markdown code fence if present. Chat
// Completions models tend to fence JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const resumeShapeHint = `{"name": string, "title": string, "contact": {"email": string, "phone": string, "location": string, "linkedin": string, "github": string}, "summary": string, "experience": [{"id": string, "company": string, "position": string, "period": string, "description": [string]}], "education": [{"id": string, "institution": string, "degree": string, "year": string}], "skills": [string]}`

const themeShapeHint = `{"name": string, "description": string, "accentColor": string, "secondaryColor": string, "fontFamily": string, "headingFont": string, "style": string}`

const themeListShapeHint = `[{"name": string, "description": string, "accentColor": string, "secondaryColor": string, "fontFamily": string, "headingFont": string, "style": string, "type": string}]`
