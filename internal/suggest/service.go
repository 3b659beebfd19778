// Package suggest produces improvement suggestions for an SOP draft from its
// completed sections, using the OpenAI chat completions API.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SectionInput is one completed section handed to the model.
type SectionInput struct {
	SectionID string         `json:"sectionId"`
	Data      map[string]any `json:"data"`
}

// Completer is the slice of the OpenAI client the service needs; tests
// substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service turns completed-section answers into bullet suggestions.
type Service struct {
	completer Completer
}

func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// NewOpenAIService builds a service backed by the real OpenAI API.
func NewOpenAIService(apiKey string) *Service {
	return NewService(&openAICompleter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	})
}

const systemPrompt = "You are a healthcare SOP expert providing improvement suggestions."

const promptHeader = `You are an expert healthcare consultant specializing in Standard Operating Procedures (SOPs) for hospitals. Based on the following completed sections of an SOP draft, provide 3-5 specific, actionable suggestions to improve the SOP. Focus on:

1. Compliance with healthcare standards (NABH, JCI, etc.)
2. Patient safety and quality improvement
3. Operational efficiency
4. Risk management
5. Documentation completeness

Completed sections data:
`

const promptFooter = `

Provide suggestions in a concise, bullet-point format. Each suggestion should be specific and actionable.`

// Suggestions asks the model for improvements and keeps only bullet lines.
func (s *Service) Suggestions(ctx context.Context, sections []SectionInput) ([]string, error) {
	if len(sections) == 0 {
		return nil, errors.New("no completed sections to analyze")
	}

	payload, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}

	text, err := s.completer.Complete(ctx, systemPrompt, promptHeader+string(payload)+promptFooter)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	return bulletLines(text), nil
}

// bulletLines keeps only lines that look like bullets, trimmed.
func bulletLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") {
			out = append(out, trimmed)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

type openAICompleter struct {
	client openai.Client
}

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
