package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Analyzer turns an ordered list of step image URLs into a text result.
type Analyzer interface {
	AnalyzeImages(ctx context.Context, imageURLs []string) (string, error)
}

// AnalysisService calls the external analysis model with the step images.
type AnalysisService struct {
	client *openai.Client
}

func NewAnalysisService(apiKey, baseURL string) *AnalysisService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &AnalysisService{
		client: openai.NewClientWithConfig(cfg),
	}
}

// AnalyzeImages sends the ordered step images for analysis and returns the
// markdown summary produced by the model.
func (s *AnalysisService) AnalyzeImages(ctx context.Context, imageURLs []string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("analysis client not initialized")
	}

	parts := make([]openai.ChatMessagePart, 0, len(imageURLs)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: `You are reviewing a collaborative puzzle session. The following images are the board snapshots for steps 1 through 9, in order. Summarize how the work progressed across the steps and assess the final outcome. Respond in markdown.`,
	})
	for _, url := range imageURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: url,
			},
		})
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:         openai.ChatMessageRoleUser,
					MultiContent: parts,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("analysis API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from analysis API")
	}

	return resp.Choices[0].Message.Content, nil
}
