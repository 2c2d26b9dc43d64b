package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type IOpenAI interface {
	Transcribe(ctx context.Context, filePath string, language string) (string, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
	ExtractJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type openAIClient struct {
	client    *openai.Client
	chatModel string
}

func New() IOpenAI {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_CHAT_MODEL")

	if model == "" {
		model = openai.GPT4oMini
	}

	return &openAIClient{
		client:    openai.NewClient(apiKey),
		chatModel: model,
	}
}

func (c *openAIClient) Transcribe(ctx context.Context, filePath string, language string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
		Language: language,
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("whisper transcription error: %w", err)
	}

	return resp.Text, nil
}

func (c *openAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	)

	if err != nil {
		return "", fmt.Errorf("chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from chat model")
	}

	return resp.Choices[0].Message.Content, nil
}

// ExtractJSON runs a structured-extraction call in JSON mode and returns the
// raw JSON payload. Decoding into the target schema is the caller's job, so
// that a parse failure can be handled identically to a transport failure.
func (c *openAIClient) ExtractJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
			MaxTokens:   400,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	if err != nil {
		return "", fmt.Errorf("structured extraction error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from extraction model")
	}

	return resp.Choices[0].Message.Content, nil
}
