package gemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"google.golang.org/genai"
)

type IGemini interface {
	GenerateWithSearch(ctx context.Context, systemInstruction, userText string, maxTokens int32) (string, error)
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

// GenerateWithSearch answers with the Google Search tool enabled, for queries
// that need fresh external facts.
func (g *geminiClient) GenerateWithSearch(ctx context.Context, systemInstruction, userText string, maxTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userText), config)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", errors.New("no response from Gemini API")
	}

	return text, nil
}
