package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-builder/pkg/ai/formatters"

	"cloud.google.com/go/vertexai/genai"
)

const DefaultVertexModel = "gemini-1.5-pro"

// VertexClient sends the same prompts to a Gemini model on Vertex AI and
// asks for JSON output directly.
type VertexClient struct {
	model      *genai.GenerativeModel
	baseClient *genai.Client
}

func NewVertexClient(ctx context.Context, projectID, region, model string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if model == "" {
		model = DefaultVertexModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	m := baseClient.GenerativeModel(model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(formatters.SystemPrompt)},
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.4),
	}
	return &VertexClient{model: m, baseClient: baseClient}, nil
}

func (c *VertexClient) NewDraftFormatter() Formatter { return formatters.NewDraftFormatter(c) }
func (c *VertexClient) NewATSFormatter() Formatter   { return formatters.NewATSFormatter(c) }

func (c *VertexClient) Chat(ctx context.Context, input string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("vertex returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
