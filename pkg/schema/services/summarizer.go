package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// Commentary shorter than this is not worth summarizing.
const minCommentaryLen = 10

// Summarizer shortens long-form verse commentary with a Gemini model.
// It is an offline ingestion collaborator only; the serving path never
// calls it.
type Summarizer struct {
	client   *genai.Client
	model    string
	maxChars int
}

// NewSummarizer creates a summarizer using Vertex AI Gemini with
// application default credentials.
func NewSummarizer(ctx context.Context, projectID, location, model string, maxChars int) (*Summarizer, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for summarization")
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Summarizer{client: client, model: model, maxChars: maxChars}, nil
}

// Close releases the genai client.
func (s *Summarizer) Close() error {
	return s.client.Close()
}

// Summarize returns a shortened version of the commentary, capped at
// the configured character budget for storage. Empty or trivially
// short commentary yields an empty summary without an API call.
func (s *Summarizer) Summarize(ctx context.Context, commentary string) (string, error) {
	if len(commentary) < minCommentaryLen {
		return "", nil
	}

	prompt := fmt.Sprintf("You are a helpful assistant that summarizes text concisely but completely.\n\nSummarize the following commentary: %s", commentary)

	model := s.client.GenerativeModel(s.model)
	model.SetMaxOutputTokens(500)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	summary := strings.TrimSpace(extractText(resp))
	if summary == "" {
		return "", fmt.Errorf("summarizer returned no text")
	}
	if len(summary) > s.maxChars {
		summary = summary[:s.maxChars]
	}
	return summary, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}
