package gemini

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// mockGenerator returns a canned response and records the last request.
type mockGenerator struct {
	response *genai.GenerateContentResponse
	err      error

	mu         sync.Mutex
	calls      int
	lastModel  string
	lastConfig *genai.GenerateContentConfig
	lastParts  []*genai.Part
}

func (m *mockGenerator) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastModel = model
	m.lastConfig = config
	if len(contents) > 0 {
		m.lastParts = contents[0].Parts
	}
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// blockingGenerator waits for the request context to end.
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(
	ctx context.Context,
	_ string,
	_ []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}
