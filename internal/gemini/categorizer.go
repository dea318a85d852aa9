package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"google.golang.org/genai"
)

// CategorizeTimeout bounds a single categorization call.
const CategorizeTimeout = 10 * time.Second

const categorizeInstruction = "You are an expense categorizer. Given an expense description, " +
	"return ONLY the most appropriate category from this list: %s. " +
	"Return nothing else, just the category name exactly as written."

// Categorize asks Gemini for the category of an expense description and
// returns the label as the model wrote it, trimmed. The label is not checked
// against the category list; callers decide what to do with unknown labels.
func (c *Client) Categorize(ctx context.Context, description string) (string, error) {
	descHash := hashDescription(description)

	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("description is required")
	}

	prompt := fmt.Sprintf("Categorize this expense: %q",
		SanitizeForPrompt(description, MaxPromptDescriptionLength))

	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(20),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(categorizeInstruction, strings.Join(models.Categories, ", "))},
			},
		},
		ResponseMIMEType: "text/x.enum",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeString,
			Enum: models.Categories,
		},
	}

	text, err := c.generate(ctx, CategorizeTimeout, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}, config)
	if err != nil {
		logger.Log.Warn().Err(err).
			Str("description_hash", descHash).
			Msg("Categorize: Gemini call failed")
		return "", err
	}

	label := strings.TrimSpace(text)
	if label == "" {
		logger.Log.Warn().
			Str("description_hash", descHash).
			Msg("Categorize: empty response")
		return "", fmt.Errorf("no text content in response")
	}

	logger.Log.Debug().
		Str("description_hash", descHash).
		Str("label", label).
		Msg("Categorize: received label")

	return label, nil
}
