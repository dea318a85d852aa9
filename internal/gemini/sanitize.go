package gemini

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// MaxPromptDescriptionLength caps how much of a description is embedded in
// a prompt.
const MaxPromptDescriptionLength = 200

// SanitizeForPrompt sanitizes user input to prevent prompt injection attacks.
// Quotes become single quotes, control bytes are dropped, whitespace is
// collapsed, and the result is truncated to at most maxLength bytes without
// splitting a rune.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")

	// Fields splits on any whitespace, which also removes newline injection.
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = strings.TrimSpace(input[:cut])
	}

	return input
}

// extractJSON returns the outermost {...} span of text. Gemini sometimes
// wraps JSON in prose or code fences even when asked not to.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}

// stripCodeFences removes Markdown code fence markers anywhere in text.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// hashDescription creates a SHA256 hash of the description for secure logging.
func hashDescription(description string) string {
	hash := sha256.Sum256([]byte(description))
	return hex.EncodeToString(hash[:8])
}
