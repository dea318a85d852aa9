package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"google.golang.org/genai"
)

// ExtractReceiptTimeout bounds a single receipt extraction call.
const ExtractReceiptTimeout = 30 * time.Second

// DefaultMerchant stands in for an unreadable merchant name.
const DefaultMerchant = "Purchase"

// ErrInvalidImage is returned by DecodeImage for payloads that are not
// base64 image data.
var ErrInvalidImage = errors.New("invalid image payload")

const receiptPrompt = `Extract the following from this receipt:
1. Total amount (just the number, e.g., "45.67")
2. Merchant/vendor name
3. Brief description of items purchased

Return ONLY a JSON object with these keys: amount, merchant, description.
Example: {"amount": "45.67", "merchant": "Starbucks", "description": "Coffee and pastry"}`

// Receipt is the best-effort result of reading a receipt image. Fields the
// model could not provide are zero.
type Receipt struct {
	Amount      decimal.Decimal
	Merchant    string
	Description string
}

// Summary builds an expense description such as "Starbucks - Coffee and
// pastry". An unknown merchant reads as "Purchase".
func (r Receipt) Summary() string {
	merchant := r.Merchant
	if merchant == "" {
		merchant = DefaultMerchant
	}
	if r.Description == "" {
		return merchant
	}
	return merchant + " - " + r.Description
}

// receiptResponse is the JSON structure returned by Gemini. Amount is
// sometimes a string and sometimes a number.
type receiptResponse struct {
	Amount      json.RawMessage `json:"amount"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
}

// ExtractReceipt reads amount, merchant and items from a receipt image.
// Only failures to reach Gemini are returned as errors; an unreadable
// answer yields a zero Receipt.
func (c *Client) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*Receipt, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	text, err := c.generate(ctx, ExtractReceiptTimeout, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			},
		},
	}, &genai.GenerateContentConfig{MaxOutputTokens: int32(300)})
	if err != nil {
		logger.Log.Error().Err(err).
			Int("image_bytes", len(image)).
			Msg("ExtractReceipt: Gemini call failed")
		return nil, err
	}

	receipt := parseReceiptResponse(text)
	logger.Log.Debug().
		Bool("has_amount", !receipt.Amount.IsZero()).
		Bool("has_merchant", receipt.Merchant != "").
		Msg("ExtractReceipt: parsed response")

	return receipt, nil
}

// parseReceiptResponse never fails. Anything it cannot read becomes the
// zero value of the corresponding field.
func parseReceiptResponse(response string) *Receipt {
	jsonText := extractJSON(stripCodeFences(response))
	if jsonText == "" {
		return &Receipt{}
	}

	var rr receiptResponse
	if err := json.Unmarshal([]byte(jsonText), &rr); err != nil {
		return &Receipt{}
	}

	return &Receipt{
		Amount:      parseAmount(rr.Amount),
		Merchant:    strings.TrimSpace(rr.Merchant),
		Description: strings.TrimSpace(rr.Description),
	}
}

var amountNoise = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "¥", "", " ", "")

// parseAmount accepts a JSON number or string. Negative or unreadable
// amounts are zero.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}

	amount, err := decimal.NewFromString(amountNoise.Replace(strings.TrimSpace(s)))
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// DecodeImage decodes a "data:<mime>;base64,<data>" URL or raw base64 into
// bytes and a MIME type. Without a declared type the content is sniffed.
func DecodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrInvalidImage
	}

	var mimeType string
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, "", ErrInvalidImage
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = data
	}

	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		image, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(image) == 0 {
		return nil, "", ErrInvalidImage
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	return image, mimeType, nil
}
