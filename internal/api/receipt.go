package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
)

type receiptRequest struct {
	Image string `json:"image"`
}

type receiptResponse struct {
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
}

func (h *handler) extractReceipt(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}
	if h.receipts == nil {
		writeError(w, http.StatusServiceUnavailable, "Receipt extraction is not configured")
		return
	}

	var req receiptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, http.StatusBadRequest, "Image is required")
		return
	}

	image, mimeType, err := gemini.DecodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	receipt, err := h.receipts.ExtractReceipt(r.Context(), image, mimeType)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Receipt extraction is not configured")
	case err != nil:
		writeInternalError(w, r, err, "Failed to extract receipt data")
	default:
		writeJSON(w, http.StatusOK, receiptResponse{
			Amount:      receipt.Amount,
			Merchant:    receipt.Merchant,
			Description: receipt.Summary(),
		})
	}
}
