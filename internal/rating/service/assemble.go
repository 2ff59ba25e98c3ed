package service

import (
	"strings"

	"github.com/google/uuid"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

// assemble turns the sheet into a response. Lines keep insertion order and
// the total is their rounded sum.
func assemble(sheet *ratingdomain.Sheet, requestID string) ratingdomain.Response {
	return ratingdomain.Response{
		QuoteID:  QuoteID(requestID),
		Total:    sheet.Subtotal(),
		Charges:  sheet.Lines(),
		Warnings: sheet.Warnings(),
	}
}

// QuoteID renders a well-formed request id as 32 hex characters. Anything
// else gets a fresh id.
func QuoteID(requestID string) string {
	id, err := uuid.Parse(strings.TrimSpace(requestID))
	if err != nil {
		id = uuid.New()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}
