// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

// Request limits enforced before a call reaches the catalog.
const (
	maxLookupCardNos  = 500
	maxImportCards    = 50000
	maxMultiSearches  = 20
	maxSearchNameSize = 64
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateCardNo validates a card number path parameter
func ValidateCardNo(cardNo string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if cardNo == "" {
		result.AddError("cardNo", "Card number is required")
		return result
	}

	if strings.TrimSpace(cardNo) != cardNo {
		result.AddError("cardNo", "Card number cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateDeckID parses a deck ID path parameter
func ValidateDeckID(raw string) (int64, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		result.AddError("deckId", "Deck ID must be a positive integer")
		return 0, result
	}

	return id, result
}

// ValidateDeck checks the parts of a deck the store would reject, so every
// problem is reported at once.
func ValidateDeck(deck *model.Deck) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if deck == nil {
		result.AddError("deck", "Deck is required")
		return result
	}

	if strings.TrimSpace(deck.Name) == "" {
		result.AddError("name", "Deck name is required")
	}

	for i, line := range deck.Cards {
		if strings.TrimSpace(line.CardNo) == "" {
			result.AddError(fmt.Sprintf("cards[%d].card_no", i), "Card number is required")
		}
		if !line.Zone.IsValid() {
			result.AddError(fmt.Sprintf("cards[%d].zone", i), fmt.Sprintf("Unknown zone '%s'", line.Zone))
		}
		if line.Quantity < 0 {
			result.AddError(fmt.Sprintf("cards[%d].quantity", i), "Quantity cannot be negative")
		}
	}

	return result
}

// ValidateCards validates a card array for import
func ValidateCards(cards []model.Card) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(cards) == 0 {
		result.AddError("cards", "No cards provided")
		return result
	}

	if len(cards) > maxImportCards {
		result.AddError("cards", fmt.Sprintf("At most %d cards can be imported at once", maxImportCards))
	}

	return result
}

// ValidateLookup validates the card numbers of a lookup request
func ValidateLookup(cardNos []string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(cardNos) == 0 {
		result.AddError("card_nos", "At least one card number is required")
		return result
	}

	if len(cardNos) > maxLookupCardNos {
		result.AddError("card_nos", fmt.Sprintf("At most %d card numbers can be looked up at once", maxLookupCardNos))
	}

	return result
}

// ValidateMultiSearch validates a multi-search request
func ValidateMultiSearch(req *services.MultiSearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}

	if len(req.Queries) > maxMultiSearches {
		result.AddError("queries", fmt.Sprintf("Too many queries (max %d)", maxMultiSearches))
		return result
	}

	seen := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		field := fmt.Sprintf("queries[%d].name", i)
		switch {
		case q.Name == "":
			result.AddError(field, "Query name is required")
		case len(q.Name) > maxSearchNameSize:
			result.AddError(field, fmt.Sprintf("Query name cannot exceed %d characters", maxSearchNameSize))
		case seen[q.Name]:
			result.AddError(field, fmt.Sprintf("Duplicate query name '%s'", q.Name))
		}
		seen[q.Name] = true
	}

	return result
}

// ValidateJobStatus parses an optional job status filter
func ValidateJobStatus(raw string) (*model.JobStatus, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if raw == "" {
		return nil, result
	}

	status := model.JobStatus(raw)
	switch status {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCancelling,
		model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
		return &status, result
	}

	result.AddError("status", fmt.Sprintf("Unknown job status '%s'", raw))
	return nil, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target any) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
