package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

// LookupRequest names the cards to fetch by number.
type LookupRequest struct {
	CardNos []string `json:"card_nos"`
}

// SearchHandler runs one faceted search. An empty body searches everything.
func (api *API) SearchHandler(c *gin.Context) {
	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	result, err := api.engine.Search(c.Request.Context(), req)
	if err != nil {
		SendServiceError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MultiSearchHandler runs several named searches in one request.
func (api *API) MultiSearchHandler(c *gin.Context) {
	var req services.MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateMultiSearch(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.engine.MultiSearch(c.Request.Context(), req)
	if err != nil {
		SendServiceError(c, "multi-search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCardHandler returns one card by number.
func (api *API) GetCardHandler(c *gin.Context) {
	cardNo := c.Param("cardNo")
	if result := ValidateCardNo(cardNo); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	card, err := api.engine.GetCard(c.Request.Context(), cardNo)
	if err != nil {
		SendServiceError(c, "get card", err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// LookupCardsHandler returns the known cards among the requested numbers.
// Unknown numbers are listed under "missing".
func (api *API) LookupCardsHandler(c *gin.Context) {
	var req LookupRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	cardNos := model.UniqueTrimmed(req.CardNos)
	if result := ValidateLookup(cardNos); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	cards, err := api.engine.LookupCards(c.Request.Context(), cardNos)
	if err != nil {
		SendServiceError(c, "lookup cards", err)
		return
	}

	found := make(map[string]bool, len(cards))
	for _, card := range cards {
		found[card.CardNo] = true
	}
	missing := make([]string, 0)
	for _, no := range cardNos {
		if !found[no] {
			missing = append(missing, no)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":   cards,
		"missing": missing,
		"total":   len(cards),
	})
}

// ImportCardsHandler upserts one card object or an array of cards in the
// background.
func (api *API) ImportCardsHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Failed to read request body: "+err.Error())
		return
	}

	cards, err := decodeCards(body)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateCards(cards); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.ImportCardsAsync(cards)
	if err != nil {
		SendJobExecutionError(c, "card import", err)
		return
	}

	sendAccepted(c, jobID, fmt.Sprintf("Import of %d cards started", len(cards)))
}

// decodeCards accepts either a single card object or an array of cards.
func decodeCards(body []byte) ([]model.Card, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("request body is empty")
	}

	switch trimmed[0] {
	case '[':
		var cards []model.Card
		if err := json.Unmarshal(trimmed, &cards); err != nil {
			return nil, err
		}
		return cards, nil
	case '{':
		var card model.Card
		if err := json.Unmarshal(trimmed, &card); err != nil {
			return nil, err
		}
		return []model.Card{card}, nil
	default:
		return nil, errors.New("expecting a card object or an array of cards")
	}
}

// SyncHandler starts a remote version check and import. ?force=true imports
// even when the remote version is unchanged.
func (api *API) SyncHandler(c *gin.Context) {
	force := false
	if raw := c.Query("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			result := &ValidationResult{Valid: true}
			result.AddError("force", "force must be a boolean")
			SendValidationError(c, result)
			return
		}
		force = parsed
	}

	jobID, err := api.engine.SyncAsync(force)
	if err != nil {
		SendJobExecutionError(c, "catalog sync", err)
		return
	}

	sendAccepted(c, jobID, "Catalog sync started")
}

// SnapshotHandler starts writing a copy of the catalog to the snapshot path.
func (api *API) SnapshotHandler(c *gin.Context) {
	jobID, err := api.engine.SnapshotAsync()
	if err != nil {
		SendServiceError(c, "snapshot", err)
		return
	}

	sendAccepted(c, jobID, "Snapshot started")
}

// ListFacetsHandler lists the legal values of every categorical facet.
func (api *API) ListFacetsHandler(c *gin.Context) {
	listing, err := api.engine.ListFacets(c.Request.Context())
	if err != nil {
		SendServiceError(c, "list facets", err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListRangesHandler lists the observed bounds of every numeric facet.
func (api *API) ListRangesHandler(c *gin.Context) {
	listing, err := api.engine.ListRanges(c.Request.Context())
	if err != nil {
		SendServiceError(c, "list ranges", err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
