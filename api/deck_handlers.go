package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/card-catalog/internal/deckfile"
	"github.com/gcbaptista/card-catalog/model"
)

const tomlContentType = "application/toml"

// ListDecksHandler lists deck summaries.
func (api *API) ListDecksHandler(c *gin.Context) {
	decks, err := api.engine.ListDecks(c.Request.Context())
	if err != nil {
		SendServiceError(c, "list decks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decks": decks,
		"total": len(decks),
	})
}

// CreateDeckHandler saves a new deck from a JSON body.
func (api *API) CreateDeckHandler(c *gin.Context) {
	var deck model.Deck
	if result := ValidateJSONBinding(c, &deck); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	deck.ID = 0

	api.saveNewDeck(c, &deck)
}

// ImportDeckHandler saves a new deck from a TOML deck file.
func (api *API) ImportDeckHandler(c *gin.Context) {
	deck, err := deckfile.Read(c.Request.Body)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid deck file: "+err.Error())
		return
	}

	api.saveNewDeck(c, deck)
}

func (api *API) saveNewDeck(c *gin.Context, deck *model.Deck) {
	if result := ValidateDeck(deck); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	id, err := api.engine.SaveDeck(c.Request.Context(), deck)
	if err != nil {
		SendServiceError(c, "save deck", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Deck '%s' created", deck.Name),
		"id":      id,
	})
}

// GetDeckHandler returns one deck with its card lines.
func (api *API) GetDeckHandler(c *gin.Context) {
	id, result := ValidateDeckID(c.Param("deckId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	deck, err := api.engine.GetDeck(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "get deck", err)
		return
	}

	c.JSON(http.StatusOK, deck)
}

// UpdateDeckHandler replaces an existing deck.
func (api *API) UpdateDeckHandler(c *gin.Context) {
	id, result := ValidateDeckID(c.Param("deckId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var deck model.Deck
	if result := ValidateJSONBinding(c, &deck); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	deck.ID = id

	if result := ValidateDeck(&deck); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if _, err := api.engine.SaveDeck(c.Request.Context(), &deck); err != nil {
		SendServiceError(c, "update deck", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deck %d updated", id),
		"id":      id,
	})
}

// DeleteDeckHandler removes a deck.
func (api *API) DeleteDeckHandler(c *gin.Context) {
	id, result := ValidateDeckID(c.Param("deckId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.DeleteDeck(c.Request.Context(), id); err != nil {
		SendServiceError(c, "delete deck", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deck %d deleted", id)})
}

// ExportDeckHandler downloads a deck as a TOML deck file.
func (api *API) ExportDeckHandler(c *gin.Context) {
	id, result := ValidateDeckID(c.Param("deckId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	deck, err := api.engine.GetDeck(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "export deck", err)
		return
	}

	var buf bytes.Buffer
	if err := deckfile.Write(&buf, deck, time.Now()); err != nil {
		SendServiceError(c, "export deck", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="deck-%d.toml"`, id))
	c.Data(http.StatusOK, tomlContentType, buf.Bytes())
}
