// Package deckfile reads and writes decks as TOML documents.
package deckfile

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gcbaptista/card-catalog/model"
)

// document is the on-disk layout of a deck: one table per zone.
type document struct {
	Name        string    `toml:"name"`
	Description string    `toml:"description,omitempty"`
	ExportedAt  time.Time `toml:"exported_at"`
	Zones       []zone    `toml:"zone"`
}

type zone struct {
	Name  model.Zone `toml:"name"`
	Cards []line     `toml:"card"`
}

type line struct {
	CardNo   string `toml:"card_no"`
	Title    string `toml:"title,omitempty"`
	Quantity int    `toml:"quantity"`
}

// Write encodes deck as TOML. Zones come in display order and empty zones
// are left out. Card titles are included when the deck was loaded with card
// details.
func Write(w io.Writer, deck *model.Deck, now time.Time) error {
	doc := document{
		Name:        deck.Name,
		Description: deck.Description,
		ExportedAt:  now.UTC().Truncate(time.Second),
	}
	for _, z := range model.Zones {
		lines := deck.CardsInZone(z)
		if len(lines) == 0 {
			continue
		}
		out := zone{Name: z, Cards: make([]line, len(lines))}
		for i, l := range lines {
			out.Cards[i] = line{CardNo: l.CardNo, Quantity: l.Quantity}
			if l.Card != nil {
				out.Cards[i].Title = l.Card.Name
			}
		}
		doc.Zones = append(doc.Zones, out)
	}

	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}
	return nil
}

// Read decodes a TOML deck. The result has no ID, so saving it creates a new
// deck. Zone names are not checked here; the store rejects unknown zones.
func Read(r io.Reader) (*model.Deck, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown deck keys: %s", strings.Join(keys, ", "))
	}

	deck := &model.Deck{Name: doc.Name, Description: doc.Description}
	for _, z := range doc.Zones {
		for _, l := range z.Cards {
			deck.Cards = append(deck.Cards, model.DeckCard{CardNo: l.CardNo, Zone: z.Name, Quantity: l.Quantity})
		}
	}
	return deck, nil
}
