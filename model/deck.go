package model

import "time"

// Zone is the section of a deck a card line belongs to.
type Zone string

const (
	ZoneLegend      Zone = "legend"
	ZoneChosen      Zone = "chosen"
	ZoneMain        Zone = "main"
	ZoneRunes       Zone = "runes"
	ZoneSideboard   Zone = "sideboard"
	ZoneBattlefield Zone = "battlefield"
)

// Zones lists every deck zone in display order.
var Zones = []Zone{ZoneLegend, ZoneChosen, ZoneMain, ZoneRunes, ZoneSideboard, ZoneBattlefield}

// IsValid reports whether z is one of the known zones.
func (z Zone) IsValid() bool {
	for _, known := range Zones {
		if z == known {
			return true
		}
	}
	return false
}

// DeckCard is one line of a deck: a card placed in a zone with a quantity.
type DeckCard struct {
	CardNo   string `json:"card_no" toml:"card_no"`
	Zone     Zone   `json:"zone" toml:"zone"`
	Quantity int    `json:"quantity" toml:"quantity"`

	// Card is filled in when a deck is loaded with card details.
	Card *Card `json:"card,omitempty" toml:"-"`
}

// Deck is a named collection of card lines.
type Deck struct {
	ID          int64      `json:"id" toml:"id"`
	Name        string     `json:"name" toml:"name"`
	Description string     `json:"description" toml:"description"`
	Cards       []DeckCard `json:"cards" toml:"cards"`
	CreatedAt   time.Time  `json:"created_at" toml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" toml:"updated_at"`
}

// CardsInZone returns the deck lines placed in zone.
func (d *Deck) CardsInZone(zone Zone) []DeckCard {
	var out []DeckCard
	for _, c := range d.Cards {
		if c.Zone == zone {
			out = append(out, c)
		}
	}
	return out
}

// DeckSummary is the list view of a deck.
type DeckSummary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TotalCards   int       `json:"total_cards"`
	LegendCardNo string    `json:"legend_card_no,omitempty"`
	LegendName   string    `json:"legend_name"`
	LegendColors []string  `json:"legend_colors"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
