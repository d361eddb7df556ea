package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/model"
)

// SaveDeck inserts deck when its ID is zero, otherwise replaces the stored
// deck with that ID. Lines for the same card and zone are merged and a zero
// quantity counts as one. The deck's ID and timestamps are updated in place.
func (s *Store) SaveDeck(ctx context.Context, deck *model.Deck) (int64, error) {
	lines, err := normalizeDeck(deck)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save deck: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	id := deck.ID
	if id == 0 {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO decks (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)",
			deck.Name, deck.Description, formatTime(now), formatTime(now))
		if err != nil {
			return 0, fmt.Errorf("insert deck: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("read deck id: %w", err)
		}
		deck.CreatedAt = now
	} else {
		res, err := tx.ExecContext(ctx,
			"UPDATE decks SET name = ?, description = ?, updated_at = ? WHERE id = ?",
			deck.Name, deck.Description, formatTime(now), id)
		if err != nil {
			return 0, fmt.Errorf("update deck %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return 0, fmt.Errorf("update deck %d: %w", id, err)
		} else if n == 0 {
			return 0, internalErrors.NewDeckNotFoundError(id)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM deck_cards WHERE deck_id = ?", id); err != nil {
			return 0, fmt.Errorf("clear deck %d lines: %w", id, err)
		}
	}

	for i, line := range lines {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO deck_cards (deck_id, card_no, zone, quantity, position) VALUES (?, ?, ?, ?, ?)",
			id, line.CardNo, string(line.Zone), line.Quantity, i)
		if err != nil {
			return 0, fmt.Errorf("insert deck %d line %s/%s: %w", id, line.Zone, line.CardNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit deck %d: %w", id, err)
	}

	deck.ID = id
	deck.UpdatedAt = now
	deck.Cards = lines
	return id, nil
}

func normalizeDeck(deck *model.Deck) ([]model.DeckCard, error) {
	if deck == nil {
		return nil, internalErrors.NewValidationError("deck", "cannot be nil")
	}
	deck.Name = strings.TrimSpace(deck.Name)
	deck.Description = strings.TrimSpace(deck.Description)
	if deck.Name == "" {
		return nil, internalErrors.NewValidationError("name", "cannot be empty")
	}

	type lineKey struct {
		zone   model.Zone
		cardNo string
	}
	index := make(map[lineKey]int)
	lines := make([]model.DeckCard, 0, len(deck.Cards))
	for i, c := range deck.Cards {
		no := strings.TrimSpace(c.CardNo)
		if no == "" {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("cards[%d].card_no", i), "cannot be empty")
		}
		if !c.Zone.IsValid() {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("cards[%d].zone", i), fmt.Sprintf("unknown zone '%s'", c.Zone))
		}
		qty := c.Quantity
		if qty < 0 {
			return nil, internalErrors.NewValidationError(fmt.Sprintf("cards[%d].quantity", i), "must not be negative")
		}
		if qty == 0 {
			qty = 1
		}

		key := lineKey{c.Zone, no}
		if at, ok := index[key]; ok {
			lines[at].Quantity += qty
			continue
		}
		index[key] = len(lines)
		lines = append(lines, model.DeckCard{CardNo: no, Zone: c.Zone, Quantity: qty})
	}
	return lines, nil
}

// GetDeck loads a deck with its lines grouped by zone. Lines whose card is in
// the catalog carry the card details.
func (s *Store) GetDeck(ctx context.Context, id int64) (*model.Deck, error) {
	var (
		deck             model.Deck
		created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM decks WHERE id = ?", id).
		Scan(&deck.ID, &deck.Name, &deck.Description, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internalErrors.NewDeckNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get deck %d: %w", id, err)
	}
	if deck.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if deck.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	lines, err := s.deckLines(ctx, id)
	if err != nil {
		return nil, err
	}

	cardNos := make([]string, len(lines))
	for i, l := range lines {
		cardNos[i] = l.CardNo
	}
	cards, err := s.LookupCards(ctx, cardNos)
	if err != nil {
		return nil, err
	}
	byNo := make(map[string]*model.Card, len(cards))
	for i := range cards {
		byNo[cards[i].CardNo] = &cards[i]
	}
	for i := range lines {
		lines[i].Card = byNo[lines[i].CardNo]
	}

	deck.Cards = lines
	return &deck, nil
}

func (s *Store) deckLines(ctx context.Context, id int64) ([]model.DeckCard, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT card_no, zone, quantity FROM deck_cards WHERE deck_id = ? ORDER BY position, card_no", id)
	if err != nil {
		return nil, fmt.Errorf("query deck %d lines: %w", id, err)
	}
	defer rows.Close()

	lines := []model.DeckCard{}
	for rows.Next() {
		var l model.DeckCard
		var zone string
		if err := rows.Scan(&l.CardNo, &zone, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan deck %d line: %w", id, err)
		}
		l.Zone = model.Zone(zone)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deck %d lines: %w", id, err)
	}

	slices.SortStableFunc(lines, func(a, b model.DeckCard) int {
		return slices.Index(model.Zones, a.Zone) - slices.Index(model.Zones, b.Zone)
	})
	return lines, nil
}

// ListDecks lists every deck, most recently updated first, with its total
// card count and its first legend card.
func (s *Store) ListDecks(ctx context.Context) ([]model.DeckSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT d.id, d.name, d.description, d.created_at, d.updated_at,
		COALESCE(SUM(dc.quantity), 0)
		FROM decks d
		LEFT JOIN deck_cards dc ON d.id = dc.deck_id
		GROUP BY d.id
		ORDER BY d.updated_at DESC, d.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	summaries := []model.DeckSummary{}
	for rows.Next() {
		var (
			d                model.DeckSummary
			created, updated string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &created, &updated, &d.TotalCards); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		if d.CreatedAt, err = parseTime(created); err != nil {
			rows.Close()
			return nil, err
		}
		if d.UpdatedAt, err = parseTime(updated); err != nil {
			rows.Close()
			return nil, err
		}
		summaries = append(summaries, d)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate decks: %w", err)
	}

	for i := range summaries {
		if err := s.fillLegend(ctx, &summaries[i]); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

func (s *Store) fillLegend(ctx context.Context, d *model.DeckSummary) error {
	d.LegendColors = []string{}

	var name, colors string
	err := s.db.QueryRowContext(ctx, `SELECT dc.card_no, COALESCE(c.card_name, ''), COALESCE(c.card_color_list, '[]')
		FROM deck_cards dc
		LEFT JOIN cards c ON c.card_no = dc.card_no
		WHERE dc.deck_id = ? AND dc.zone = ?
		ORDER BY dc.position
		LIMIT 1`, d.ID, string(model.ZoneLegend)).Scan(&d.LegendCardNo, &name, &colors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read legend of deck %d: %w", d.ID, err)
	}
	d.LegendName = name
	d.LegendColors = s.decodeList(d.LegendCardNo, "card_color_list", colors)
	return nil
}

// DeleteDeck removes a deck and its lines.
func (s *Store) DeleteDeck(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete deck %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete deck %d: %w", id, err)
	}
	if n == 0 {
		return internalErrors.NewDeckNotFoundError(id)
	}
	return nil
}
