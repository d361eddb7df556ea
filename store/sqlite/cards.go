package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/facets"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/model"
)

// cardColumns is the column order shared by upserts and scans.
var cardColumns = []string{
	"card_no", "card_category", "card_category_name", "card_name", "sub_title",
	"card_color_list", "card_qa_list", "region", "tag", "artist",
	"card_effect", "flavor_text", "energy", "return_energy", "power",
	"rarity", "rarity_name", "extend_rarity", "extend_rarity_name", "back_image",
	"champion_tag", "keywords", "series_name", "front_image_en", "card_name_en",
	"effect_en",
}

var (
	selectCardColumns = strings.Join(cardColumns, ", ")
	upsertCardSQL     = buildUpsertCardSQL()
)

func buildUpsertCardSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cardColumns)+1), ", ")
	updates := make([]string, 0, len(cardColumns))
	for _, col := range cardColumns[1:] {
		updates = append(updates, col+" = excluded."+col)
	}
	updates = append(updates, "updated_at = excluded.updated_at")
	return fmt.Sprintf("INSERT INTO cards (%s, updated_at) VALUES (%s) ON CONFLICT (card_no) DO UPDATE SET %s",
		selectCardColumns, placeholders, strings.Join(updates, ", "))
}

// UpsertCard normalizes card and inserts or replaces it by card number.
func (s *Store) UpsertCard(ctx context.Context, card model.Card) error {
	card.Normalize()
	if card.CardNo == "" {
		return internalErrors.NewValidationError("card_no", "cannot be empty")
	}

	colors, err := json.Marshal(card.Colors)
	if err != nil {
		return fmt.Errorf("encode colors of %s: %w", card.CardNo, err)
	}
	keywords, err := json.Marshal(card.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords of %s: %w", card.CardNo, err)
	}

	_, err = s.db.ExecContext(ctx, upsertCardSQL,
		card.CardNo, card.Category, card.CategoryName, card.Name, card.SubTitle,
		string(colors), string(card.QAList), card.Region, card.Tag, card.Artist,
		card.Effect, card.FlavorText, card.Energy, card.ReturnEnergy, card.Power,
		card.Rarity, card.RarityName, card.ExtendRarity, card.ExtendRarityName, card.BackImage,
		card.ChampionTag, string(keywords), card.SeriesName, card.FrontImageEn, card.NameEn,
		card.EffectEn, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.CardNo, err)
	}
	return nil
}

// CountCards counts the cards matching where.
func (s *Store) CountCards(ctx context.Context, where query.Predicate) (int, error) {
	q := "SELECT COUNT(*) FROM cards"
	cond, args := query.Render(where)
	if cond != "" {
		q += " WHERE " + cond
	}

	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// SelectCards returns one ordered window of the cards matching where.
func (s *Store) SelectCards(ctx context.Context, where query.Predicate, orders []query.Order, limit, offset int) ([]model.Card, error) {
	if limit <= 0 {
		return []model.Card{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectCardColumns)
	b.WriteString(" FROM cards")
	cond, args := query.Render(where)
	if cond != "" {
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(query.RenderOrder(orders))
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	return s.queryCards(ctx, b.String(), args...)
}

// GetCard returns the card with the given number.
func (s *Store) GetCard(ctx context.Context, cardNo string) (*model.Card, error) {
	cards, err := s.queryCards(ctx, "SELECT "+selectCardColumns+" FROM cards WHERE card_no = ?", strings.TrimSpace(cardNo))
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, internalErrors.NewCardNotFoundError(cardNo)
	}
	return &cards[0], nil
}

// LookupCards returns the known cards among cardNos in request order.
func (s *Store) LookupCards(ctx context.Context, cardNos []string) ([]model.Card, error) {
	wanted := model.UniqueTrimmed(cardNos)
	if len(wanted) == 0 {
		return []model.Card{}, nil
	}

	args := make([]any, len(wanted))
	for i, no := range wanted {
		args[i] = no
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(wanted)), ", ")
	found, err := s.queryCards(ctx, "SELECT "+selectCardColumns+" FROM cards WHERE card_no IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}

	byNo := make(map[string]model.Card, len(found))
	for _, c := range found {
		byNo[c.CardNo] = c
	}
	out := make([]model.Card, 0, len(found))
	for _, no := range wanted {
		if c, ok := byNo[no]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) queryCards(ctx context.Context, q string, args ...any) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		c, err := s.scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (s *Store) scanCard(rows *sql.Rows) (model.Card, error) {
	var (
		c                model.Card
		colors, keywords string
		qa               string
	)
	err := rows.Scan(
		&c.CardNo, &c.Category, &c.CategoryName, &c.Name, &c.SubTitle,
		&colors, &qa, &c.Region, &c.Tag, &c.Artist,
		&c.Effect, &c.FlavorText, &c.Energy, &c.ReturnEnergy, &c.Power,
		&c.Rarity, &c.RarityName, &c.ExtendRarity, &c.ExtendRarityName, &c.BackImage,
		&c.ChampionTag, &keywords, &c.SeriesName, &c.FrontImageEn, &c.NameEn,
		&c.EffectEn,
	)
	if err != nil {
		return model.Card{}, fmt.Errorf("scan card: %w", err)
	}
	if qa != "" {
		c.QAList = json.RawMessage(qa)
	}
	c.Colors = s.decodeList(c.CardNo, query.ColColors, colors)
	c.Keywords = s.decodeList(c.CardNo, query.ColKeywords, keywords)
	return c, nil
}

// decodeList reads a stored JSON list. A malformed value reads as empty.
func (s *Store) decodeList(cardNo, column, raw string) []string {
	values, err := parseList(raw)
	if err != nil {
		s.logger.Warn("malformed list value",
			zap.String("card_no", cardNo),
			zap.String("column", column),
			zap.Error(err))
		return []string{}
	}
	return values
}

func parseList(raw string) ([]string, error) {
	var values []string
	if raw == "" {
		return []string{}, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// DistinctValues returns the values cards hold for facet. Rows whose list
// value is not a JSON string array are logged and skipped.
func (s *Store) DistinctValues(ctx context.Context, facet query.Facet) ([]string, error) {
	col := facet.Column
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT "+col+" FROM cards WHERE "+col+" <> ''")
	if err != nil {
		return nil, fmt.Errorf("list %s values: %w", facet.Name, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s value: %w", facet.Name, err)
		}
		switch facet.Kind {
		case query.Scalar:
			out = append(out, raw)
		case query.Delimited:
			out = append(out, model.SplitTags(raw)...)
		case query.List:
			values, err := parseList(raw)
			if err != nil {
				s.logger.Warn("skipping malformed list value",
					zap.String("facet", facet.Name),
					zap.String("value", raw),
					zap.Error(err))
				continue
			}
			out = append(out, values...)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s values: %w", facet.Name, err)
	}
	return out, nil
}

// NumericBounds returns the minimum and maximum of a range field.
func (s *Store) NumericBounds(ctx context.Context, field query.RangeField) (facets.Bounds, error) {
	var low, high sql.NullInt64
	q := "SELECT MIN(" + field.Column + "), MAX(" + field.Column + ") FROM cards"
	if err := s.db.QueryRowContext(ctx, q).Scan(&low, &high); err != nil {
		return facets.Bounds{}, fmt.Errorf("read %s bounds: %w", field.Name, err)
	}

	var b facets.Bounds
	if low.Valid {
		v := int(low.Int64)
		b.Min = &v
	}
	if high.Valid {
		v := int(high.Int64)
		b.Max = &v
	}
	return b, nil
}

// GetVersion returns the recorded version of a dataset.
func (s *Store) GetVersion(ctx context.Context, name string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM versions WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get version %s: %w", name, err)
	}
	return v, true, nil
}

// SetVersion records the version of a dataset.
func (s *Store) SetVersion(ctx context.Context, name, version string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO versions (name, updated_at) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET updated_at = excluded.updated_at",
		name, version)
	if err != nil {
		return fmt.Errorf("set version %s: %w", name, err)
	}
	return nil
}
