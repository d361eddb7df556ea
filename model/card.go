package model

import (
	"encoding/json"
	"strings"
)

// TagSeparator joins the members of a card's tag list in storage.
const TagSeparator = "|"

// Card is a single catalog record. CardNo is the primary key.
// JSON names follow the upstream card feed so feed payloads decode directly.
type Card struct {
	CardNo           string          `json:"card_no"`
	Category         string          `json:"card_category"`
	CategoryName     string          `json:"card_category_name"`
	Name             string          `json:"card_name"`
	SubTitle         string          `json:"sub_title"`
	Colors           []string        `json:"card_color_list"`
	QAList           json.RawMessage `json:"card_qa_list,omitempty"`
	Region           string          `json:"region"`
	Tag              string          `json:"tag"` // tag list joined by TagSeparator
	Artist           string          `json:"artist"`
	Effect           string          `json:"card_effect"`
	FlavorText       string          `json:"flavor_text"`
	Energy           int             `json:"energy"`
	ReturnEnergy     int             `json:"return_energy"`
	Power            int             `json:"power"`
	Rarity           string          `json:"rarity"`
	RarityName       string          `json:"rarity_name"`
	ExtendRarity     string          `json:"extend_rarity"`
	ExtendRarityName string          `json:"extend_rarity_name"`
	BackImage        string          `json:"back_image"`
	ChampionTag      string          `json:"champion_tag"`
	Keywords         []string        `json:"keywords"`
	SeriesName       string          `json:"series_name"`
	FrontImageEn     string          `json:"front_image_en"`
	NameEn           string          `json:"card_name_en"`
	EffectEn         string          `json:"effect_en"`
}

// Tags returns the members of the card's tag list.
func (c *Card) Tags() []string {
	return SplitTags(c.Tag)
}

// Normalize trims every string field and rewrites the set-valued fields so
// that each member appears once. The tag string is rebuilt from its trimmed,
// non-empty members, which keeps "separator count + 1" equal to the number of
// distinct tags for any non-empty tag string.
func (c *Card) Normalize() {
	c.CardNo = strings.TrimSpace(c.CardNo)
	c.Category = strings.TrimSpace(c.Category)
	c.CategoryName = strings.TrimSpace(c.CategoryName)
	c.Name = strings.TrimSpace(c.Name)
	c.SubTitle = strings.TrimSpace(c.SubTitle)
	c.Region = strings.TrimSpace(c.Region)
	c.Artist = strings.TrimSpace(c.Artist)
	c.Effect = strings.TrimSpace(c.Effect)
	c.FlavorText = strings.TrimSpace(c.FlavorText)
	c.Rarity = strings.TrimSpace(c.Rarity)
	c.RarityName = strings.TrimSpace(c.RarityName)
	c.ExtendRarity = strings.TrimSpace(c.ExtendRarity)
	c.ExtendRarityName = strings.TrimSpace(c.ExtendRarityName)
	c.BackImage = strings.TrimSpace(c.BackImage)
	c.ChampionTag = strings.TrimSpace(c.ChampionTag)
	c.SeriesName = strings.TrimSpace(c.SeriesName)
	c.FrontImageEn = strings.TrimSpace(c.FrontImageEn)
	c.NameEn = strings.TrimSpace(c.NameEn)
	c.EffectEn = strings.TrimSpace(c.EffectEn)

	c.Tag = strings.Join(UniqueTrimmed(SplitTags(c.Tag)), TagSeparator)
	c.Colors = UniqueTrimmed(c.Colors)
	c.Keywords = UniqueTrimmed(c.Keywords)
}

// SplitTags splits a stored tag string into its trimmed, non-empty members.
func SplitTags(tag string) []string {
	if strings.TrimSpace(tag) == "" {
		return nil
	}
	parts := strings.Split(tag, TagSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UniqueTrimmed trims values, drops empty ones and keeps the first occurrence
// of each. The result is never nil.
func UniqueTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
