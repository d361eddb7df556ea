// Package testutil provides card fixtures and helpers shared by the catalog tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gcbaptista/card-catalog/model"
)

// SampleCards returns a small catalog covering every facet shape: scalar
// facets, delimited tags, color and keyword lists, empty tag strings and
// cards sharing sort values.
func SampleCards() []model.Card {
	return []model.Card{
		{
			CardNo: "OGN-001", Name: "暴走萝莉", NameEn: "Jinx", CategoryName: "英雄", SeriesName: "起源",
			RarityName: "史诗", Region: "祖安", Tag: "迅捷|反应", Colors: []string{"red"},
			Keywords: []string{"迅捷"}, Energy: 3, Power: 4, ReturnEnergy: 1,
			Effect: "Deal 3 damage to a unit.",
		},
		{
			CardNo: "OGN-002", Name: "Annie", NameEn: "Annie", CategoryName: "单位", SeriesName: "起源",
			RarityName: "普通", Region: "诺克萨斯", Tag: "迅捷", Colors: []string{"red", "green"},
			Keywords: []string{}, Energy: 2, Power: 2, ReturnEnergy: 0,
			Effect: "100% chance_to burn",
		},
		{
			CardNo: "OGN-003", Name: "Garen", NameEn: "Garen", CategoryName: "单位", SeriesName: "起源",
			RarityName: "不凡", Region: "德玛西亚", Tag: "反应|守护|迅捷", Colors: []string{"red", "green", "blue"},
			Keywords: []string{"守护", "坚守"}, Energy: 5, Power: 6, ReturnEnergy: 2,
		},
		{
			CardNo: "OGN-004", Name: "Lux", NameEn: "Lux", SubTitle: "Lady of Luminosity", CategoryName: "法术",
			SeriesName: "起源", RarityName: "稀有", Region: "德玛西亚", Tag: "", Colors: []string{"blue"},
			Keywords: []string{"反应"}, Energy: 1, Power: 0, ReturnEnergy: 0,
		},
		{
			CardNo: "OGN-005", Name: "Teemo", NameEn: "Teemo", CategoryName: "单位", SeriesName: "起源",
			RarityName: "普通", Region: "班德尔城", Tag: "守护", Colors: []string{"green", "red"},
			Keywords: []string{"迅捷", "隐匿"}, Energy: 2, Power: 2, ReturnEnergy: 1,
		},
		{
			CardNo: "SFD-001", Name: "Ahri", NameEn: "Ahri", ChampionTag: "Ahri", CategoryName: "英雄",
			SeriesName: "铸魂", RarityName: "异画", Region: "艾欧尼亚", Tag: "迅捷|反应", Colors: []string{"purple"},
			Keywords: []string{"迅捷", "反应"}, Energy: 4, Power: 3, ReturnEnergy: 3,
		},
		{
			CardNo: "SFD-002", Name: "Yasuo", NameEn: "Yasuo", CategoryName: "单位", SeriesName: "铸魂",
			RarityName: "史诗", Region: "艾欧尼亚", Tag: "反应", Colors: []string{"orange", "yellow"},
			Keywords: []string{}, Energy: 4, Power: 5, ReturnEnergy: 0,
		},
		{
			CardNo: "SFD-003", Name: "Rune of Fury", NameEn: "Rune of Fury", CategoryName: "符文", SeriesName: "铸魂",
			RarityName: "普通", Region: "", Tag: "", Colors: []string{"colorless"},
			Energy: 0, Power: 0, ReturnEnergy: 0,
		},
		{
			CardNo: "SFD-004", Name: "Sett", NameEn: "Sett", CategoryName: "单位", SeriesName: "铸魂",
			RarityName: "不凡", Region: "艾欧尼亚", Tag: "守护|迅捷", Colors: []string{"red"},
			Keywords: []string{"坚守"}, Energy: 3, Power: 4, ReturnEnergy: 2,
		},
		{
			CardNo: "SFD-005", Name: "Ezreal", NameEn: "Ezreal", CategoryName: "单位", SeriesName: "铸魂",
			RarityName: "稀有", Region: "皮尔特沃夫", Tag: "迅捷", Colors: []string{"yellow", "blue"},
			Keywords: []string{"迅捷"}, Energy: 3, Power: 3, ReturnEnergy: 1,
		},
	}
}

// GenerateCards returns n synthetic cards with card numbers GEN-0001.. and
// heavily repeated facet and numeric values.
func GenerateCards(n int) []model.Card {
	colors := []string{"red", "green", "blue", "orange", "purple", "yellow", "colorless"}
	tags := []string{"迅捷", "反应", "守护"}
	regions := []string{"祖安", "德玛西亚", "艾欧尼亚"}

	cards := make([]model.Card, 0, n)
	for i := 0; i < n; i++ {
		c := model.Card{
			CardNo:       fmt.Sprintf("GEN-%04d", i+1),
			Name:         fmt.Sprintf("Generated %d", i%10),
			CategoryName: "单位",
			SeriesName:   "起源",
			RarityName:   "普通",
			Region:       regions[i%len(regions)],
			Colors:       []string{colors[i%len(colors)]},
			Keywords:     []string{},
			Energy:       i % 5,
			Power:        i % 4,
			ReturnEnergy: i % 3,
		}
		if i%2 == 0 {
			c.Colors = append(c.Colors, colors[(i+1)%len(colors)])
		}
		switch i % 4 {
		case 0:
			c.Tag = tags[0]
		case 1:
			c.Tag = tags[0] + model.TagSeparator + tags[1]
		case 2:
			c.Tag = tags[1] + model.TagSeparator + tags[2]
		}
		cards = append(cards, c)
	}
	return cards
}

// CardNos returns the card numbers of cards, in order.
func CardNos(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.CardNo
	}
	return out
}

// TempDBPath returns a database path inside a per-test directory that is
// removed when the test ends.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "catalog.db")
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}
