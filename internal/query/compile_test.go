package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/card-catalog/internal/testutil"
	"github.com/gcbaptista/card-catalog/model"
)

func normalizedSample() []model.Card {
	return newSliceStore(testutil.SampleCards()).cards
}

func TestCompileSelection_ColorExactSet(t *testing.T) {
	cards := normalizedSample()
	p := CompileSelection(Selection{Facet: FacetColor, Values: []string{"red", "green"}, Mode: ExactSetOf})

	// OGN-003 holds {red, green, blue} and must not match
	assert.Equal(t, []string{"OGN-002", "OGN-005"}, matchingNos(cards, p))
}

func TestCompileSelection_TagAllOfSingle(t *testing.T) {
	card := model.Card{CardNo: "X-1", Tag: "迅捷|反应"}
	p := CompileSelection(Selection{Facet: FacetTag, Values: []string{"迅捷"}, Mode: AllOf})
	assert.True(t, p.Match(&card))
}

func TestCompileSelection_TagModes(t *testing.T) {
	cards := normalizedSample()
	selection := []string{"迅捷", "反应"}

	tests := []struct {
		mode Mode
		want []string
	}{
		{AnyOf, []string{"OGN-001", "OGN-002", "OGN-003", "SFD-001", "SFD-002", "SFD-004", "SFD-005"}},
		{AllOf, []string{"OGN-001", "OGN-003", "SFD-001"}},
		{NoneOf, []string{"OGN-004", "OGN-005", "SFD-003"}},
		{ExactSetOf, []string{"OGN-001", "SFD-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p := CompileSelection(Selection{Facet: FacetTag, Values: selection, Mode: tt.mode})
			assert.Equal(t, tt.want, matchingNos(cards, p))
		})
	}
}

func TestCompileSelection_KeywordModes(t *testing.T) {
	cards := normalizedSample()
	selection := []string{"迅捷", "隐匿"}

	tests := []struct {
		mode Mode
		want []string
	}{
		{AnyOf, []string{"OGN-001", "OGN-005", "SFD-001", "SFD-005"}},
		{AllOf, []string{"OGN-005"}},
		{NoneOf, []string{"OGN-002", "OGN-003", "OGN-004", "SFD-002", "SFD-003", "SFD-004"}},
		{ExactSetOf, []string{"OGN-005"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p := CompileSelection(Selection{Facet: FacetKeyword, Values: selection, Mode: tt.mode})
			assert.Equal(t, tt.want, matchingNos(cards, p))
		})
	}
}

func TestCompileSelection_ScalarModesCollapse(t *testing.T) {
	cards := normalizedSample()
	selection := []string{"德玛西亚", "祖安"}

	anyOf := matchingNos(cards, CompileSelection(Selection{Facet: FacetRegion, Values: selection, Mode: AnyOf}))
	assert.Equal(t, []string{"OGN-001", "OGN-003", "OGN-004"}, anyOf)

	for _, mode := range []Mode{AllOf, ExactSetOf} {
		got := matchingNos(cards, CompileSelection(Selection{Facet: FacetRegion, Values: selection, Mode: mode}))
		assert.Equal(t, anyOf, got, "mode %s", mode)
	}

	// a card without a region is outside any non-empty selection
	noneOf := matchingNos(cards, CompileSelection(Selection{Facet: FacetRegion, Values: selection, Mode: NoneOf}))
	assert.Contains(t, noneOf, "SFD-003")
	assert.Len(t, noneOf, len(cards)-len(anyOf))
}

func TestCompileSelection_EmptySelectionIsTrue(t *testing.T) {
	for _, facet := range Facets {
		for _, mode := range []Mode{AnyOf, AllOf, NoneOf, ExactSetOf} {
			p := CompileSelection(Selection{Facet: facet, Values: []string{" ", ""}, Mode: mode})
			assert.True(t, IsTrue(p), "facet %s mode %s", facet.Name, mode)
		}
	}
}

func TestCompileSelection_ExactSetOfEmptyMatchesEmptyTag(t *testing.T) {
	// empty selections never filter, so a card without tags is kept as well
	empty := model.Card{CardNo: "X-1", Tag: ""}
	tagged := model.Card{CardNo: "X-2", Tag: "迅捷"}

	p := CompileSelection(Selection{Facet: FacetTag, Values: nil, Mode: ExactSetOf})
	assert.True(t, p.Match(&empty))
	assert.True(t, p.Match(&tagged))

	sql, args := Render(p)
	assert.Equal(t, "", sql)
	assert.Nil(t, args)
}

func TestModeContainment(t *testing.T) {
	cards := append(normalizedSample(), newSliceStore(testutil.GenerateCards(60)).cards...)

	selections := map[string][][]string{
		"tag":     {{"迅捷"}, {"迅捷", "反应"}, {"反应", "守护"}, {"迅捷", "反应", "守护"}},
		"color":   {{"red"}, {"red", "green"}, {"blue", "yellow"}, {"purple"}},
		"keyword": {{"迅捷"}, {"迅捷", "隐匿"}, {"坚守"}},
	}
	facets := map[string]Facet{"tag": FacetTag, "color": FacetColor, "keyword": FacetKeyword}

	for name, sets := range selections {
		for _, values := range sets {
			facet := facets[name]
			anyOf := matchingNos(cards, CompileSelection(Selection{Facet: facet, Values: values, Mode: AnyOf}))
			allOf := matchingNos(cards, CompileSelection(Selection{Facet: facet, Values: values, Mode: AllOf}))
			exact := matchingNos(cards, CompileSelection(Selection{Facet: facet, Values: values, Mode: ExactSetOf}))
			noneOf := matchingNos(cards, CompileSelection(Selection{Facet: facet, Values: values, Mode: NoneOf}))

			assert.True(t, isSubset(allOf, anyOf), "%s %v: allOf within anyOf", name, values)
			assert.True(t, isSubset(exact, allOf), "%s %v: exactSetOf within allOf", name, values)

			// anyOf and noneOf partition the catalog
			assert.Equal(t, len(cards), len(anyOf)+len(noneOf), "%s %v: partition size", name, values)
			for _, no := range noneOf {
				assert.NotContains(t, anyOf, no, "%s %v: overlap", name, values)
			}
		}
	}
}

func TestCompileRange(t *testing.T) {
	cards := normalizedSample()

	t.Run("inverted range is unfiltered", func(t *testing.T) {
		p := CompileRange(Range{Field: RangePower, Low: testutil.IntPtr(5), High: testutil.IntPtr(3)})
		assert.True(t, IsTrue(p))
		assert.Len(t, matchingNos(cards, p), len(cards))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		p := CompileRange(Range{Field: RangePower, Low: testutil.IntPtr(4), High: testutil.IntPtr(5)})
		assert.Equal(t, []string{"OGN-001", "SFD-002", "SFD-004"}, matchingNos(cards, p))
	})

	t.Run("open high bound", func(t *testing.T) {
		p := CompileRange(Range{Field: RangeEnergy, Low: testutil.IntPtr(4)})
		assert.Equal(t, []string{"OGN-003", "SFD-001", "SFD-002"}, matchingNos(cards, p))
	})

	t.Run("open low bound", func(t *testing.T) {
		p := CompileRange(Range{Field: RangeReturnEnergy, High: testutil.IntPtr(0)})
		assert.Equal(t, []string{"OGN-002", "OGN-004", "SFD-002", "SFD-003"}, matchingNos(cards, p))
	})

	t.Run("no bounds", func(t *testing.T) {
		assert.True(t, IsTrue(CompileRange(Range{Field: RangeEnergy})))
	})
}

func TestCompileText(t *testing.T) {
	cards := normalizedSample()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"name substring any case", "GAR", []string{"OGN-003"}},
		{"card number", "sfd-00", []string{"SFD-001", "SFD-002", "SFD-003", "SFD-004", "SFD-005"}},
		{"sub title", "luminosity", []string{"OGN-004"}},
		{"effect text", "damage", []string{"OGN-001"}},
		{"english name", "jinx", []string{"OGN-001"}},
		{"chinese name", "萝莉", []string{"OGN-001"}},
		{"percent is literal", "100%", []string{"OGN-002"}},
		{"underscore is literal", "e_t", []string{"OGN-002"}},
		{"wildcard does not expand", "%", []string{"OGN-002"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchingNos(cards, CompileText(tt.term)))
		})
	}

	assert.True(t, IsTrue(CompileText("  ")))
}

func TestCompileText_FoldsASCIIOnly(t *testing.T) {
	cards := []model.Card{{CardNo: "X-1", Name: "Élise"}}

	assert.Equal(t, []string{"X-1"}, matchingNos(cards, CompileText("LISE")))
	assert.Equal(t, []string{"X-1"}, matchingNos(cards, CompileText("Él")))
	assert.Nil(t, matchingNos(cards, CompileText("él")))
}

func TestCompile_AndAcrossFacets(t *testing.T) {
	cards := normalizedSample()
	spec := FilterSpec{
		Query: "e",
		Selections: []Selection{
			{Facet: FacetSeries, Values: []string{"铸魂"}, Mode: AnyOf},
			{Facet: FacetColor, Values: []string{"yellow"}, Mode: AnyOf},
		},
		Ranges: []Range{{Field: RangeEnergy, Low: testutil.IntPtr(3)}},
	}

	// SFD-002 Yasuo has no 'e' in any text column
	assert.Equal(t, []string{"SFD-005"}, matchingNos(cards, Compile(spec)))
}

func TestCompile_NoFiltersIsTrue(t *testing.T) {
	assert.True(t, IsTrue(Compile(FilterSpec{})))
}

func TestRender(t *testing.T) {
	t.Run("scalar membership", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetSeries, Values: []string{"起源"}, Mode: AllOf}))
		assert.Equal(t, "COALESCE(series_name, '') IN (?)", sql)
		assert.Equal(t, []any{"起源"}, args)
	})

	t.Run("scalar exclusion", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetRegion, Values: []string{"a", "b"}, Mode: NoneOf}))
		assert.Equal(t, "COALESCE(region, '') NOT IN (?, ?)", sql)
		assert.Equal(t, []any{"a", "b"}, args)
	})

	t.Run("tag exact set", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetTag, Values: []string{"迅捷", "反应"}, Mode: ExactSetOf}))
		member := "instr(('|' || COALESCE(tag, '') || '|'), ?) > 0"
		want := "((" + member + " AND " + member + ") AND " +
			"(CASE WHEN COALESCE(tag, '') = '' THEN 0 ELSE LENGTH(tag) - LENGTH(REPLACE(tag, '|', '')) + 1 END) = ?)"
		assert.Equal(t, want, sql)
		assert.Equal(t, []any{"|迅捷|", "|反应|", 2}, args)
	})

	t.Run("tag containing separator never matches", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetTag, Values: []string{"a|b"}, Mode: AnyOf}))
		assert.Equal(t, "(0)", sql)
		assert.Empty(t, args)
	})

	t.Run("list intersects", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetColor, Values: []string{"red", "green"}, Mode: AnyOf}))
		assert.Equal(t, "EXISTS (SELECT 1 FROM json_each(CASE WHEN json_valid(card_color_list) THEN (CASE json_type(card_color_list) WHEN 'array' THEN card_color_list ELSE '[]' END) ELSE '[]' END) WHERE value IN (?, ?))", sql)
		assert.Equal(t, []any{"red", "green"}, args)
	})

	t.Run("list exact set", func(t *testing.T) {
		sql, args := Render(CompileSelection(Selection{Facet: FacetKeyword, Values: []string{"迅捷"}, Mode: ExactSetOf}))
		assert.Contains(t, sql, "SELECT COUNT(DISTINCT value)")
		assert.Contains(t, sql, "AND NOT EXISTS")
		assert.Contains(t, sql, "WHERE value NOT IN (?)")
		assert.Equal(t, []any{"迅捷", 1, "迅捷"}, args)
	})

	t.Run("range", func(t *testing.T) {
		sql, args := Render(CompileRange(Range{Field: RangePower, Low: testutil.IntPtr(1), High: testutil.IntPtr(3)}))
		assert.Equal(t, "power BETWEEN ? AND ?", sql)
		assert.Equal(t, []any{1, 3}, args)

		sql, args = Render(CompileRange(Range{Field: RangeReturnEnergy, High: testutil.IntPtr(2)}))
		assert.Equal(t, "return_energy <= ?", sql)
		assert.Equal(t, []any{2}, args)
	})

	t.Run("text escapes wildcards", func(t *testing.T) {
		sql, args := Render(CompileText("50%_Off"))
		require.Len(t, args, len(textFields))
		for _, a := range args {
			assert.Equal(t, `%50\%\_off%`, a)
		}
		assert.Contains(t, sql, `COALESCE(card_name, '') LIKE ? ESCAPE '\'`)
		assert.Contains(t, sql, " OR ")
	})

	t.Run("conjunction", func(t *testing.T) {
		p := And(
			CompileSelection(Selection{Facet: FacetRarity, Values: []string{"史诗"}}),
			CompileRange(Range{Field: RangeEnergy, Low: testutil.IntPtr(2)}),
			True,
		)
		sql, args := Render(p)
		assert.Equal(t, "(COALESCE(rarity_name, '') IN (?) AND energy >= ?)", sql)
		assert.Equal(t, []any{"史诗", 2}, args)
	})

	t.Run("always true renders empty", func(t *testing.T) {
		sql, args := Render(True)
		assert.Equal(t, "", sql)
		assert.Nil(t, args)
	})
}
