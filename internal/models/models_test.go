package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectConfig_UnmarshalCategoriesAlias(t *testing.T) {
	data := `{"title":"algo-101","author":"jdoe","categories":["ComputerScience"],"last_updated":"2024-01-01T00:00:00Z"}`

	var got ProjectConfig
	require.NoError(t, json.Unmarshal([]byte(data), &got))

	want := ProjectConfig{
		Title:       "algo-101",
		Author:      "jdoe",
		Categories:  []Category{CategoryComputerScience},
		LastUpdated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectConfig_UnmarshalMissingFields(t *testing.T) {
	var got ProjectConfig
	err := json.Unmarshal([]byte(`{"title":"x"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")
	assert.Contains(t, err.Error(), "category")
	assert.Contains(t, err.Error(), "last_updated")
}

func TestProjectConfig_UnmarshalEmptyTitle(t *testing.T) {
	var got ProjectConfig
	err := json.Unmarshal([]byte(`{"title":"  ","author":"a","category":[],"last_updated":"2024-01-01T00:00:00Z"}`), &got)
	assert.Error(t, err)
}

func TestProjectConfig_UnmarshalUnknownCategory(t *testing.T) {
	var got ProjectConfig
	err := json.Unmarshal([]byte(`{"title":"t","author":"a","category":["Astrology"],"last_updated":"2024-01-01T00:00:00Z"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Astrology")
}

func TestProjectConfig_MarshalWritesHexColor(t *testing.T) {
	cfg := ProjectConfig{
		Title:       "deck",
		Author:      "jdoe",
		Categories:  []Category{CategoryMathematics, CategoryScience},
		LastUpdated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Color:       ColorNavy,
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"color":"#000080"`)
	assert.Contains(t, string(data), `"category":["Mathematics","Science"]`)

	var back ProjectConfig
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ColorNavy, back.Color)
}

func TestProjectConfig_MarshalOmitsEmptyColor(t *testing.T) {
	data, err := json.Marshal(ProjectConfig{Title: "deck", Categories: []Category{}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "color")
}

func TestProjectConfig_Touch(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := ProjectConfig{LastUpdated: base}

	cfg.Touch(base.Add(-time.Hour))
	assert.Equal(t, base, cfg.LastUpdated, "touch must never move backwards")

	later := base.Add(time.Hour).In(time.FixedZone("EST", -5*3600))
	cfg.Touch(later)
	assert.Equal(t, base.Add(time.Hour), cfg.LastUpdated)
	assert.Equal(t, time.UTC, cfg.LastUpdated.Location())
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "intro-to-algorithms", NormalizeTitle("  intro to   algorithms "))
	assert.Equal(t, "deck", NormalizeTitle("deck"))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("computer science")
	require.NoError(t, err)
	assert.Equal(t, CategoryComputerScience, c)

	_, err = ParseCategory("cooking")
	assert.Error(t, err)
}

func TestCategory_Label(t *testing.T) {
	assert.Equal(t, "Computer Science", CategoryComputerScience.Label())
	assert.Equal(t, "History", CategoryHistory.Label())
}

func TestAllCategoriesValid(t *testing.T) {
	all := AllCategories()
	assert.Len(t, all, 15)
	for _, c := range all {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("Cooking").Valid())
}

func TestColorCatalog(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range AllColors() {
		hex := c.Hex()
		assert.Regexp(t, `^#[0-9A-F]{6}$`, hex)
		assert.False(t, seen[hex], "duplicate hex %s", hex)
		seen[hex] = true
	}
	assert.Len(t, seen, 20)
	assert.Equal(t, "", Color("Chartreuse").Hex())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("gold")
	require.NoError(t, err)
	assert.Equal(t, ColorGold, c)

	c, err = ParseColor("#ffd700")
	require.NoError(t, err)
	assert.Equal(t, ColorGold, c)

	_, err = ParseColor("#123456")
	assert.Error(t, err)
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("html")
	require.NoError(t, err)
	assert.Equal(t, TemplateHTML, tmpl)
	assert.Equal(t, "slides.html", tmpl.SlidesFile())
	assert.Equal(t, "slides.md", TemplateMarkdown.SlidesFile())

	_, err = ParseTemplate("pdf")
	assert.Error(t, err)
}
