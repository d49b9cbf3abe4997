package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is a subject area a project can be filed under. The set is closed.
type Category string

const (
	CategoryAerospace       Category = "Aerospace"
	CategoryBusiness        Category = "Business"
	CategoryComputerScience Category = "ComputerScience"
	CategoryEconomics       Category = "Economics"
	CategoryEducation       Category = "Education"
	CategoryEngineering     Category = "Engineering"
	CategoryGeography       Category = "Geography"
	CategoryHealthMedicine  Category = "HealthMedicine"
	CategoryHistory         Category = "History"
	CategoryLanguageArts    Category = "LanguageArts"
	CategoryLiberalArts     Category = "LiberalArts"
	CategoryMathematics     Category = "Mathematics"
	CategoryPolitics        Category = "Politics"
	CategoryPsychology      Category = "Psychology"
	CategoryScience         Category = "Science"
)

// AllCategories returns every category in catalog order.
func AllCategories() []Category {
	return []Category{
		CategoryAerospace,
		CategoryBusiness,
		CategoryComputerScience,
		CategoryEconomics,
		CategoryEducation,
		CategoryEngineering,
		CategoryGeography,
		CategoryHealthMedicine,
		CategoryHistory,
		CategoryLanguageArts,
		CategoryLiberalArts,
		CategoryMathematics,
		CategoryPolitics,
		CategoryPsychology,
		CategoryScience,
	}
}

// Valid reports whether c is a member of the catalog.
func (c Category) Valid() bool {
	switch c {
	case CategoryAerospace, CategoryBusiness, CategoryComputerScience, CategoryEconomics,
		CategoryEducation, CategoryEngineering, CategoryGeography, CategoryHealthMedicine,
		CategoryHistory, CategoryLanguageArts, CategoryLiberalArts, CategoryMathematics,
		CategoryPolitics, CategoryPsychology, CategoryScience:
		return true
	default:
		return false
	}
}

// Label returns a human-readable name, e.g. "Computer Science".
func (c Category) Label() string {
	var b strings.Builder
	for i, r := range string(c) {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	needle := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for _, c := range AllCategories() {
		if strings.EqualFold(string(c), needle) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %q", string(c))
	}
	return json.Marshal(string(c))
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	if !Category(s).Valid() {
		return fmt.Errorf("unknown category %q", s)
	}
	*c = Category(s)
	return nil
}
