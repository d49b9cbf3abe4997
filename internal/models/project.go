package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigFileName is the project descriptor stored at the root of every project.
const ConfigFileName = "oseda-config.json"

// ProjectConfig is the on-disk project descriptor.
type ProjectConfig struct {
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Categories  []Category `json:"category"`
	LastUpdated time.Time  `json:"last_updated"`
	Color       Color      `json:"color,omitempty"`
}

// NormalizeTitle trims a title and replaces inner whitespace with hyphens.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), "-")
}

// UnmarshalJSON requires title, author, categories and last_updated. Categories may be
// given under either "category" or "categories".
func (p *ProjectConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       *string     `json:"title"`
		Author      *string     `json:"author"`
		Category    *[]Category `json:"category"`
		Categories  *[]Category `json:"categories"`
		LastUpdated *time.Time  `json:"last_updated"`
		Color       Color       `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.Title == nil {
		missing = append(missing, "title")
	}
	if raw.Author == nil {
		missing = append(missing, "author")
	}
	if raw.Category == nil && raw.Categories == nil {
		missing = append(missing, "category")
	}
	if raw.LastUpdated == nil {
		missing = append(missing, "last_updated")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(*raw.Title) == "" {
		return errors.New("title must not be empty")
	}

	cats := raw.Category
	if cats == nil {
		cats = raw.Categories
	}

	*p = ProjectConfig{
		Title:       *raw.Title,
		Author:      *raw.Author,
		Categories:  *cats,
		LastUpdated: raw.LastUpdated.UTC(),
		Color:       raw.Color,
	}
	return nil
}

// Touch sets LastUpdated to now (in UTC) unless that would move it backwards.
func (p *ProjectConfig) Touch(now time.Time) {
	now = now.UTC()
	if now.After(p.LastUpdated) {
		p.LastUpdated = now
	}
}
