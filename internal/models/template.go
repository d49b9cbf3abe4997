package models

import (
	"fmt"
	"strings"
)

// Template selects the slide source format written by init.
type Template string

const (
	TemplateMarkdown Template = "Markdown"
	TemplateHTML     Template = "HTML"
)

// AllTemplates returns every template in catalog order.
func AllTemplates() []Template {
	return []Template{TemplateMarkdown, TemplateHTML}
}

// SlidesFile returns the slide file name (relative to slides/) for the template.
func (t Template) SlidesFile() string {
	switch t {
	case TemplateMarkdown:
		return "slides.md"
	case TemplateHTML:
		return "slides.html"
	default:
		return ""
	}
}

// ParseTemplate resolves a template name case-insensitively.
func ParseTemplate(s string) (Template, error) {
	for _, t := range AllTemplates() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", s)
}
