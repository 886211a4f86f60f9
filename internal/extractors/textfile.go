package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// prose longer than this reads as an article rather than a fragment
const articleThreshold = 500

// TextFile extracts plaintext and markdown uploads.
type TextFile struct{}

var _ driven.Extractor = (*TextFile)(nil)

// NewTextFile creates the text extractor.
func NewTextFile() *TextFile {
	return &TextFile{}
}

func (e *TextFile) Name() string { return "text" }

// Supports matches .txt and .md extensions, and valid UTF-8 content
// for extensionless files.
func (e *TextFile) Supports(filename string, data []byte) bool {
	if hasExt(filename, ".txt") || hasExt(filename, ".md") || hasExt(filename, ".markdown") {
		return true
	}
	if hasAnyExt(filename) {
		return false
	}
	return utf8.Valid(data) && len(bytes.TrimSpace(data)) > 0
}

// Extract returns the text with markdown syntax stripped to prose.
func (e *TextFile) Extract(_ context.Context, filename string, data []byte) (*domain.Extraction, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}
	if hasExt(filename, ".md") || hasExt(filename, ".markdown") {
		text = stripMarkdown(text)
	}

	structure := domain.StructureUnknown
	if len(text) >= articleThreshold {
		structure = domain.StructureArticle
	}
	return &domain.Extraction{Text: text, Structure: structure}, nil
}

// stripMarkdown removes heading markers, emphasis and link syntax,
// keeping the readable text.
func stripMarkdown(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "#")
		trimmed = strings.TrimSpace(trimmed)
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.ReplaceAll(trimmed, "`", "")
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
