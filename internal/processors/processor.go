// Package processors turns extracted content into chunk drafts. Each
// processor knows one content shape; the routing engine picks which
// one handles a file.
package processors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Processor converts an extraction into chunk drafts.
type Processor interface {
	// Name identifies the processor ("tabular", "directory", ...).
	Name() string

	// ContentType is the metadata bucket for chunks this processor
	// emits ("table", "directory", "faq", "document", "general").
	ContentType() string

	// CanProcess probes whether this processor can handle the
	// extraction. Used by routing when structure and category hints
	// are inconclusive.
	CanProcess(src domain.SourceFile, ex *domain.Extraction) bool

	// Process renders the extraction into ordered chunk drafts.
	Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error)
}

// fieldString renders a record value for inclusion in chunk text.
func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// recordColumns returns the record's field names in a stable order:
// the extraction's column order where known, alphabetical otherwise.
func recordColumns(rec domain.Record, columns []string) []string {
	if len(columns) > 0 {
		var out []string
		for _, c := range columns {
			if _, ok := rec.Fields[c]; ok {
				out = append(out, c)
			}
		}
		var extra []string
		for name := range rec.Fields {
			if !contains(columns, name) {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return append(out, extra...)
	}
	out := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// renderRecord renders a record as "name: value" lines, skipping empty
// values.
func renderRecord(rec domain.Record, columns []string) string {
	var b strings.Builder
	for _, name := range recordColumns(rec, columns) {
		val := fieldString(rec.Fields[name])
		if val == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(prettyFieldName(name))
		b.WriteString(": ")
		b.WriteString(val)
	}
	return b.String()
}

// prettyFieldName turns snake_case column names into readable labels.
func prettyFieldName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// fieldByNames returns the first non-empty value among candidate field
// names, matching case-insensitively.
func fieldByNames(rec domain.Record, names ...string) string {
	lowered := make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, n := range names {
		if v, ok := lowered[n]; ok {
			if s := fieldString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
