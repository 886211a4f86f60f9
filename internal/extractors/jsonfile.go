package extractors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
	driven "github.com/civictech-labs/corpusctl/internal/core/ports/driven"
)

// envelope keys that wrap the payload array in API dumps
var envelopeKeys = []string{"data", "results", "items", "records", "rows", "entries"}

// JSONFile extracts JSON uploads: arrays of objects, single objects,
// and API-response envelopes.
type JSONFile struct{}

var _ driven.Extractor = (*JSONFile)(nil)

// NewJSONFile creates the JSON extractor.
func NewJSONFile() *JSONFile {
	return &JSONFile{}
}

func (e *JSONFile) Name() string { return "json" }

// Supports matches .json extensions, or JSON-looking content for
// extensionless files.
func (e *JSONFile) Supports(filename string, data []byte) bool {
	if hasExt(filename, ".json") {
		return true
	}
	if hasAnyExt(filename) {
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// Extract parses the JSON and normalises it into records.
func (e *JSONFile) Extract(_ context.Context, filename string, data []byte) (*domain.Extraction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse json %s: %w", filename, err)
	}

	switch v := parsed.(type) {
	case []any:
		return arrayExtraction(v, domain.StructureArrayOfObjects)
	case map[string]any:
		if payload, ok := envelopePayload(v); ok {
			return arrayExtraction(payload, domain.StructureAPIResponse)
		}
		rec, ok := objectRecord(v, 0)
		if !ok {
			return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
		}
		return &domain.Extraction{
			Records:   []domain.Record{rec},
			Structure: refineTableStructure(recordKeys(rec), domain.StructureSingleObject),
			Columns:   recordKeys(rec),
		}, nil
	default:
		// scalar or null payloads carry nothing worth indexing
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyContent)
	}
}

// envelopePayload unwraps {"data": [...]} style API responses.
func envelopePayload(obj map[string]any) ([]any, bool) {
	for _, key := range envelopeKeys {
		if arr, ok := obj[key].([]any); ok && len(arr) > 0 {
			return arr, true
		}
	}
	return nil, false
}

func arrayExtraction(items []any, structure domain.StructureType) (*domain.Extraction, error) {
	var records []domain.Record
	var textParts []string
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			if rec, ok := objectRecord(v, len(records)); ok {
				records = append(records, rec)
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				textParts = append(textParts, s)
			}
		}
	}

	ex := &domain.Extraction{
		Records:   records,
		Text:      strings.Join(textParts, "\n\n"),
		Structure: structure,
	}
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}
	if len(records) > 0 {
		ex.Columns = unionKeys(records)
		ex.Structure = refineTableStructure(ex.Columns, structure)
	}
	if len(records) > 0 && len(textParts) > 0 {
		ex.Structure = domain.StructureMixedContent
	}
	return ex, nil
}

// objectRecord flattens a JSON object one level: nested objects and
// arrays are rendered as compact JSON strings.
func objectRecord(obj map[string]any, index int) (domain.Record, bool) {
	fields := make(map[string]any, len(obj))
	empty := true
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			continue
		case string, float64, bool:
			fields[k] = t
		default:
			compact, err := json.Marshal(t)
			if err != nil {
				continue
			}
			fields[k] = string(compact)
		}
		empty = false
	}
	if empty {
		return domain.Record{}, false
	}
	return domain.Record{Index: index, Fields: fields}, true
}

func recordKeys(rec domain.Record) []string {
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unionKeys(records []domain.Record) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, rec := range records {
		for _, k := range recordKeys(rec) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
