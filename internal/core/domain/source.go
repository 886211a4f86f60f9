package domain

import "time"

// StructureType labels the shape of extracted content.
// The routing engine maps structures to processors.
type StructureType string

const (
	// StructureArrayOfObjects is a JSON array of homogeneous objects.
	StructureArrayOfObjects StructureType = "array_of_objects"

	// StructureSingleObject is a single JSON object.
	StructureSingleObject StructureType = "single_object"

	// StructureAPIResponse is a JSON envelope wrapping a data array.
	StructureAPIResponse StructureType = "api_response"

	// StructureStandardTable is row/column data from CSV or Excel.
	StructureStandardTable StructureType = "standard_table"

	// StructureFAQTable is a table with question/answer columns.
	StructureFAQTable StructureType = "faq_table"

	// StructureDirectoryFormat is tabular contact/roster data.
	StructureDirectoryFormat StructureType = "directory_format"

	// StructureDirectoryList is a list-shaped roster.
	StructureDirectoryList StructureType = "directory_list"

	// StructureWebScrapingOutput is scraped page content with URL metadata.
	StructureWebScrapingOutput StructureType = "web_scraping_output"

	// StructureArticle is long-form prose.
	StructureArticle StructureType = "article"

	// StructureWebContent is generic page content.
	StructureWebContent StructureType = "web_content"

	// StructureMixedContent mixes shapes within one file.
	StructureMixedContent StructureType = "mixed_content"

	// StructureUnknown is content the extractor could not classify.
	StructureUnknown StructureType = "unknown"
)

// SourceFile describes an uploaded file before extraction.
type SourceFile struct {
	// Filename is the original upload name, used in the source identity.
	Filename string

	// Hash is the hex SHA-256 of the raw file bytes.
	Hash string

	// Category is the admin-assigned content category.
	Category string

	// Language is the declared language code, empty when undeclared.
	Language string

	// Structure is the admin-declared structure. When set it overrides
	// routing detection.
	Structure StructureType

	// Importance weights chunks from this source, 0 means default.
	Importance float64

	// UploadedAt is when the file was received.
	UploadedAt time.Time
}

// Record is one normalised unit produced by extraction, typically a
// table row or an array element.
type Record struct {
	// Index is the ordinal position within the source file.
	Index int

	// Fields holds the record's named values.
	Fields map[string]any
}

// Extraction is the output of a content extractor.
type Extraction struct {
	// Records are the normalised records, in source order. Empty for
	// unstructured inputs.
	Records []Record

	// Text is the raw text for unstructured inputs (PDF, plaintext).
	Text string

	// Structure is the detected shape of the content.
	Structure StructureType

	// Columns preserves table column order where the input had one.
	Columns []string

	// Metadata carries extractor hints (sheet names, source URLs).
	Metadata map[string]any
}

// Empty reports whether extraction produced no usable content.
func (e *Extraction) Empty() bool {
	if e == nil {
		return true
	}
	return len(e.Records) == 0 && len(e.Text) == 0
}
