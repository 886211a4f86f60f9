package extractors

import (
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// column name fragments that mark a table as an FAQ or a directory
var (
	questionColumns  = []string{"question", "प्रश्न", "faq", "query"}
	answerColumns    = []string{"answer", "उत्तर", "response", "reply"}
	directoryColumns = []string{"name", "नाव", "designation", "पद", "phone", "दूरध्वनी", "email", "contact"}
	pageColumns      = []string{"url", "page_url", "source_url"}
	contentColumns   = []string{"content", "body", "text", "article"}
)

// refineTableStructure narrows a generic table label using the column
// names, so routing sees faq_table or directory_format instead of
// standard_table when the columns give it away.
func refineTableStructure(columns []string, fallback domain.StructureType) domain.StructureType {
	var hasQuestion, hasAnswer, hasPage, hasContent bool
	directoryHits := 0
	for _, col := range columns {
		c := strings.ToLower(strings.TrimSpace(col))
		switch {
		case matchesAny(c, questionColumns):
			hasQuestion = true
		case matchesAny(c, answerColumns):
			hasAnswer = true
		}
		if matchesAny(c, directoryColumns) {
			directoryHits++
		}
		if matchesAny(c, pageColumns) {
			hasPage = true
		}
		if matchesAny(c, contentColumns) {
			hasContent = true
		}
	}
	switch {
	case hasQuestion && hasAnswer:
		return domain.StructureFAQTable
	case directoryHits >= 2:
		return domain.StructureDirectoryFormat
	case hasPage && hasContent:
		return domain.StructureWebScrapingOutput
	default:
		return fallback
	}
}

func matchesAny(column string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(column, f) {
			return true
		}
	}
	return false
}
