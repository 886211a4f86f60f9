package processors

import (
	"context"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/analyzers"
	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Variant labels for FAQ language renderings. The combined bilingual
// chunk is the primary and carries no label.
const (
	VariantEnglish = "en"
	VariantMarathi = "mr"
)

// column name candidates for FAQ tables
var (
	questionENFields = []string{"question", "question_en", "question_english", "faq", "query"}
	answerENFields   = []string{"answer", "answer_en", "answer_english", "response", "reply"}
	questionMRFields = []string{"question_mr", "question_marathi", "प्रश्न", "प्रश्न_mr"}
	answerMRFields   = []string{"answer_mr", "answer_marathi", "उत्तर", "उत्तर_mr"}
)

// FAQTable renders question/answer tables. Bilingual rows emit three
// chunks: English, Marathi and combined, so retrieval works in either
// language.
type FAQTable struct{}

// NewFAQTable creates the FAQ table processor.
func NewFAQTable() *FAQTable {
	return &FAQTable{}
}

func (p *FAQTable) Name() string        { return "faq_table" }
func (p *FAQTable) ContentType() string { return "faq" }

// CanProcess accepts records with a recognisable question column and a
// matching answer column.
func (p *FAQTable) CanProcess(_ domain.SourceFile, ex *domain.Extraction) bool {
	if ex == nil || len(ex.Records) == 0 {
		return false
	}
	matches := 0
	probe := ex.Records
	if len(probe) > 10 {
		probe = probe[:10]
	}
	for _, rec := range probe {
		qa := parseQA(rec)
		if (qa.QuestionEN != "" && qa.AnswerEN != "") || (qa.QuestionMR != "" && qa.AnswerMR != "") {
			matches++
		}
	}
	return matches*2 > len(probe)
}

// Process emits per-row FAQ chunks. Monolingual rows produce a single
// chunk in their language; bilingual rows produce English, Marathi and
// combined chunks.
func (p *FAQTable) Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error) {
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}

	var drafts []domain.ChunkDraft
	for _, rec := range ex.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		qa := parseQA(rec)
		hasEN := qa.QuestionEN != "" && qa.AnswerEN != ""
		hasMR := qa.QuestionMR != "" && qa.AnswerMR != ""

		switch {
		case hasEN && hasMR:
			drafts = append(drafts,
				domain.ChunkDraft{
					Content:     qa.combined(),
					Language:    analyzers.LanguageBilingual,
					RecordIndex: rec.Index,
				},
				domain.ChunkDraft{
					Content:     qa.english(),
					Language:    analyzers.LanguageEnglish,
					Variant:     VariantEnglish,
					RecordIndex: rec.Index,
				},
				domain.ChunkDraft{
					Content:     qa.marathi(),
					Language:    analyzers.LanguageMarathi,
					Variant:     VariantMarathi,
					RecordIndex: rec.Index,
				},
			)
		case hasEN:
			drafts = append(drafts, domain.ChunkDraft{
				Content:     qa.english(),
				Language:    analyzers.LanguageEnglish,
				RecordIndex: rec.Index,
			})
		case hasMR:
			drafts = append(drafts, domain.ChunkDraft{
				Content:     qa.marathi(),
				Language:    analyzers.LanguageMarathi,
				RecordIndex: rec.Index,
			})
		}
	}
	if len(drafts) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return drafts, nil
}

// qaPair holds the question/answer columns of one FAQ row.
type qaPair struct {
	QuestionEN string
	AnswerEN   string
	QuestionMR string
	AnswerMR   string
}

func parseQA(rec domain.Record) qaPair {
	qa := qaPair{
		QuestionEN: fieldByNames(rec, questionENFields...),
		AnswerEN:   fieldByNames(rec, answerENFields...),
		QuestionMR: fieldByNames(rec, questionMRFields...),
		AnswerMR:   fieldByNames(rec, answerMRFields...),
	}
	// a two-column sheet with Marathi text in generic columns is a
	// Marathi FAQ, not an English one
	if qa.QuestionMR == "" && analyzers.DetectLanguage(qa.QuestionEN) == analyzers.LanguageMarathi {
		qa.QuestionMR, qa.AnswerMR = qa.QuestionEN, qa.AnswerEN
		qa.QuestionEN, qa.AnswerEN = "", ""
	}
	return qa
}

func (qa qaPair) english() string {
	return "Question: " + qa.QuestionEN + "\nAnswer: " + qa.AnswerEN
}

func (qa qaPair) marathi() string {
	return "प्रश्न: " + qa.QuestionMR + "\nउत्तर: " + qa.AnswerMR
}

func (qa qaPair) combined() string {
	return strings.Join([]string{qa.english(), qa.marathi()}, "\n\n")
}
