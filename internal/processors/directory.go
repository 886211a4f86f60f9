package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/civictech-labs/corpusctl/internal/core/domain"
)

// Variant labels emitted for directory entries. The comprehensive
// rendering is the primary chunk and carries no label.
const (
	VariantQuestionStyle = "question_style"
	VariantPositionFocus = "position_focused"
	VariantContactFocus  = "contact_focused"
)

// field name candidates for directory entries, english and marathi
var (
	nameFields        = []string{"name", "full_name", "official_name", "नाव"}
	designationFields = []string{"designation", "position", "title", "role", "post", "पद", "हुद्दा"}
	departmentFields  = []string{"department", "office", "ward", "section", "विभाग", "कार्यालय"}
	phoneFields       = []string{"phone", "phone_number", "mobile", "contact", "contact_number", "telephone", "दूरध्वनी", "भ्रमणध्वनी"}
	emailFields       = []string{"email", "email_address", "mail", "ईमेल"}
	addressFields     = []string{"address", "location", "पत्ता"}
)

// Directory renders contact rosters. Every entry produces a
// comprehensive chunk plus search-optimised variants, so queries
// phrased as questions, by position, or by contact detail all land on
// the entry.
type Directory struct{}

// NewDirectory creates the directory processor.
func NewDirectory() *Directory {
	return &Directory{}
}

func (p *Directory) Name() string        { return "directory" }
func (p *Directory) ContentType() string { return "directory" }

// CanProcess accepts records that look like contact entries: a person
// or office name plus at least one of designation or contact detail.
func (p *Directory) CanProcess(_ domain.SourceFile, ex *domain.Extraction) bool {
	if ex == nil || len(ex.Records) == 0 {
		return false
	}
	matches := 0
	probe := ex.Records
	if len(probe) > 10 {
		probe = probe[:10]
	}
	for _, rec := range probe {
		if entry := parseEntry(rec); entry.Name != "" && (entry.Designation != "" || entry.Phone != "" || entry.Email != "") {
			matches++
		}
	}
	return matches*2 > len(probe)
}

// Process emits one comprehensive chunk and three variants per entry.
func (p *Directory) Process(ctx context.Context, src domain.SourceFile, ex *domain.Extraction) ([]domain.ChunkDraft, error) {
	if ex.Empty() {
		return nil, domain.ErrEmptyContent
	}

	var drafts []domain.ChunkDraft
	for _, rec := range ex.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := parseEntry(rec)
		if entry.Name == "" {
			// not a roster row, fall back to the plain rendering
			text := renderRecord(rec, ex.Columns)
			if text == "" {
				continue
			}
			drafts = append(drafts, domain.ChunkDraft{
				Content:     text,
				Language:    language(src, text),
				RecordIndex: rec.Index,
			})
			continue
		}

		comprehensive := entry.comprehensive()
		lang := language(src, comprehensive)
		meta := func() map[string]any {
			return map[string]any{"entry_name": entry.Name}
		}

		drafts = append(drafts,
			domain.ChunkDraft{Content: comprehensive, Language: lang, RecordIndex: rec.Index, Metadata: meta()},
			domain.ChunkDraft{Content: entry.questionStyle(), Language: lang, Variant: VariantQuestionStyle, RecordIndex: rec.Index, Metadata: meta()},
			domain.ChunkDraft{Content: entry.positionFocused(), Language: lang, Variant: VariantPositionFocus, RecordIndex: rec.Index, Metadata: meta()},
		)
		if contact := entry.contactFocused(); contact != "" {
			drafts = append(drafts, domain.ChunkDraft{
				Content: contact, Language: lang, Variant: VariantContactFocus, RecordIndex: rec.Index, Metadata: meta(),
			})
		}
	}
	if len(drafts) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return drafts, nil
}

// directoryEntry is a parsed roster row.
type directoryEntry struct {
	Name        string
	Designation string
	Department  string
	Phone       string
	Email       string
	Address     string
	Rest        string
}

func parseEntry(rec domain.Record) directoryEntry {
	entry := directoryEntry{
		Name:        fieldByNames(rec, nameFields...),
		Designation: fieldByNames(rec, designationFields...),
		Department:  fieldByNames(rec, departmentFields...),
		Phone:       fieldByNames(rec, phoneFields...),
		Email:       fieldByNames(rec, emailFields...),
		Address:     fieldByNames(rec, addressFields...),
	}

	known := map[string]struct{}{}
	for _, group := range [][]string{nameFields, designationFields, departmentFields, phoneFields, emailFields, addressFields} {
		for _, f := range group {
			known[f] = struct{}{}
		}
	}
	var rest []string
	for _, col := range recordColumns(rec, nil) {
		if _, ok := known[strings.ToLower(strings.TrimSpace(col))]; ok {
			continue
		}
		if val := fieldString(rec.Fields[col]); val != "" {
			rest = append(rest, prettyFieldName(col)+": "+val)
		}
	}
	entry.Rest = strings.Join(rest, "\n")
	return entry
}

// comprehensive renders every known field as a full roster entry.
func (e directoryEntry) comprehensive() string {
	var b strings.Builder
	b.WriteString("Name: " + e.Name)
	for _, pair := range []struct{ label, val string }{
		{"Designation", e.Designation},
		{"Department", e.Department},
		{"Phone", e.Phone},
		{"Email", e.Email},
		{"Address", e.Address},
	} {
		if pair.val != "" {
			b.WriteString("\n" + pair.label + ": " + pair.val)
		}
	}
	if e.Rest != "" {
		b.WriteString("\n" + e.Rest)
	}
	return b.String()
}

// questionStyle restates the entry as the questions a citizen would ask.
func (e directoryEntry) questionStyle() string {
	subject := e.Name
	if e.Designation != "" {
		subject = e.Designation
		if e.Department != "" {
			subject += " of " + e.Department
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Who is the %s? %s", subject, e.Name)
	if e.Designation != "" {
		fmt.Fprintf(&b, " holds the position of %s", e.Designation)
	}
	if e.Department != "" {
		fmt.Fprintf(&b, " in %s", e.Department)
	}
	b.WriteString(".")
	if e.Phone != "" || e.Email != "" {
		fmt.Fprintf(&b, " How to contact %s?", e.Name)
		if e.Phone != "" {
			fmt.Fprintf(&b, " Phone: %s.", e.Phone)
		}
		if e.Email != "" {
			fmt.Fprintf(&b, " Email: %s.", e.Email)
		}
	}
	return b.String()
}

// positionFocused leads with the role so designation queries match.
func (e directoryEntry) positionFocused() string {
	if e.Designation == "" {
		return e.Name + " is listed in the directory."
	}
	out := fmt.Sprintf("The %s is %s.", e.Designation, e.Name)
	if e.Department != "" {
		out = fmt.Sprintf("The %s of %s is %s.", e.Designation, e.Department, e.Name)
	}
	if e.Address != "" {
		out += " Office address: " + e.Address + "."
	}
	return out
}

// contactFocused leads with reachability details, empty when the entry
// has none.
func (e directoryEntry) contactFocused() string {
	if e.Phone == "" && e.Email == "" && e.Address == "" {
		return ""
	}
	var parts []string
	if e.Phone != "" {
		parts = append(parts, "phone "+e.Phone)
	}
	if e.Email != "" {
		parts = append(parts, "email "+e.Email)
	}
	if e.Address != "" {
		parts = append(parts, "address "+e.Address)
	}
	out := fmt.Sprintf("Contact details for %s", e.Name)
	if e.Designation != "" {
		out += ", " + e.Designation
	}
	return out + ": " + strings.Join(parts, ", ") + "."
}
