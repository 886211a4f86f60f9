package processors

import "strings"

// Token budgets per named chunk size. Token counts are estimated at
// roughly four characters per token.
const (
	SmallChunkTokens  = 256
	MediumChunkTokens = 512
	LargeChunkTokens  = 768

	DefaultOverlapTokens = 50

	// MinSplitTokens is the smallest standalone piece; shorter tails
	// are merged into the previous piece.
	MinSplitTokens = 50
)

// ChunkTokens resolves a named size ("small", "medium", "large") to its
// token budget. Unknown names get the medium budget.
func ChunkTokens(name string) int {
	switch name {
	case "small":
		return SmallChunkTokens
	case "large":
		return LargeChunkTokens
	default:
		return MediumChunkTokens
	}
}

// Splitter breaks free text into pieces within a token budget. It
// splits on paragraph boundaries first and falls back to sentence
// boundaries for oversized paragraphs, carrying a sentence overlap
// between consecutive pieces.
type Splitter struct {
	budget  int
	overlap int
}

// SplitterOption configures the splitter.
type SplitterOption func(*Splitter)

// WithBudget sets the token budget per piece.
func WithBudget(tokens int) SplitterOption {
	return func(s *Splitter) {
		if tokens > 0 {
			s.budget = tokens
		}
	}
}

// WithOverlap sets the overlap between pieces in tokens.
func WithOverlap(tokens int) SplitterOption {
	return func(s *Splitter) {
		if tokens >= 0 {
			s.overlap = tokens
		}
	}
}

// NewSplitter creates a splitter with the given options.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		budget:  MediumChunkTokens,
		overlap: DefaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.budget {
		s.overlap = s.budget / 4
	}
	return s
}

// Split breaks text into ordered pieces within the budget. Empty input
// yields nil.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if approxTokens(text) <= s.budget {
		return []string{text}
	}

	// Flatten into units: paragraphs, with oversized paragraphs broken
	// into sentences.
	var units []string
	for _, para := range splitParagraphs(text) {
		if approxTokens(para) > s.budget {
			units = append(units, splitSentences(para)...)
		} else {
			units = append(units, para)
		}
	}

	var pieces []string
	var current []string
	var carry string
	tokens := 0

	for _, unit := range units {
		ut := approxTokens(unit)
		if tokens > 0 && tokens+ut > s.budget {
			piece := strings.Join(current, "\n\n")
			pieces = append(pieces, piece)
			carry = overlapTail(piece, s.overlap)
			current = current[:0]
			tokens = 0
			if carry != "" {
				current = append(current, carry)
				tokens = approxTokens(carry)
			}
		}
		current = append(current, unit)
		tokens += ut
	}

	onlyCarry := len(current) == 1 && current[0] == carry
	if len(current) > 0 && !onlyCarry {
		tail := strings.Join(current, "\n\n")
		if len(pieces) > 0 && approxTokens(tail) < MinSplitTokens {
			// merge a short tail into the previous piece, without
			// repeating the overlap seed
			tail = strings.TrimSpace(strings.TrimPrefix(tail, carry))
			if tail != "" {
				pieces[len(pieces)-1] += "\n\n" + tail
			}
		} else {
			pieces = append(pieces, tail)
		}
	}

	return pieces
}

// approxTokens estimates token count at roughly four characters each.
func approxTokens(text string) int {
	return len(text) / 4
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences breaks a paragraph on sentence-ending punctuation,
// covering both Latin terminators and the Devanagari danda.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '।' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// overlapTail returns the last sentences of a piece up to the overlap
// token budget, used to seed the next piece.
func overlapTail(piece string, overlap int) string {
	if overlap == 0 {
		return ""
	}
	sentences := splitSentences(piece)
	var tail []string
	tokens := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		t := approxTokens(sentences[i])
		if tokens+t > overlap && len(tail) > 0 {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		tokens += t
		if tokens >= overlap {
			break
		}
	}
	return strings.Join(tail, " ")
}
