// Package validators gates chunk drafts before they are embedded.
// Rejection is an expected outcome, not an error: rejected drafts are
// counted in the ingestion report and never reach the vector store.
package validators

import (
	"strings"
	"unicode"
)

// Scoring bounds. A draft passes when the averaged check score meets
// the configured minimum.
const (
	DefaultMinScore = 0.5

	minTokens   = 50
	maxTokens   = 1000
	idealTokens = 400
)

// stop word sample used by the informativeness check
var commonWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "is": {}, "are": {}, "was": {}, "for": {},
	"on": {}, "with": {}, "at": {}, "by": {}, "it": {}, "this": {},
}

// Verdict is the outcome of validating one draft.
type Verdict struct {
	// Score is the averaged check score in [0, 1].
	Score float64

	// Passed reports whether the draft met the minimum.
	Passed bool

	// Reasons names the checks that scored poorly.
	Reasons []string
}

// Validator scores chunk drafts on length, noise, content, informative
// density and language coherence.
type Validator struct {
	minScore float64
}

// Option configures the validator.
type Option func(*Validator)

// WithMinScore overrides the pass threshold.
func WithMinScore(score float64) Option {
	return func(v *Validator) { v.minScore = score }
}

// NewValidator creates a quality validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{minScore: DefaultMinScore}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Hard gates. A draft failing any of these is rejected regardless of
// its averaged score.
const (
	fragmentTokens = 10
	noiseFloor     = 0.3
	coherenceFloor = 0.2
)

// Validate scores the text. Empty or whitespace-only text always fails.
func (v *Validator) Validate(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Verdict{Score: 0, Passed: false, Reasons: []string{"empty"}}
	}

	checks := []struct {
		name  string
		score float64
		floor float64
	}{
		{"length", lengthScore(trimmed), 0},
		{"noise", noiseScore(trimmed), noiseFloor},
		{"content", contentScore(trimmed), 0},
		{"informativeness", informativenessScore(trimmed), 0},
		{"coherence", coherenceScore(trimmed), coherenceFloor},
	}

	var total float64
	var reasons []string
	gated := approxTokens(trimmed) < fragmentTokens
	if gated {
		reasons = append(reasons, "length")
	}
	for _, c := range checks {
		total += c.score
		if c.score < c.floor {
			gated = true
		}
		if c.score < v.minScore {
			reasons = appendUnique(reasons, c.name)
		}
	}
	score := total / float64(len(checks))

	return Verdict{Score: score, Passed: !gated && score >= v.minScore, Reasons: reasons}
}

func appendUnique(reasons []string, name string) []string {
	for _, r := range reasons {
		if r == name {
			return reasons
		}
	}
	return append(reasons, name)
}

// MinScore returns the configured pass threshold.
func (v *Validator) MinScore() float64 {
	return v.minScore
}

// approxTokens estimates token count at roughly four characters each.
func approxTokens(text string) int {
	return len(text) / 4
}

// lengthScore rewards drafts near the ideal token budget and penalises
// fragments and oversized blocks.
func lengthScore(text string) float64 {
	tokens := approxTokens(text)
	switch {
	case tokens < minTokens:
		return float64(tokens) / float64(minTokens)
	case tokens > maxTokens:
		return 0.3
	case tokens > idealTokens:
		return 1.0 - 0.3*float64(tokens-idealTokens)/float64(maxTokens-idealTokens)
	default:
		return 1.0
	}
}

// noiseScore penalises text dominated by symbols or repeated characters.
func noiseScore(text string) float64 {
	var letters, digits, symbols, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	symbolShare := float64(symbols) / float64(total)
	if symbolShare > 0.5 {
		return 0.1
	}
	return 1.0 - symbolShare
}

// contentScore checks for real words rather than runs of codes or IDs.
func contentScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	var wordy int
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 2 {
			wordy++
		}
	}
	return float64(wordy) / float64(len(words))
}

// informativenessScore penalises text that is mostly stop words.
// Only letter-bearing words count; symbol runs score zero.
func informativenessScore(text string) float64 {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		for _, r := range w {
			if unicode.IsLetter(r) {
				words = append(words, w)
				break
			}
		}
	}
	if len(words) == 0 {
		return 0
	}
	var content int
	for _, w := range words {
		if _, common := commonWords[strings.Trim(w, ".,!?;:")]; !common {
			content++
		}
	}
	share := float64(content) / float64(len(words))
	if share < 0.3 {
		return share
	}
	return min(1.0, share+0.2)
}

// coherenceScore checks the text is not a bag of duplicated lines.
func coherenceScore(text string) float64 {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return 1.0
	}
	seen := make(map[string]struct{}, len(lines))
	var nonEmpty, unique int
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		nonEmpty++
		if _, dup := seen[l]; !dup {
			seen[l] = struct{}{}
			unique++
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	return float64(unique) / float64(nonEmpty)
}
