// Package enrichers attaches the metadata payload that makes chunks
// filterable and auditable once stored.
package enrichers

import "regexp"

// Caps on captured elements kept in metadata. Full counts are still
// reflected by the has_* flags.
const (
	maxURLs   = 5
	maxEmails = 3
	maxPhones = 3
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+91[\s\-]?)?(?:0?\d{2,5}[\s\-]?)?\d{5,10}\b`)
)

// SpecialElements holds contact artefacts found in chunk text.
type SpecialElements struct {
	URLs   []string
	Emails []string
	Phones []string
}

// ExtractElements scans text for URLs, email addresses and Indian-style
// phone numbers. Captured lists are capped; presence flags in metadata
// remain accurate regardless.
func ExtractElements(text string) SpecialElements {
	return SpecialElements{
		URLs:   capped(dedupe(urlPattern.FindAllString(text, -1)), maxURLs),
		Emails: capped(dedupe(emailPattern.FindAllString(text, -1)), maxEmails),
		Phones: capped(dedupe(phoneMatches(text)), maxPhones),
	}
}

// phoneMatches filters the loose phone pattern down to plausible
// numbers: at least 8 digits, not a plain year or pincode-sized run
// embedded in longer digit text.
func phoneMatches(text string) []string {
	var out []string
	for _, m := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 8 && digits <= 13 {
			out = append(out, m)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func capped(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
