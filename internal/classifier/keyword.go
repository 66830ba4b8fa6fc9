package classifier

import (
	"context"
	"strings"
	"unicode"
)

// Word sets per filter level. Light filters nothing; strict is a strict
// superset of moderate.
var slurWords = []string{
	"nigger", "faggot", "retard", "kike", "chink", "spic",
	"wetback", "beaner", "tranny", "dyke",
}

var profanityWords = []string{
	"fuck", "shit", "bitch", "asshole",
	"dick", "pussy", "cunt", "damn", "hell", "ass", "piss",
	"cock", "whore", "slut",
}

var filterSets = map[string]map[string]struct{}{
	"light":    wordSet(),
	"moderate": wordSet(slurWords),
	"strict":   wordSet(slurWords, profanityWords),
}

func wordSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, word := range list {
			set[word] = struct{}{}
		}
	}
	return set
}

// Keyword matches whole tokens against the word set for the filter level.
// Tokens are lowercased and stripped of non-letter characters before the
// membership check, so "fuck!" matches but "fucking" does not match "fuck".
type Keyword struct{}

func NewKeyword() *Keyword {
	return &Keyword{}
}

func (k *Keyword) Evaluate(ctx context.Context, text, filterLevel string) Verdict {
	_ = ctx
	set, ok := filterSets[filterLevel]
	if !ok || len(set) == 0 || text == "" {
		return Verdict{Severity: SeverityNone}
	}

	var matched []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		clean := stripNonLetters(token)
		if clean == "" {
			continue
		}
		if _, hit := set[clean]; hit {
			matched = append(matched, clean)
		}
	}
	if len(matched) == 0 {
		return Verdict{Severity: SeverityNone}
	}
	return Verdict{
		Severity:     SeverityHigh,
		Reason:       "filtered word: " + matched[0],
		MatchedTerms: matched,
	}
}

func stripNonLetters(token string) string {
	var b strings.Builder
	for _, r := range token {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
