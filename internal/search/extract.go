package search

import (
	"net/url"
	"regexp"
	"strings"
)

// Answer is the distilled reply built from the best search result.
type Answer struct {
	Text       string
	Additional string
	Source     string
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	monthPrefix   = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	numberedItem  = regexp.MustCompile(`^\d+\.\s`)
)

var instructionMarkers = []string{"step", "first", "then", "next", "finally"}

var gameQueryMarkers = []string{"minecraft", "how to", "tame", "craft", "build"}

// Extract picks a direct answer from the top result's snippet. Instructional
// queries aggregate step-like sentences; everything else takes the first
// usable sentence plus a little extra context.
func Extract(query string, results []Result) (Answer, bool) {
	if len(results) == 0 {
		return Answer{}, false
	}
	best := results[0]

	sentences := usableSentences(best.Snippet)
	answer := Answer{Source: hostname(best.URL)}

	if len(sentences) == 0 {
		answer.Text = best.Snippet
		return answer, true
	}

	if isInstructionalQuery(query) {
		var instructions []string
		for _, sentence := range sentences {
			lower := strings.ToLower(sentence)
			for _, marker := range instructionMarkers {
				if strings.Contains(lower, marker) {
					instructions = append(instructions, sentence+".")
					break
				}
			}
		}
		if len(instructions) > 0 {
			answer.Text = strings.Join(instructions, "\n\n")
		} else {
			answer.Text = joinSentences(sentences, 0, 3, "\n\n")
		}
		if len(sentences) > 3 {
			answer.Additional = joinSentences(sentences, 3, 5, " ")
		}
		return answer, true
	}

	answer.Text = sentences[0] + "."
	if len(sentences) > 1 {
		answer.Additional = joinSentences(sentences, 1, 3, " ")
	}
	return answer, true
}

// usableSentences drops date fragments, truncated sentences, very short
// ones, and bare numbered list items.
func usableSentences(snippet string) []string {
	// Snippets truncate with "...". The splitter would eat the dots, so
	// tag truncated fragments first and drop them after the split.
	snippet = strings.ReplaceAll(snippet, "...", "….")

	var out []string
	for _, raw := range sentenceSplit.Split(snippet, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		if monthPrefix.MatchString(sentence) {
			continue
		}
		if strings.Contains(sentence, "…") {
			continue
		}
		if len(sentence) <= 20 {
			continue
		}
		if numberedItem.MatchString(strings.ToLower(sentence)) {
			continue
		}
		out = append(out, sentence)
	}
	return out
}

func isInstructionalQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, marker := range gameQueryMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func joinSentences(sentences []string, from, to int, sep string) string {
	if to > len(sentences) {
		to = len(sentences)
	}
	if from >= to {
		return ""
	}
	parts := make([]string, 0, to-from)
	for _, sentence := range sentences[from:to] {
		parts = append(parts, sentence+".")
	}
	return strings.Join(parts, sep)
}

func hostname(link string) string {
	if link == "" {
		return ""
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
