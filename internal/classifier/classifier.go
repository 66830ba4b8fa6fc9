// Package classifier turns message text and a guild filter level into a
// moderation verdict.
package classifier

import "context"

type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

// Verdict is ephemeral, computed per message, never persisted. Unknown marks
// a verdict from a failed scorer call; the engine treats it as NONE.
type Verdict struct {
	Severity     Severity
	Reason       string
	Score        float64
	ScoreKnown   bool
	Unknown      bool
	MatchedTerms []string
}

type Classifier interface {
	Evaluate(ctx context.Context, text, filterLevel string) Verdict
}
