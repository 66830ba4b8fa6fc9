package classifier

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxScoreChars bounds the text sent to the external scorer.
const maxScoreChars = 500

// Toxicity thresholds for bucketing the scorer probability.
const (
	thresholdHigh   = 0.8
	thresholdMedium = 0.6
	thresholdLow    = 0.4
)

// ToxicityScorer is the external inference call, isolated so tests can fake
// it.
type ToxicityScorer interface {
	ClassifyToxicity(ctx context.Context, text string) (label string, score float64, err error)
}

// Scored delegates to a toxicity scorer and buckets the probability into
// severity tiers. Scorer failures fail open: the verdict is Unknown and the
// engine treats it as NONE.
type Scored struct {
	scorer ToxicityScorer
	logger *zap.Logger
}

func NewScored(scorer ToxicityScorer, logger *zap.Logger) *Scored {
	return &Scored{scorer: scorer, logger: logger}
}

func (s *Scored) Evaluate(ctx context.Context, text, filterLevel string) Verdict {
	if text == "" || filterLevel == "" {
		return Verdict{Severity: SeverityNone}
	}
	if len(text) > maxScoreChars {
		cut := maxScoreChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	label, score, err := s.scorer.ClassifyToxicity(ctx, text)
	if err != nil {
		s.logger.Warn("toxicity scorer unavailable", zap.Error(err))
		return Verdict{Severity: SeverityNone, Unknown: true}
	}

	return Verdict{
		Severity:   bucketScore(score),
		Reason:     fmt.Sprintf("toxicity %s %.2f", label, score),
		Score:      score,
		ScoreKnown: true,
	}
}

func bucketScore(score float64) Severity {
	switch {
	case score > thresholdHigh:
		return SeverityHigh
	case score > thresholdMedium:
		return SeverityMedium
	case score > thresholdLow:
		return SeverityLow
	default:
		return SeverityNone
	}
}
