// Package sentiment turns a batch of headlines into a percentage split of
// positive, negative and neutral tone.
package sentiment

import "SignalSentinel/internal/model"

// Summarize reduces classified labels to percentages. An empty batch yields all zeros.
// Labels outside the three known values count as neutral.
func Summarize(labels []model.SentimentLabel) model.SentimentSummary {
	total := len(labels)
	if total == 0 {
		return model.SentimentSummary{}
	}

	var pos, neg, neu int
	for _, l := range labels {
		switch l {
		case model.SentimentPositive:
			pos++
		case model.SentimentNegative:
			neg++
		default:
			neu++
		}
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	return model.SentimentSummary{
		PositivePct: pct(pos),
		NegativePct: pct(neg),
		NeutralPct:  pct(neu),
		Total:       total,
	}
}
