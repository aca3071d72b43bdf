package model

// SentimentLabel is the outcome of classifying one headline.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// SentimentSummary is the percentage split of a classified batch.
// All fields are zero when the batch was empty.
type SentimentSummary struct {
	PositivePct float64
	NegativePct float64
	NeutralPct  float64
	Total       int
}
