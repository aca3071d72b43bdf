package sentiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

// DefaultBatchSize is the number of headlines classified per analysis.
const DefaultBatchSize = 15

// HeadlineSource searches for recent headlines matching a query.
type HeadlineSource interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// TextClassifier labels the tone of a single piece of text.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (model.SentimentLabel, error)
}

// Analyzer classifies a bounded batch of headlines and summarizes the result.
type Analyzer struct {
	Source     HeadlineSource
	Classifier TextClassifier
	BatchSize  int
	log        zerolog.Logger
}

// NewAnalyzer creates an Analyzer. A non-positive batch size falls back to DefaultBatchSize.
func NewAnalyzer(source HeadlineSource, classifier TextClassifier, batchSize int, log zerolog.Logger) *Analyzer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Analyzer{
		Source:     source,
		Classifier: classifier,
		BatchSize:  batchSize,
		log:        log.With().Str("component", "sentiment").Logger(),
	}
}

// Analyze fetches headlines for query and returns their sentiment split.
// Headlines the classifier fails on are skipped; a failed search is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, query string) (model.SentimentSummary, error) {
	headlines, err := a.Source.Search(ctx, query, a.BatchSize)
	if err != nil {
		return model.SentimentSummary{}, fmt.Errorf("search headlines: %w", err)
	}
	if len(headlines) > a.BatchSize {
		headlines = headlines[:a.BatchSize]
	}

	labels := make([]model.SentimentLabel, 0, len(headlines))
	for _, h := range headlines {
		label, err := a.Classifier.Classify(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return model.SentimentSummary{}, ctx.Err()
			}
			a.log.Warn().Err(err).Str("headline", h).Msg("classify headline failed, skipping")
			continue
		}
		labels = append(labels, label)
	}

	summary := Summarize(labels)
	a.log.Debug().
		Str("query", query).
		Int("headlines", len(headlines)).
		Int("classified", summary.Total).
		Msg("sentiment analyzed")
	return summary, nil
}
