package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

// ErrDataUnavailable is returned when a series could not be fetched.
var ErrDataUnavailable = errors.New("price data unavailable")

// SeriesSpec selects the interval and depth of one timeframe.
type SeriesSpec struct {
	Interval string
	Limit    int
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	// Bars keyed by interval; generated from Price when absent.
	Bars map[string][]model.OHLCV
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, interval string, limit int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[interval]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, limit, intervalStep(interval)), nil
}

func intervalStep(interval string) time.Duration {
	switch interval {
	case "1day", "1d":
		return 24 * time.Hour
	case "1week", "1wk":
		return 7 * 24 * time.Hour
	}
	return time.Hour
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	end := time.Now().UTC().Truncate(step)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches the short and long timeframe series of an instrument.
type Collector struct {
	Fetcher Fetcher
	Short   SeriesSpec
	Long    SeriesSpec
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, short, long SeriesSpec, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Short:   short,
		Long:    long,
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches both timeframes. Either failing yields ErrDataUnavailable.
func (c *Collector) Collect(ctx context.Context, symbol string) (short, long *model.PriceSeries, err error) {
	short, err = c.fetchSeries(ctx, symbol, c.Short)
	if err != nil {
		return nil, nil, err
	}
	long, err = c.fetchSeries(ctx, symbol, c.Long)
	if err != nil {
		return nil, nil, err
	}
	return short, long, nil
}

func (c *Collector) fetchSeries(ctx context.Context, symbol string, spec SeriesSpec) (*model.PriceSeries, error) {
	start := time.Now()
	bars, err := c.Fetcher.FetchBars(ctx, symbol, spec.Interval, spec.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDataUnavailable, symbol, spec.Interval, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s: empty series", ErrDataUnavailable, symbol, spec.Interval)
	}

	normalized, dropped := Normalize(bars)
	if dropped > 0 {
		c.log.Warn().Str("symbol", symbol).Str("interval", spec.Interval).
			Int("dropped", dropped).Msg("duplicate bar timestamps dropped")
	}
	c.log.Debug().Str("symbol", symbol).Str("interval", spec.Interval).
		Int("bars", len(normalized)).Dur("took", time.Since(start)).Msg("series fetched")

	return &model.PriceSeries{
		Symbol:   symbol,
		Interval: spec.Interval,
		Bars:     normalized,
	}, nil
}

// Normalize returns bars sorted by time in UTC with duplicate timestamps removed.
// When timestamps collide the later occurrence in the input wins.
func Normalize(bars []model.OHLCV) ([]model.OHLCV, int) {
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	for i := range out {
		out[i].Time = out[i].Time.UTC()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup, len(bars) - len(dedup)
}
