package model

import "time"

// OHLCV represents a single candlestick bar. Time is always UTC.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars of one instrument at one interval, oldest first.
type PriceSeries struct {
	Symbol   string
	Interval string
	Bars     []OHLCV
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar and false when the series is empty.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Instrument is a tracked symbol together with the query used for its headlines.
type Instrument struct {
	Symbol    string `yaml:"symbol" validate:"required"`
	NewsQuery string `yaml:"news_query"`
}

// Query returns the headline search query, falling back to the symbol.
func (i Instrument) Query() string {
	if i.NewsQuery != "" {
		return i.NewsQuery
	}
	return i.Symbol
}
