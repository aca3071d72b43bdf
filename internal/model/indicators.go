package model

import "math"

// BollingerBand is one point of the Bollinger envelope.
type BollingerBand struct {
	Upper float64
	Mid   float64
	Lower float64
}

// Defined reports whether the band has been populated.
func (b BollingerBand) Defined() bool {
	return !math.IsNaN(b.Upper) && !math.IsNaN(b.Mid) && !math.IsNaN(b.Lower)
}

// IndicatorFrame holds indicator values aligned index-for-index with a PriceSeries.
// Entries that are not yet available hold NaN.
type IndicatorFrame struct {
	RSI       []float64
	Bollinger []BollingerBand
}

// Defined reports whether both RSI and Bollinger values exist at index i.
func (f *IndicatorFrame) Defined(i int) bool {
	if i < 0 || i >= len(f.RSI) || i >= len(f.Bollinger) {
		return false
	}
	return !math.IsNaN(f.RSI[i]) && f.Bollinger[i].Defined()
}

// EnrichedBar is a bar with its indicator values attached.
type EnrichedBar struct {
	OHLCV
	Index int
	RSI   float64
	Band  BollingerBand
}

// Defined reports whether every indicator on the bar is available.
func (b EnrichedBar) Defined() bool {
	return !math.IsNaN(b.RSI) && b.Band.Defined()
}
