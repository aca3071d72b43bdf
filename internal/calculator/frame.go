package calculator

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// Params configures indicator computation.
type Params struct {
	RSIPeriod    int
	BBPeriod     int
	BBMultiplier float64
}

// DefaultParams returns RSI(14) and Bollinger(20, 2).
func DefaultParams() Params {
	return Params{RSIPeriod: 14, BBPeriod: 20, BBMultiplier: 2}
}

// MinBars is the number of bars needed before the last bar is fully populated.
func (p Params) MinBars() int {
	if p.RSIPeriod > p.BBPeriod {
		return p.RSIPeriod
	}
	return p.BBPeriod
}

// Compute derives the full indicator frame of a series.
func Compute(series *model.PriceSeries, p Params) (*model.IndicatorFrame, error) {
	closes := series.Closes()
	rsi, err := CalculateRSI(closes, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	bands, err := CalculateBollinger(closes, p.BBPeriod, p.BBMultiplier)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	return &model.IndicatorFrame{RSI: rsi, Bollinger: bands}, nil
}

// Enrich attaches the frame's values at index i to the bar at i.
func Enrich(series *model.PriceSeries, frame *model.IndicatorFrame, i int) model.EnrichedBar {
	return model.EnrichedBar{
		OHLCV: series.Bars[i],
		Index: i,
		RSI:   frame.RSI[i],
		Band:  frame.Bollinger[i],
	}
}
