package strategy

import (
	"errors"
	"fmt"
	"math"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// ErrInsufficientHistory is returned when a series is too short for its indicators.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Engine evaluates the multi-timeframe strategy over a pair of series.
type Engine struct {
	Params            calculator.Params
	DistanceThreshold float64
}

// NewEngine creates an Engine with the given indicator params and trend distance.
func NewEngine(params calculator.Params, distance float64) *Engine {
	return &Engine{Params: params, DistanceThreshold: distance}
}

// NewDefaultEngine creates an Engine with RSI(14), Bollinger(20, 2) and distance 1.0.
func NewDefaultEngine() *Engine {
	return NewEngine(calculator.DefaultParams(), DefaultDistanceThreshold)
}

// Evaluate computes indicators on both series and classifies their latest bars.
// A nil Signal in the result means the rule did not fire.
func (e *Engine) Evaluate(short, long *model.PriceSeries) (*model.Evaluation, error) {
	last1h, err := e.latest(short)
	if err != nil {
		return nil, fmt.Errorf("short series: %w", err)
	}
	last1d, err := e.latestBand(long)
	if err != nil {
		return nil, fmt.Errorf("long series: %w", err)
	}

	signal, err := Classify(last1h, last1d, e.DistanceThreshold)
	if err != nil {
		return nil, err
	}
	return &model.Evaluation{
		Symbol: short.Symbol,
		Signal: signal,
		Last1h: last1h,
		Last1d: last1d,
	}, nil
}

// latest enriches the last bar and requires both RSI and Bollinger to be defined.
func (e *Engine) latest(series *model.PriceSeries) (model.EnrichedBar, error) {
	if series == nil || series.Len() < e.Params.MinBars() {
		return model.EnrichedBar{}, ErrInsufficientHistory
	}
	frame, err := calculator.Compute(series, e.Params)
	if err != nil {
		return model.EnrichedBar{}, err
	}
	last := series.Len() - 1
	if !frame.Defined(last) {
		return model.EnrichedBar{}, ErrIndicatorUndefined
	}
	return calculator.Enrich(series, frame, last), nil
}

// latestBand enriches the last bar of the long series, which only needs Bollinger.
func (e *Engine) latestBand(series *model.PriceSeries) (model.EnrichedBar, error) {
	if series == nil || series.Len() < e.Params.BBPeriod {
		return model.EnrichedBar{}, ErrInsufficientHistory
	}
	bands, err := calculator.CalculateBollinger(series.Closes(), e.Params.BBPeriod, e.Params.BBMultiplier)
	if err != nil {
		return model.EnrichedBar{}, err
	}
	last := series.Len() - 1
	if !bands[last].Defined() {
		return model.EnrichedBar{}, ErrIndicatorUndefined
	}
	return model.EnrichedBar{
		OHLCV: series.Bars[last],
		Index: last,
		RSI:   math.NaN(),
		Band:  bands[last],
	}, nil
}
