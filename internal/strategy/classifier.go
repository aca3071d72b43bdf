package strategy

import (
	"errors"

	"SignalSentinel/internal/model"
)

// ErrIndicatorUndefined is returned when an input bar has no indicator values yet.
var ErrIndicatorUndefined = errors.New("indicator values not yet available")

// DefaultDistanceThreshold is the fixed distance from the mid band, in price units,
// that a close must clear to count as a trend.
const DefaultDistanceThreshold = 1.0

// Predicates exposes the intermediate terms of a classification.
type Predicates struct {
	Direction      model.Direction
	Trend          bool
	Reversal       bool
	Confirm        bool
	InsideLongBand bool
}

// directionOf maps a bar to BUY when it closed above its open. A flat bar is SELL.
func directionOf(bar model.OHLCV) model.Direction {
	if bar.Close > bar.Open {
		return model.DirectionBuy
	}
	return model.DirectionSell
}

// Evaluate computes the rule predicates for a short/long bar pair.
func Evaluate(last1h, last1d model.EnrichedBar, distance float64) (Predicates, error) {
	if !last1h.Defined() || !last1d.Band.Defined() {
		return Predicates{}, ErrIndicatorUndefined
	}

	p := Predicates{Direction: directionOf(last1h.OHLCV)}
	mid := last1h.Band.Mid
	price := last1h.Close

	switch p.Direction {
	case model.DirectionBuy:
		p.Trend = price > mid+distance
		p.Reversal = price < mid
		p.Confirm = last1d.Close > last1d.Open
	case model.DirectionSell:
		p.Trend = price < mid-distance
		p.Reversal = price > mid
		p.Confirm = last1d.Close < last1d.Open
	}
	p.InsideLongBand = last1d.Close > last1d.Band.Lower && last1d.Close < last1d.Band.Upper
	return p, nil
}

// Fires reports whether the predicates produce a signal.
func (p Predicates) Fires() bool {
	return (p.Trend || p.Reversal) && p.Confirm && p.InsideLongBand
}

// Kind resolves the signal kind. Trend wins when both setups hold.
func (p Predicates) Kind() model.SignalKind {
	if p.Trend {
		return model.KindTrend
	}
	return model.KindReversal
}

// Classify applies the multi-timeframe rule and returns nil when no signal fires.
func Classify(last1h, last1d model.EnrichedBar, distance float64) (*model.Signal, error) {
	p, err := Evaluate(last1h, last1d, distance)
	if err != nil {
		return nil, err
	}
	if !p.Fires() {
		return nil, nil
	}
	return &model.Signal{
		Direction:      p.Direction,
		Kind:           p.Kind(),
		SourceBarIndex: last1h.Index,
	}, nil
}
