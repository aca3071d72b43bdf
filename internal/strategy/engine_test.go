package strategy

import (
	"errors"
	"testing"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// buildSeries creates bars from closes; lastOpenOffset sets the last bar's open
// relative to its close, every other bar opens 0.5 below its close.
func buildSeries(symbol string, step time.Duration, closes []float64, lastOpenOffset float64) *model.PriceSeries {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: symbol}
	for i, c := range closes {
		open := c - 0.5
		if i == len(closes)-1 {
			open = c + lastOpenOffset
		}
		s.Bars = append(s.Bars, model.OHLCV{
			Time:  start.Add(time.Duration(i) * step),
			Open:  open,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		})
	}
	return s
}

func uptrendCloses() []float64 {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

// alternating closes keep the long series range-bound around 101.
func rangeCloses() []float64 {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%2)*2
	}
	return closes
}

func TestEngine_UptrendConfirmedIsBuyTrend(t *testing.T) {
	short := buildSeries("XAU/USD", time.Hour, uptrendCloses(), -0.5)
	long := buildSeries("XAU/USD", 24*time.Hour, rangeCloses(), -0.5)

	ev, err := NewDefaultEngine().Evaluate(short, long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Signal == nil {
		t.Fatal("expected a signal")
	}
	if ev.Signal.Direction != model.DirectionBuy || ev.Signal.Kind != model.KindTrend {
		t.Errorf("expected BUY/Trend, got %s/%s", ev.Signal.Direction, ev.Signal.Kind)
	}
	if ev.Identity() != "BUY_Trend" {
		t.Errorf("expected identity BUY_Trend, got %q", ev.Identity())
	}
	if ev.Last1h.Close != 129 || ev.Last1h.Band.Mid != 119.5 {
		t.Errorf("unexpected last1h: close=%.2f mid=%.2f", ev.Last1h.Close, ev.Last1h.Band.Mid)
	}
	if ev.Signal.SourceBarIndex != 29 {
		t.Errorf("expected source bar 29, got %d", ev.Signal.SourceBarIndex)
	}
}

func TestEngine_PullbackAgainstSellIsReversal(t *testing.T) {
	// Last short bar closes below its open while still above the mid band.
	short := buildSeries("XAU/USD", time.Hour, uptrendCloses(), 0.5)
	long := buildSeries("XAU/USD", 24*time.Hour, rangeCloses(), 0.5)

	ev, err := NewDefaultEngine().Evaluate(short, long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Signal == nil {
		t.Fatal("expected a signal")
	}
	if ev.Signal.Direction != model.DirectionSell || ev.Signal.Kind != model.KindReversal {
		t.Errorf("expected SELL/Reversal, got %s/%s", ev.Signal.Direction, ev.Signal.Kind)
	}
	if ev.Last1h.Close != 129 {
		t.Errorf("expected last1h close 129, got %.2f", ev.Last1h.Close)
	}
}

func TestEngine_LongCloseOutsideBandsIsNoSignal(t *testing.T) {
	longCloses := make([]float64, 30)
	for i := range longCloses {
		longCloses[i] = 100
	}
	longCloses[29] = 110
	short := buildSeries("XAU/USD", time.Hour, uptrendCloses(), -0.5)
	long := buildSeries("XAU/USD", 24*time.Hour, longCloses, -5)

	ev, err := NewDefaultEngine().Evaluate(short, long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Signal != nil {
		t.Fatalf("expected no signal, got %+v", ev.Signal)
	}
	if ev.Identity() != "" {
		t.Errorf("expected empty identity, got %q", ev.Identity())
	}
	if ev.Last1h.Close != 129 {
		t.Errorf("last1h should still be reported, got close %.2f", ev.Last1h.Close)
	}
	if ev.Last1d.Close < ev.Last1d.Band.Upper {
		t.Errorf("test setup: long close %.2f should exceed upper %.2f", ev.Last1d.Close, ev.Last1d.Band.Upper)
	}
}

func TestEngine_InsufficientHistory(t *testing.T) {
	short := buildSeries("XAU/USD", time.Hour, uptrendCloses()[:19], -0.5)
	long := buildSeries("XAU/USD", 24*time.Hour, rangeCloses(), -0.5)

	if _, err := NewDefaultEngine().Evaluate(short, long); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for short series, got %v", err)
	}
	if _, err := NewDefaultEngine().Evaluate(long, short); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for long series, got %v", err)
	}
	if _, err := NewDefaultEngine().Evaluate(nil, long); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for nil series, got %v", err)
	}
}

func TestEngine_LongSeriesNeedsOnlyBollingerHistory(t *testing.T) {
	e := NewEngine(calculator.Params{RSIPeriod: 25, BBPeriod: 20, BBMultiplier: 2}, DefaultDistanceThreshold)
	short := buildSeries("XAU/USD", time.Hour, uptrendCloses(), -0.5)
	long := buildSeries("XAU/USD", 24*time.Hour, rangeCloses()[:22], -0.5)

	ev, err := e.Evaluate(short, long)
	if err != nil {
		t.Fatalf("22 long bars cover Bollinger(20), got %v", err)
	}
	if ev.Identity() != "BUY_Trend" {
		t.Errorf("expected BUY_Trend, got %q", ev.Identity())
	}
	if !ev.Last1d.Band.Defined() {
		t.Error("long band should be defined")
	}

	if _, err := e.Evaluate(short, buildSeries("XAU/USD", 24*time.Hour, rangeCloses()[:19], -0.5)); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory below the Bollinger period, got %v", err)
	}
}
