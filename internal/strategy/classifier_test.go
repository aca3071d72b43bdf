package strategy

import (
	"errors"
	"math"
	"testing"

	"SignalSentinel/internal/model"
)

func enriched(open, close, lower, mid, upper float64) model.EnrichedBar {
	return model.EnrichedBar{
		OHLCV: model.OHLCV{Open: open, Close: close, High: math.Max(open, close), Low: math.Min(open, close)},
		Index: 99,
		RSI:   55,
		Band:  model.BollingerBand{Lower: lower, Mid: mid, Upper: upper},
	}
}

func TestClassify_Table(t *testing.T) {
	// long-series bars
	longBull := enriched(100, 101, 95, 100, 105)
	longBear := enriched(101, 100, 95, 100, 105)
	longOutside := enriched(100, 106, 95, 100, 105)
	longOnBand := enriched(100, 105, 95, 100, 105)

	tests := []struct {
		name      string
		short     model.EnrichedBar
		long      model.EnrichedBar
		wantDir   model.Direction
		wantKind  model.SignalKind
		wantFires bool
	}{
		{"buy trend", enriched(110, 112, 100, 110, 120), longBull, model.DirectionBuy, model.KindTrend, true},
		{"buy reversal", enriched(105, 108, 100, 110, 120), longBull, model.DirectionBuy, model.KindReversal, true},
		{"sell trend", enriched(110, 108, 100, 110, 120), longBear, model.DirectionSell, model.KindTrend, true},
		{"sell reversal", enriched(114, 112, 100, 110, 120), longBear, model.DirectionSell, model.KindReversal, true},
		{"buy inside dead zone", enriched(110, 110.5, 100, 110, 120), longBull, "", "", false},
		{"buy exactly at threshold", enriched(110, 111, 100, 110, 120), longBull, "", "", false},
		{"buy not confirmed", enriched(110, 112, 100, 110, 120), longBear, "", "", false},
		{"sell not confirmed", enriched(110, 108, 100, 110, 120), longBull, "", "", false},
		{"long close outside band", enriched(110, 112, 100, 110, 120), longOutside, "", "", false},
		{"long close on upper band", enriched(110, 112, 100, 110, 120), longOnBand, "", "", false},
		// flat short bar classifies as SELL
		{"flat bar is sell", enriched(108, 108, 100, 110, 120), longBear, model.DirectionSell, model.KindTrend, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Classify(tt.short, tt.long, DefaultDistanceThreshold)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantFires {
				if sig != nil {
					t.Fatalf("expected no signal, got %+v", sig)
				}
				return
			}
			if sig == nil {
				t.Fatal("expected a signal, got none")
			}
			if sig.Direction != tt.wantDir || sig.Kind != tt.wantKind {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantDir, tt.wantKind, sig.Direction, sig.Kind)
			}
			if sig.SourceBarIndex != 99 {
				t.Errorf("expected source index 99, got %d", sig.SourceBarIndex)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	short := enriched(110, 112, 100, 110, 120)
	long := enriched(100, 101, 95, 100, 105)
	first, err := Classify(short, long, DefaultDistanceThreshold)
	if err != nil || first == nil {
		t.Fatalf("expected signal, got %v, %v", first, err)
	}
	for i := 0; i < 20; i++ {
		again, _ := Classify(short, long, DefaultDistanceThreshold)
		if again == nil || *again != *first {
			t.Fatalf("run %d: expected %+v, got %+v", i, first, again)
		}
	}
}

func TestEvaluate_TrendAndReversalMutuallyExclusive(t *testing.T) {
	long := enriched(100, 101, 95, 100, 105)
	mid := 50.0
	for _, open := range []float64{40, 49.5, 50, 50.5, 51, 60} {
		for c := 40.0; c <= 60; c += 0.25 {
			p, err := Evaluate(enriched(open, c, 40, mid, 60), long, DefaultDistanceThreshold)
			if err != nil {
				t.Fatal(err)
			}
			if p.Trend && p.Reversal {
				t.Fatalf("open=%.2f close=%.2f: trend and reversal both hold", open, c)
			}
		}
	}
}

func TestPredicates_TrendTakesPriority(t *testing.T) {
	p := Predicates{Trend: true, Reversal: true, Confirm: true, InsideLongBand: true}
	if !p.Fires() {
		t.Fatal("expected predicates to fire")
	}
	if p.Kind() != model.KindTrend {
		t.Errorf("expected Trend to win, got %s", p.Kind())
	}
	p.Trend = false
	if p.Kind() != model.KindReversal {
		t.Errorf("expected Reversal, got %s", p.Kind())
	}
}

func TestClassify_RefusesUndefinedIndicators(t *testing.T) {
	nan := math.NaN()
	defined := enriched(100, 101, 95, 100, 105)

	undefinedShort := enriched(110, 112, nan, nan, nan)
	if _, err := Classify(undefinedShort, defined, DefaultDistanceThreshold); !errors.Is(err, ErrIndicatorUndefined) {
		t.Errorf("expected ErrIndicatorUndefined for short bar, got %v", err)
	}

	noRSI := enriched(110, 112, 100, 110, 120)
	noRSI.RSI = nan
	if _, err := Classify(noRSI, defined, DefaultDistanceThreshold); !errors.Is(err, ErrIndicatorUndefined) {
		t.Errorf("expected ErrIndicatorUndefined for missing RSI, got %v", err)
	}

	undefinedLong := enriched(100, 101, nan, nan, nan)
	if _, err := Classify(enriched(110, 112, 100, 110, 120), undefinedLong, DefaultDistanceThreshold); !errors.Is(err, ErrIndicatorUndefined) {
		t.Errorf("expected ErrIndicatorUndefined for long bar, got %v", err)
	}
}
