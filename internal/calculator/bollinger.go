package calculator

import (
	"errors"
	"math"

	"SignalSentinel/internal/model"
)

// CalculateBollinger computes Bollinger Bands at every index of closes.
//
// mid is the simple moving average over `period` closes and the width uses the
// sample standard deviation (n-1 denominator). Entries before period-1 are
// undefined (NaN in all three fields).
func CalculateBollinger(closes []float64, period int, multiplier float64) ([]model.BollingerBand, error) {
	if period < 2 {
		return nil, errors.New("bollinger period must be at least 2")
	}
	if multiplier < 0 || math.IsNaN(multiplier) {
		return nil, errors.New("bollinger multiplier must be non-negative")
	}

	mids, err := RollingSMA(closes, period)
	if err != nil {
		return nil, err
	}

	nan := math.NaN()
	bands := make([]model.BollingerBand, len(closes))
	for i := range closes {
		if i < period-1 {
			bands[i] = model.BollingerBand{Upper: nan, Mid: nan, Lower: nan}
			continue
		}
		mid := mids[i]
		var sq float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mid
			sq += d * d
		}
		std := math.Sqrt(sq / float64(period-1))
		bands[i] = model.BollingerBand{
			Upper: mid + multiplier*std,
			Mid:   mid,
			Lower: mid - multiplier*std,
		}
	}
	return bands, nil
}
