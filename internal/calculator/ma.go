package calculator

import (
	"errors"
	"math"
)

// ErrInvalidPeriod is returned when an indicator period is out of range.
var ErrInvalidPeriod = errors.New("period must be positive")

// RollingSMA returns the simple moving average at every index.
// The first period-1 entries are NaN.
func RollingSMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := nanSlice(len(prices))
	for i := period - 1; i < len(prices); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
