package analysis

import (
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// ChangePercent calculates the percentage change relative to previous.
// Returns 0 when previous is absent or zero.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// Round2 rounds to 2 decimal places using exact decimal arithmetic, so
// 0.005-style edge cases round the way a price display expects.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// -----------------------------------------------------------------------------

// RSI computes the Relative Strength Index with Wilder smoothing.
// The returned slice is aligned to closes[period:]: the warm-up values that
// have no defined RSI are dropped, matching how charting consumers expect
// the series. Returns nil when there are not enough closes.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) <= period {
		return nil
	}

	var avgGain, avgLoss float64

	// Seed with the simple average of the first `period` changes.
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}

	return out
}

// -----------------------------------------------------------------------------

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
