package app

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	defaultMinPower = -60.0 // dB
	defaultMaxPower = 20.0  // dB

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20

	minimumRangeDB = 30.0
)

// PowerBounds represents the power boundaries the color map spans.
type PowerBounds struct {
	Min float64 // Lower bound in dB
	Max float64 // Upper bound in dB
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min: defaultMinPower,
		Max: defaultMaxPower,
	}
}

// estimateBounds derives display bounds from the 5th and 95th power
// percentiles, so a few hot detections do not wash out the rest of the
// picture. The range is widened to at least 30dB and padded by 10%.
func estimateBounds(powers []float64) PowerBounds {
	if len(powers) < minimumSampleCount {
		return defaultPowerBounds()
	}

	sorted := slices.Clone(powers)
	sort.Float64s(sorted)

	lo := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.95, stat.Empirical, sorted, nil)

	if hi-lo < minimumRangeDB {
		center := (hi + lo) / 2
		lo = center - minimumRangeDB/2
		hi = center + minimumRangeDB/2
	}

	margin := (hi - lo) / 10
	return PowerBounds{
		Min: lo - margin,
		Max: hi + margin,
	}
}
