package app

import (
	"math"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/spectrum"
)

// SpectrumGrid accumulates the sweeps of a session into a rectangular
// grid of power readings: one row per sweep, one column per frequency
// step. Skipped steps stay nil and render as no-data cells.
type SpectrumGrid struct {
	Width, Height                int
	FrequencyMin, FrequencyMax   float64
	TimestampStart, TimestampEnd time.Time
	Timestamps                   []time.Time
	Rows                         [][]*float64

	powers []float64 // valid readings only, feeds bounds estimation
}

func NewSpectrumGrid() *SpectrumGrid {
	return &SpectrumGrid{
		FrequencyMin: math.MaxFloat64,
		Rows:         make([][]*float64, 0),
	}
}

func (g *SpectrumGrid) Update(span *spectrum.SpectralSpan) {
	g.Width = max(g.Width, len(span.Points))
	g.Height++

	g.FrequencyMin = min(g.FrequencyMin, span.FrequencyStart)
	g.FrequencyMax = max(g.FrequencyMax, span.FrequencyEnd)

	if g.TimestampStart.IsZero() || g.TimestampStart.After(span.Timestamp) {
		g.TimestampStart = span.Timestamp
	}
	if g.TimestampEnd.IsZero() || g.TimestampEnd.Before(span.Timestamp) {
		g.TimestampEnd = span.Timestamp
	}
	g.Timestamps = append(g.Timestamps, span.Timestamp)

	row := make([]*float64, len(span.Points))
	for i, point := range span.Points {
		row[i] = point.Power
		if point.Power != nil {
			g.powers = append(g.powers, *point.Power)
		}
	}
	g.Rows = append(g.Rows, row)
}
