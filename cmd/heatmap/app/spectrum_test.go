package app

import (
	"testing"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/spectrum"
)

func powerPtr(v float64) *float64 { return &v }

func testSpan(sweep int, ts time.Time, powers []*float64) *spectrum.SpectralSpan {
	points := make([]spectrum.SpectralPoint, len(powers))
	for i, p := range powers {
		points[i] = spectrum.SpectralPoint{
			Frequency: 27_000_000 + float64(i)*5_000,
			Power:     p,
		}
	}
	return &spectrum.SpectralSpan{
		Sweep:          sweep,
		Timestamp:      ts,
		FrequencyStart: 27_000_000,
		FrequencyEnd:   27_000_000 + float64(len(powers)-1)*5_000,
		Points:         points,
	}
}

func TestSpectrumGridUpdate(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	grid := NewSpectrumGrid()
	grid.Update(testSpan(0, t0, []*float64{powerPtr(10), powerPtr(20), nil}))
	grid.Update(testSpan(1, t0.Add(time.Minute), []*float64{powerPtr(30), powerPtr(40), powerPtr(50)}))

	if grid.Width != 3 || grid.Height != 2 {
		t.Fatalf("Grid dimensions = %dx%d, want 3x2", grid.Width, grid.Height)
	}
	if grid.FrequencyMin != 27_000_000 || grid.FrequencyMax != 27_010_000 {
		t.Errorf("Frequency range = [%0.f, %0.f], want [27000000, 27010000]", grid.FrequencyMin, grid.FrequencyMax)
	}
	if !grid.TimestampStart.Equal(t0) || !grid.TimestampEnd.Equal(t0.Add(time.Minute)) {
		t.Errorf("Timestamp range = [%s, %s]", grid.TimestampStart, grid.TimestampEnd)
	}
	if grid.Rows[0][2] != nil {
		t.Error("skipped reading should stay nil in the grid")
	}
	if got := len(grid.powers); got != 5 {
		t.Errorf("collected %d valid powers, want 5", got)
	}
}

func TestEstimateBounds(t *testing.T) {
	t.Run("too few samples falls back to defaults", func(t *testing.T) {
		bounds := estimateBounds([]float64{1, 2, 3})
		if bounds != defaultPowerBounds() {
			t.Errorf("estimateBounds() = %+v, want defaults", bounds)
		}
	})

	t.Run("outliers do not dominate the range", func(t *testing.T) {
		powers := make([]float64, 100)
		for i := range powers {
			powers[i] = 10 // flat noise floor
		}
		powers[0] = 500 // single hot detection

		bounds := estimateBounds(powers)
		if bounds.Max > 100 {
			t.Errorf("bounds.Max = %0.2f, single outlier should not stretch the range", bounds.Max)
		}
		if bounds.Min >= bounds.Max {
			t.Errorf("bounds = %+v, min must stay below max", bounds)
		}
		if bounds.Max-bounds.Min < minimumRangeDB {
			t.Errorf("bounds span %0.2fdB, want at least %0.2fdB", bounds.Max-bounds.Min, minimumRangeDB)
		}
	})
}

func TestColorMapper(t *testing.T) {
	mapper := NewColorMapper(ClassicTheme, PowerBounds{Min: 0, Max: 100})

	if got := mapper.GetColor(nil); got != noDataColor {
		t.Errorf("GetColor(nil) = %v, want no-data color", got)
	}

	low := mapper.GetColor(powerPtr(-50))
	high := mapper.GetColor(powerPtr(150))
	if low != mapper.colorMap[0] {
		t.Error("power below bounds should clamp to the first color")
	}
	if high != mapper.colorMap[colorMapSize-1] {
		t.Error("power above bounds should clamp to the last color")
	}
}

func TestRendererScale(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	grid := NewSpectrumGrid()
	grid.Update(testSpan(0, t0, []*float64{powerPtr(10), powerPtr(20)}))

	img := NewRenderer(GrayscaleTheme, PowerBounds{Min: 0, Max: 100}, 4).Render(grid)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("image size = %dx%d, want 8x4", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
