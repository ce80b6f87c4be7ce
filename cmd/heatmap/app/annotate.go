package app

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	annotationDPI      = 72
	annotationFontSize = 14.0
	annotationSpacing  = 1.2

	pixelsPerFreqLabel  = 250
	pixelsPerSweepLabel = 60
)

// Annotator draws frequency and sweep scales plus a summary block over
// a rendered spectrum. The font is loaded from a user-supplied TTF
// file, there is no bundled one.
type Annotator struct {
	context *freetype.Context
}

func NewAnnotator(fontPath string) (*Annotator, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(annotationDPI)
	context.SetFont(parsedFont)
	context.SetFontSize(annotationFontSize)
	context.SetHinting(font.HintingFull)
	context.SetSrc(image.White)

	return &Annotator{context: context}, nil
}

func (a *Annotator) Annotate(img *image.RGBA, grid *SpectrumGrid) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *SpectrumGrid) error
	}{
		{"drawing frequency scale", a.drawFrequencyScale},
		{"drawing sweep scale", a.drawSweepScale},
		{"drawing info", a.drawInfo},
	}
	for _, op := range ops {
		if err := op.fn(img, grid); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *Annotator) drawFrequencyScale(img *image.RGBA, grid *SpectrumGrid) error {
	width := img.Bounds().Dx()
	count := max(width/pixelsPerFreqLabel, 1)
	hzPerLabel := (grid.FrequencyMax - grid.FrequencyMin) / float64(count)
	pxPerLabel := width / count

	for si := 0; si < count; si++ {
		hz := grid.FrequencyMin + (float64(si) * hzPerLabel)
		px := si * pxPerLabel

		// guideline on the exact frequency
		for i := 0; i < 25; i++ {
			img.Set(px, i, image.White)
		}

		pt := freetype.Pt(px+5, 17)
		if _, err := a.context.DrawString(humanHz(hz), pt); err != nil {
			return err
		}
	}

	return nil
}

func (a *Annotator) drawSweepScale(img *image.RGBA, grid *SpectrumGrid) error {
	height := img.Bounds().Dy()
	count := max(height/pixelsPerSweepLabel, 1)
	sweepsPerLabel := max(grid.Height/count, 1)
	pxPerSweep := height / grid.Height

	for sweep := 0; sweep < grid.Height; sweep += sweepsPerLabel {
		px := sweep * pxPerSweep

		// guideline on the exact sweep row
		for i := 0; i < 60; i++ {
			img.Set(i, px, image.White)
		}

		str := grid.Timestamps[sweep].Local().Format("15:04:05")
		pt := freetype.Pt(3, px+17)
		if _, err := a.context.DrawString(str, pt); err != nil {
			return err
		}
	}

	return nil
}

func (a *Annotator) drawInfo(img *image.RGBA, grid *SpectrumGrid) error {
	bandwidth := grid.FrequencyMax - grid.FrequencyMin
	cellHz := bandwidth / float64(grid.Width)

	imgSize := img.Bounds().Size()
	top, left := imgSize.Y-95, 3

	lines := []string{
		"Scan start: " + grid.TimestampStart.Local().Format(time.DateTime),
		"Scan end: " + grid.TimestampEnd.Local().Format(time.DateTime),
		fmt.Sprintf("Band: %s to %s", humanHz(grid.FrequencyMin), humanHz(grid.FrequencyMax)),
		fmt.Sprintf("Bandwidth: %s", humanHz(bandwidth)),
		fmt.Sprintf("Sweeps: %d, 1 cell = %s", grid.Height, humanHz(cellHz)),
	}

	pt := freetype.Pt(left, top)
	for _, s := range lines {
		if _, err := a.context.DrawString(s, pt); err != nil {
			return err
		}
		pt.Y += a.context.PointToFixed(annotationFontSize * annotationSpacing)
	}

	return nil
}

func humanHz(hz float64) string {
	fract, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", fract, suffix)
}
