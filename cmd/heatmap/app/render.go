package app

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Renderer turns a spectrum grid into a raster image. Each grid cell
// becomes a scale x scale block of pixels so that short sessions with
// a handful of sweeps still produce a readable picture.
type Renderer struct {
	colorMap *ColorMapper
	scale    int
}

func NewRenderer(theme ColorTheme, bounds PowerBounds, scale int) *Renderer {
	if scale < 1 {
		scale = 1
	}
	return &Renderer{
		colorMap: NewColorMapper(theme, bounds),
		scale:    scale,
	}
}

func (r *Renderer) Render(grid *SpectrumGrid) *image.RGBA {
	raw := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y, row := range grid.Rows {
		for x := 0; x < grid.Width; x++ {
			var power *float64
			if x < len(row) {
				power = row[x]
			}
			raw.Set(x, y, r.colorMap.GetColor(power))
		}
	}

	if r.scale == 1 {
		return raw
	}

	img := image.NewRGBA(image.Rect(0, 0, grid.Width*r.scale, grid.Height*r.scale))
	xdraw.NearestNeighbor.Scale(img, img.Bounds(), raw, raw.Bounds(), xdraw.Src, nil)
	return img
}
