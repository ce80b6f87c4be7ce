package app

import (
	"image/color"
	"math"
)

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white

	colorMapSize = 256
)

// ColorTheme represents a predefined color scheme for power
// visualization.
type ColorTheme string

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
}

var noDataColor = color.Black

// ColorMapper provides power-to-color mapping over a pre-computed
// gradient of 256 colors.
type ColorMapper struct {
	colorMap      []color.Color
	bounds        PowerBounds
	powerPerIndex float64
}

func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	cm := ColorMapper{
		colorMap:      make([]color.Color, colorMapSize),
		bounds:        bounds,
		powerPerIndex: (bounds.Max - bounds.Min) / float64(colorMapSize-1),
	}

	themeFn := getColorTheme(theme)
	for i := range cm.colorMap {
		cm.colorMap[i] = themeFn(float64(i) / float64(colorMapSize-1))
	}
	return &cm
}

// GetColor returns a color for the given power value. A nil power is a
// skipped reading and maps to the no-data color.
func (cm *ColorMapper) GetColor(power *float64) color.Color {
	if power == nil {
		return noDataColor
	}

	pwr := math.Max(cm.bounds.Min, math.Min(*power, cm.bounds.Max))

	index := int((pwr - cm.bounds.Min) / cm.powerPerIndex)
	if index < 0 {
		index = 0
	} else if index >= colorMapSize {
		index = colorMapSize - 1
	}
	return cm.colorMap[index]
}

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGB converts HSV color space to RGB
// H: [0-360], S: [0-1], V: [0-1]
func (hsv HSV) RGB() color.Color {
	h := hsv.H
	s := hsv.S
	v := hsv.V

	if s <= 0.0 {
		rgb := uint8(v * 255)
		return color.RGBA{R: rgb, G: rgb, B: rgb, A: 0xff}
	}

	// Normalize hue to [0-6]
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64

	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme: // Black -> White
		return func(power float64) color.Color {
			v := uint8(math.Pow(power, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 0xff}
		}

	case ThermalTheme: // Black -> Red -> Yellow -> White
		return func(power float64) color.Color {
			if power < 0.33 {
				p := power * 3
				return color.RGBA{R: uint8(p * 255), A: 0xff}
			} else if power < 0.66 {
				p := (power - 0.33) * 3
				return color.RGBA{R: 255, G: uint8(p * 255), A: 0xff}
			}
			p := (power - 0.66) * 3
			return color.RGBA{R: 255, G: 255, B: uint8(p * 255), A: 0xff}
		}

	default: // ClassicTheme, Blue -> Red
		return func(power float64) color.Color {
			hsv := HSV{
				H: 240 - (power * 240),
				S: 0.9 + (power * 0.1),
				V: math.Pow(power, 0.7),
			}
			return hsv.RGB()
		}
	}
}
