package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit helpers for the pixel-based page geometry.
// The layout engine works in integer pixels at a fixed DPI; mm/pt only
// appear at the configuration boundary and inside renderers.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// MmToPx converts millimeters to pixels at the given DPI, rounding half-up.
func MmToPx(mm float64, dpi int) int {
	return int(math.Round(mm / 25.4 * float64(dpi)))
}

// PxToMm converts pixels back to millimeters at the given DPI.
func PxToMm(px int, dpi int) float64 {
	return float64(px) / float64(dpi) * 25.4
}

// PtToPx converts points to pixels at the given DPI.
func PtToPx(pt float64, dpi int) int {
	return int(math.Round(pt / 72.0 * float64(dpi)))
}

// pagePresets lists supported paper sizes in mm (portrait).
var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// PagePixels resolves the page size name and orientation into pixel
// dimensions at the given DPI.
func PagePixels(size, orientation string, dpi int) (int, int, error) {
	base, ok := pagePresets[strings.ToUpper(size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", size)
	}
	w, h := base[0], base[1]
	if strings.EqualFold(orientation, "landscape") {
		w, h = h, w
	}
	return MmToPx(w, dpi), MmToPx(h, dpi), nil
}

// ParseLength parses a length string with an optional unit suffix
// (mm/cm/in/pt, default mm) and returns millimeters.
func ParseLength(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	unit := ""
	for _, suffix := range []string{"mm", "cm", "in", "pt"} {
		if strings.HasSuffix(value, suffix) {
			unit = suffix
			value = strings.TrimSuffix(value, suffix)
			break
		}
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	switch unit {
	case "cm":
		return val * 10
	case "in":
		return val * 25.4
	case "pt":
		return val * PtToMm
	default:
		return val
	}
}
