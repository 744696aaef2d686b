package export

import (
	"fmt"
	"math"
	"strings"
)

// SliceToSVG renders a nx x ny plane as a grid of cells, scale pixels each,
// coloured on a diverging blue-black-red ramp scaled to the largest
// absolute value. Non-finite cells are drawn in yellow.
func SliceToSVG(vals []float64, nx, ny int, scale float64) string {
	if nx == 0 || ny == 0 || len(vals) < nx*ny {
		return ""
	}

	peak := 0.0
	for _, v := range vals[:nx*ny] {
		if a := math.Abs(v); a > peak && !math.IsInf(a, 0) {
			peak = a
		}
	}

	width := float64(nx) * scale
	height := float64(ny) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#000000"/>
`, width, height, width, height))

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := vals[i+nx*j]
			if v == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(i)*scale, float64(j)*scale, scale, scale, cellColor(v, peak)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func cellColor(v, peak float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "#ffff00"
	}
	level := 0
	if peak > 0 {
		level = int(math.Round(math.Min(math.Abs(v)/peak, 1) * 255))
	}
	if v > 0 {
		return fmt.Sprintf("#%02x0000", level)
	}
	return fmt.Sprintf("#0000%02x", level)
}

// SeriesToSVG draws values against times as a polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := 0; i < n; i++ {
		minX = math.Min(minX, times[i])
		maxX = math.Max(maxX, times[i])
		minY = math.Min(minY, values[i])
		maxY = math.Max(maxY, values[i])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := 0; i < n; i++ {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
