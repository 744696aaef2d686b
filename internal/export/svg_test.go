package export

import (
	"math"
	"strings"
	"testing"
)

func TestSliceToSVG(t *testing.T) {
	vals := []float64{
		0, 1,
		-0.5, math.NaN(),
	}
	svg := SliceToSVG(vals, 2, 2, 10)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %q", svg)
	}
	if got := strings.Count(svg, "<rect x="); got != 3 {
		t.Errorf("%d cells drawn, want 3", got)
	}
	for _, want := range []string{`fill="#ff0000"`, `fill="#000080"`, `fill="#ffff00"`, `width="20"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}
}

func TestSliceToSVGShort(t *testing.T) {
	if SliceToSVG([]float64{1}, 2, 2, 1) != "" {
		t.Error("expected empty output for a short plane")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{1, 1, 1}, 100, 50, "#00ff00")
	if !strings.Contains(svg, "M0.0,") || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke colour missing")
	}
	if SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}
}
