package components

import (
	"strings"

	"quotawin/internal/ui/theme"
)

var heatRunes = []rune(" ▁▂▃▄▅▆▇█")

// HeatCell maps a usage percentage onto a block glyph. Values outside
// [0, 100] are clamped.
func HeatCell(pct float64) string {
	if pct <= 0 {
		return string(heatRunes[0])
	}
	if pct >= 100 {
		return string(heatRunes[len(heatRunes)-1])
	}
	idx := int(pct/100*float64(len(heatRunes)-1) + 0.5)
	if idx == 0 {
		idx = 1
	}
	return string(heatRunes[idx])
}

// HeatStrip renders 24 hourly cells. It stays unstyled so table cells can
// measure it.
func HeatStrip(byHour map[int]float64) string {
	var sb strings.Builder
	for hour := 0; hour < 24; hour++ {
		sb.WriteString(HeatCell(byHour[hour]))
	}
	return sb.String()
}

// HourRuler labels every sixth column of a HeatStrip.
func HourRuler() string {
	return theme.Muted.Render("0     6     12    18    ")
}
