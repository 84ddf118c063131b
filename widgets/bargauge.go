package widgets

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// BarGauge is a horizontal gauge showing a count against a total.
//
//	URG  [████████░░░░░░░░░░░░]    12  30%
type BarGauge struct {
	Label    string // 4-char left column, e.g. "URG", "PEND"
	Count    int
	Total    int         // the bar is empty when Total is zero
	Color    vaxis.Color // fill color, green when unset
	BarWidth int         // character width of the bar, excluding brackets
}

const (
	barFilled = '█' // U+2588
	barEmpty  = '░' // U+2591
)

// Ratio returns Count/Total clamped to [0, 1].
func (bg *BarGauge) Ratio() float64 {
	if bg.Total <= 0 || bg.Count <= 0 {
		return 0
	}
	r := float64(bg.Count) / float64(bg.Total)
	return min(r, 1)
}

// Draw renders the gauge as a single row.
func (bg *BarGauge) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, bg)

	col := uint16(0)
	write := func(text string, style vaxis.Style) {
		for _, ch := range ctx.Characters(text) {
			if col+uint16(ch.Width) > ctx.Max.Width {
				return
			}
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
	}

	write(fmt.Sprintf("%-4s ", bg.Label), vaxis.Style{Attribute: vaxis.AttrBold})
	write("[", vaxis.Style{})

	color := bg.Color
	if color == 0 {
		color = vaxis.IndexColor(2)
	}
	ratio := bg.Ratio()
	filled := int(ratio * float64(bg.BarWidth))
	for i := range bg.BarWidth {
		if i < filled {
			write(string(barFilled), vaxis.Style{Foreground: color})
		} else {
			write(string(barEmpty), vaxis.Style{Foreground: vaxis.IndexColor(8)})
		}
	}

	write(fmt.Sprintf("] %5d", max(bg.Count, 0)), vaxis.Style{})
	write(fmt.Sprintf("  %3.0f%%", ratio*100), vaxis.Style{Attribute: vaxis.AttrDim})

	return s, nil
}
