package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Block characters for sparkline rendering (8 levels).
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a 1-row history of counts using block characters. Bars
// are scaled from zero to the largest value in view.
type Sparkline struct {
	values []int
	head   int
	count  int
	// Color of the bars, cyan when unset.
	Color vaxis.Color
}

// NewSparkline creates a Sparkline keeping the last capacity values.
func NewSparkline(capacity int) *Sparkline {
	return &Sparkline{values: make([]int, max(capacity, 1))}
}

// Push appends a value, dropping the oldest one when full.
func (sl *Sparkline) Push(v int) {
	sl.values[sl.head] = v
	sl.head = (sl.head + 1) % len(sl.values)
	if sl.count < len(sl.values) {
		sl.count++
	}
}

// Count returns the number of values currently stored.
func (sl *Sparkline) Count() int {
	return sl.count
}

// Last returns the most recent value, or 0 if empty.
func (sl *Sparkline) Last() int {
	if sl.count == 0 {
		return 0
	}
	return sl.values[(sl.head-1+len(sl.values))%len(sl.values)]
}

// Values returns the stored values oldest first.
func (sl *Sparkline) Values() []int {
	out := make([]int, sl.count)
	start := (sl.head - sl.count + len(sl.values)) % len(sl.values)
	for i := range sl.count {
		out[i] = sl.values[(start+i)%len(sl.values)]
	}
	return out
}

// Draw renders the sparkline as a single row, newest value rightmost.
func (sl *Sparkline) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, sl)

	vals := sl.Values()
	if len(vals) == 0 {
		return s, nil
	}
	if width := int(ctx.Max.Width); len(vals) > width {
		vals = vals[len(vals)-width:]
	}

	peak := 0
	for _, v := range vals {
		peak = max(peak, v)
	}

	color := sl.Color
	if color == 0 {
		color = vaxis.IndexColor(6)
	}
	for i, v := range vals {
		level := 0
		if peak > 0 && v > 0 {
			level = max(min(v*7/peak, 7), 1)
		}
		for _, c := range ctx.Characters(string(sparkBlocks[level])) {
			s.WriteCell(uint16(i), 0, vaxis.Cell{
				Character: c,
				Style:     vaxis.Style{Foreground: color},
			})
		}
	}

	return s, nil
}
