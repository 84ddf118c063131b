package widgets

import (
	"strconv"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// TabBar is a horizontal tab navigation widget. Each tab may carry a count
// badge rendered after its label.
type TabBar struct {
	labels []string
	badges []int
	active int
	// Alert marks tabs whose non-zero badge is highlighted.
	Alert map[int]bool
}

// NewTabBar creates a TabBar with the given labels. Active defaults to 0.
func NewTabBar(labels []string) *TabBar {
	return &TabBar{labels: labels, badges: make([]int, len(labels))}
}

// Active returns the currently active tab index.
func (tb *TabBar) Active() int {
	return tb.active
}

// SetActive sets the active tab index. Out-of-range values are ignored.
func (tb *TabBar) SetActive(i int) {
	if i >= 0 && i < len(tb.labels) {
		tb.active = i
	}
}

// Next advances to the next tab, wrapping around.
func (tb *TabBar) Next() {
	tb.active = (tb.active + 1) % len(tb.labels)
}

// Prev moves to the previous tab, wrapping around.
func (tb *TabBar) Prev() {
	tb.active = (tb.active - 1 + len(tb.labels)) % len(tb.labels)
}

// SetBadge sets the count shown next to tab i. Negative counts hide the badge.
func (tb *TabBar) SetBadge(i, n int) {
	if i >= 0 && i < len(tb.badges) {
		tb.badges[i] = n
	}
}

// Badge returns the count shown next to tab i.
func (tb *TabBar) Badge(i int) int {
	if i < 0 || i >= len(tb.badges) {
		return 0
	}
	return tb.badges[i]
}

// Draw renders the tab bar as a single row: " URGENT 3 | PENDING 0 | ... "
// The active tab is rendered with reverse video.
func (tb *TabBar) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, tb)

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

	for i, label := range tb.labels {
		if i > 0 {
			write(" | ", vaxis.Style{})
		}

		style := vaxis.Style{}
		if i == tb.active {
			style.Attribute |= vaxis.AttrReverse
		}
		write(" "+label, style)

		if n := tb.badges[i]; n >= 0 {
			badge := style
			badge.Attribute |= vaxis.AttrBold
			if n > 0 && tb.Alert[i] {
				badge.Foreground = vaxis.IndexColor(1)
			}
			write(" "+strconv.Itoa(n), badge)
		}
		write(" ", style)
	}

	return s, nil
}
