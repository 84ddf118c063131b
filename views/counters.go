package views

import (
	"sync"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/deevus/orders-tui/widgets"
	"github.com/dustin/go-humanize"
)

const (
	counterBarWidth = 20
	// gaugeWidth is the drawn width of a BarGauge: label, bar, count, ratio.
	gaugeWidth = 5 + 1 + counterBarWidth + 7 + 6
)

// CountersView shows the per-status gauges, the urgent history and the
// daily figures. Height rows are needed to draw it in full.
type CountersView struct {
	mu          sync.Mutex
	counters    portal.Counters
	stats       portal.DailyStats
	hasCounters bool
	hasStats    bool
	urgentSpark *widgets.Sparkline
}

// NewCountersView creates a CountersView remembering historyLen urgent counts.
func NewCountersView(historyLen int) *CountersView {
	return &CountersView{urgentSpark: widgets.NewSparkline(historyLen)}
}

// Height is the number of rows Draw uses.
func (cv *CountersView) Height() uint16 {
	// 4 gauges, a blank row, the stats header and 4 stats rows.
	return 10
}

// SetCounters replaces the displayed counters and records the urgent count.
func (cv *CountersView) SetCounters(c portal.Counters) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	cv.counters = c
	cv.hasCounters = true
	cv.urgentSpark.Push(c.Urgent)
}

// SetDailyStats replaces the displayed daily figures.
func (cv *CountersView) SetDailyStats(d portal.DailyStats) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	cv.stats = d
	cv.hasStats = true
}

// Counters returns the displayed counters.
func (cv *CountersView) Counters() portal.Counters {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.counters
}

// UrgentHistory returns the recorded urgent counts, oldest first.
func (cv *CountersView) UrgentHistory() []int {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.urgentSpark.Values()
}

func (cv *CountersView) statsTable() *widgets.Table {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 16},
			{Width: 14, AlignRight: true, Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		},
		Header:      []string{"TODAY", ""},
		Gap:         2,
		Placeholder: "Daily stats unavailable",
	}
	if cv.hasStats {
		tbl.Rows = [][]string{
			{"Orders", humanize.Comma(int64(cv.stats.OrdersToday))},
			{"Revenue", "$" + humanize.CommafWithDigits(cv.stats.RevenueToday, 2)},
			{"Average ticket", "$" + humanize.CommafWithDigits(cv.stats.AverageTicket, 2)},
			{"Items shipped", humanize.Comma(int64(cv.stats.ItemsShipped))},
		}
	}
	return tbl
}

// Draw renders the counters panel.
func (cv *CountersView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	if !cv.hasCounters {
		return drawLoadingState(ctx, cv)
	}

	s := vxfw.NewSurface(ctx.Max.Width, min(cv.Height(), ctx.Max.Height), cv)
	rowCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})
	c := cv.counters
	total := c.Total()

	gauges := []*widgets.BarGauge{
		{Label: "URG", Count: c.Urgent, Color: vaxis.IndexColor(1)},
		{Label: "PEND", Count: c.Pending, Color: vaxis.IndexColor(3)},
		{Label: "DONE", Count: c.Completed, Color: vaxis.IndexColor(2)},
		{Label: "CANC", Count: c.Cancelled, Color: vaxis.IndexColor(8)},
	}
	row := uint16(0)
	for _, g := range gauges {
		if row >= s.Size.Height {
			return s, nil
		}
		g.Total = total
		g.BarWidth = counterBarWidth
		surf, err := g.Draw(rowCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(row), surf)
		row++
	}

	// Urgent history next to the urgent gauge.
	if sparkWidth := int(ctx.Max.Width) - gaugeWidth - 2; sparkWidth > 0 && cv.urgentSpark.Count() > 0 {
		sparkSurf, err := cv.urgentSpark.Draw(ctx.WithMax(vxfw.Size{Width: uint16(sparkWidth), Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(gaugeWidth+2, 0, sparkSurf)
	}

	row++
	if row < s.Size.Height {
		statsSurf, err := cv.statsTable().Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: s.Size.Height - row}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(row), statsSurf)
	}

	return s, nil
}
