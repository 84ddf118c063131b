package views

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/deevus/orders-tui/widgets"
	"github.com/dustin/go-humanize"
)

// Fixed-width columns of the orders table. The client column takes the
// remaining width.
const (
	orderColIDWidth    = 10
	orderColItemsWidth = 6
	orderColTotalWidth = 12
	orderColAgeWidth   = 16
	orderColGap        = 2
	orderFixedWidth    = orderColIDWidth + orderColGap + orderColItemsWidth + orderColGap +
		orderColTotalWidth + orderColGap + orderColAgeWidth
)

func orderCols(totalWidth int) []widgets.TableColumn {
	clientWidth := max(totalWidth-orderFixedWidth-orderColGap, 12)
	return []widgets.TableColumn{
		{Width: orderColIDWidth},
		{Width: clientWidth},
		{Width: orderColItemsWidth, AlignRight: true},
		{Width: orderColTotalWidth, AlignRight: true},
		{Width: orderColAgeWidth, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	}
}

// OrdersView lists the orders of one dashboard tab. It is updated from the
// dashboard goroutine and drawn from the UI goroutine.
type OrdersView struct {
	title string
	now   func() time.Time

	mu     sync.Mutex
	orders []portal.Order
	err    error
	loaded bool

	list list.Dynamic
}

// NewOrdersView creates an empty view for the tab titled title.
func NewOrdersView(title string) *OrdersView {
	ov := &OrdersView{title: title, now: time.Now}
	ov.list.DrawCursor = true
	ov.list.Builder = ov.buildItem
	return ov
}

// SetOrders replaces the displayed orders and clears any error.
func (ov *OrdersView) SetOrders(orders []portal.Order) {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	ov.orders = slices.Clone(orders)
	ov.err = nil
	ov.loaded = true
}

// SetError shows err in place of the list.
func (ov *OrdersView) SetError(err error) {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	ov.err = err
}

// Orders returns the displayed orders.
func (ov *OrdersView) Orders() []portal.Order {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	return slices.Clone(ov.orders)
}

// Err returns the error being shown, if any.
func (ov *OrdersView) Err() error {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	return ov.err
}

// Loaded reports whether orders have been set at least once.
func (ov *OrdersView) Loaded() bool {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	return ov.loaded
}

// ItemCount returns the number of displayed orders.
func (ov *OrdersView) ItemCount() int {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	return len(ov.orders)
}

// orderCells formats one order as table cells.
func orderCells(o portal.Order, now time.Time) []string {
	client := o.ClientName
	if client == "" {
		client = "-"
	}
	age := ""
	if !o.CreatedAt.IsZero() {
		age = humanize.RelTime(o.CreatedAt, now, "ago", "from now")
	}
	return []string{
		"#" + string(o.ID),
		client,
		humanize.Comma(int64(o.ItemCount)),
		"$" + humanize.CommafWithDigits(o.Total, 2),
		age,
	}
}

// orderRow renders one order with columns sized to the draw width.
type orderRow struct {
	cells []string
}

func (r *orderRow) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	tbl := &widgets.Table{
		Columns: orderCols(int(ctx.Max.Width)),
		Rows:    [][]string{r.cells},
		Gap:     orderColGap,
	}
	return tbl.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
}

func (ov *OrdersView) buildItem(i uint, cursor uint) vxfw.Widget {
	ov.mu.Lock()
	defer ov.mu.Unlock()

	if int(i) >= len(ov.orders) {
		return nil
	}
	return &orderRow{cells: orderCells(ov.orders[i], ov.now())}
}

// Draw renders the order table, or the loading, error or empty state.
func (ov *OrdersView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	ov.mu.Lock()
	loaded, err, count := ov.loaded, ov.err, len(ov.orders)
	ov.mu.Unlock()

	switch {
	case err != nil:
		return drawMessage(ctx, ov,
			vaxis.Segment{Text: fmt.Sprintf("Failed to load %s orders: %v", ov.title, err), Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}},
			vaxis.Segment{Text: "  (r to retry)", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		)
	case !loaded:
		return drawLoadingState(ctx, ov)
	case count == 0:
		return drawMessage(ctx, ov, vaxis.Segment{Text: fmt.Sprintf("No %s orders", ov.title), Style: vaxis.Style{Attribute: vaxis.AttrDim}})
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, ov)

	header := &widgets.Table{
		Columns: orderCols(int(ctx.Max.Width)),
		Header:  []string{"ORDER", fmt.Sprintf("CLIENT (%d)", count), "ITEMS", "TOTAL", "PLACED"},
		Gap:     orderColGap,
	}
	headerSurf, err := header.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, headerSurf)

	if ctx.Max.Height > 1 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 1})
		listSurf, err := ov.list.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 1, listSurf)
	}

	return s, nil
}

// HandleEvent delegates to the list widget for navigation.
func (ov *OrdersView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	return ov.list.HandleEvent(ev, phase)
}
