package views

import (
	"sync"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/dustin/go-humanize"
)

// DefaultToastTTL is how long a toast stays on the status line.
const DefaultToastTTL = 4 * time.Second

// Severity of a toast.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) color() vaxis.Color {
	switch s {
	case SeverityWarning:
		return vaxis.IndexColor(3)
	case SeverityError:
		return vaxis.IndexColor(1)
	default:
		return vaxis.IndexColor(2)
	}
}

// Toast is a transient message on the status line.
type Toast struct {
	ID       uint64
	Severity Severity
	Message  string
	Expires  time.Time
}

// StatusBar is the bottom line: connection state, loading indicator and the
// latest toast.
type StatusBar struct {
	TTL  time.Duration
	Hint string
	now  func() time.Time

	mu        sync.Mutex
	connected bool
	since     time.Time
	loading   bool
	toast     *Toast
	nextID    uint64
}

// NewStatusBar creates a status bar that shows hint on the right.
func NewStatusBar(hint string) *StatusBar {
	return &StatusBar{TTL: DefaultToastTTL, Hint: hint, now: time.Now}
}

// SetConnected records the push channel state.
func (sb *StatusBar) SetConnected(connected bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if connected != sb.connected || sb.since.IsZero() {
		sb.since = sb.now()
	}
	sb.connected = connected
}

// Connected reports the last recorded push channel state.
func (sb *StatusBar) Connected() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.connected
}

// SetLoading turns the loading indicator on or off.
func (sb *StatusBar) SetLoading(on bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.loading = on
}

// Loading reports whether the loading indicator is on.
func (sb *StatusBar) Loading() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.loading
}

// Push shows a toast, replacing the current one, and returns it.
func (sb *StatusBar) Push(sev Severity, msg string) Toast {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.nextID++
	t := Toast{ID: sb.nextID, Severity: sev, Message: msg, Expires: sb.now().Add(sb.TTL)}
	sb.toast = &t
	return t
}

// Expire removes the toast with id if it is still shown.
func (sb *StatusBar) Expire(id uint64) bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.toast == nil || sb.toast.ID != id {
		return false
	}
	sb.toast = nil
	return true
}

// Toast returns the toast being shown, if it has not expired.
func (sb *StatusBar) Toast() (Toast, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.current()
}

func (sb *StatusBar) current() (Toast, bool) {
	if sb.toast == nil || !sb.now().Before(sb.toast.Expires) {
		return Toast{}, false
	}
	return *sb.toast, true
}

func (sb *StatusBar) segments() []vaxis.Segment {
	var segs []vaxis.Segment
	if sb.connected {
		segs = append(segs, vaxis.Segment{Text: " ● LIVE", Style: vaxis.Style{Foreground: vaxis.IndexColor(2), Attribute: vaxis.AttrBold}})
	} else {
		segs = append(segs, vaxis.Segment{Text: " ● POLLING", Style: vaxis.Style{Foreground: vaxis.IndexColor(3), Attribute: vaxis.AttrBold}})
	}
	if !sb.since.IsZero() {
		segs = append(segs, vaxis.Segment{Text: " since " + humanize.RelTime(sb.since, sb.now(), "ago", ""), Style: vaxis.Style{Attribute: vaxis.AttrDim}})
	}
	if sb.loading {
		segs = append(segs, vaxis.Segment{Text: "  Refreshing...", Style: vaxis.Style{Foreground: vaxis.IndexColor(6)}})
	}
	if t, ok := sb.current(); ok {
		segs = append(segs, vaxis.Segment{Text: "  " + t.Message, Style: vaxis.Style{Foreground: t.Severity.color()}})
	}
	return segs
}

// Draw renders the status line.
func (sb *StatusBar) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	sb.mu.Lock()
	segs := sb.segments()
	hint := sb.Hint
	sb.mu.Unlock()

	s := vxfw.NewSurface(ctx.Max.Width, 1, sb)
	rowCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})

	left, err := richtext.New(segs).Draw(rowCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, left)

	if hint != "" {
		leftWidth := 0
		for _, seg := range segs {
			leftWidth += textWidth(ctx, seg.Text)
		}
		if col := int(ctx.Max.Width) - textWidth(ctx, hint) - 1; col > leftWidth {
			right, err := richtext.New([]vaxis.Segment{{Text: hint, Style: vaxis.Style{Attribute: vaxis.AttrDim}}}).Draw(rowCtx)
			if err != nil {
				return vxfw.Surface{}, err
			}
			s.AddChild(col, 0, right)
		}
	}

	return s, nil
}

func textWidth(ctx vxfw.DrawContext, s string) int {
	w := 0
	for _, ch := range ctx.Characters(s) {
		w += ch.Width
	}
	return w
}
