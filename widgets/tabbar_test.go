package widgets_test

import (
	"strings"
	"testing"

	"git.sr.ht/~rockorager/vaxis"
	"github.com/deevus/orders-tui/widgets"
)

func rowText(cells []vaxis.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if c.Character.Grapheme == "" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(c.Character.Grapheme)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestTabBar_Labels(t *testing.T) {
	tb := widgets.NewTabBar([]string{"URGENT", "PENDING", "CONFIRMED", "CANCELLED"})
	if tb.Active() != 0 {
		t.Errorf("expected initial active=0, got %d", tb.Active())
	}
}

func TestTabBar_Next(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.Next()
	tb.Next()
	if tb.Active() != 2 {
		t.Errorf("expected active=2, got %d", tb.Active())
	}
	tb.Next()
	if tb.Active() != 0 {
		t.Errorf("expected active=0 after wrap, got %d", tb.Active())
	}
}

func TestTabBar_Prev(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.Prev()
	if tb.Active() != 2 {
		t.Errorf("expected active=2 after backward wrap, got %d", tb.Active())
	}
}

func TestTabBar_SetActive_OutOfRange(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.SetActive(2)
	tb.SetActive(5)
	tb.SetActive(-1)
	if tb.Active() != 2 {
		t.Errorf("expected active=2, got %d", tb.Active())
	}
}

func TestTabBar_Badges(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B"})
	tb.SetBadge(1, 7)
	tb.SetBadge(9, 3)

	if tb.Badge(1) != 7 {
		t.Errorf("expected badge=7, got %d", tb.Badge(1))
	}
	if tb.Badge(9) != 0 {
		t.Errorf("expected out-of-range badge=0, got %d", tb.Badge(9))
	}
}

func TestTabBar_Draw(t *testing.T) {
	tb := widgets.NewTabBar([]string{"URGENT", "PENDING"})
	tb.SetBadge(0, 3)
	tb.SetBadge(1, -1)

	s, err := tb.Draw(testDrawContext(40, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Height != 1 || s.Size.Width != 40 {
		t.Fatalf("expected 40x1 surface, got %dx%d", s.Size.Width, s.Size.Height)
	}

	got := rowText(s.Buffer)
	if got != " URGENT 3 |  PENDING" {
		t.Errorf("unexpected row %q", got)
	}
	if s.Buffer[1].Style.Attribute&vaxis.AttrReverse == 0 {
		t.Error("expected active tab in reverse video")
	}
}

func TestTabBar_Draw_Truncates(t *testing.T) {
	tb := widgets.NewTabBar([]string{"URGENT", "PENDING", "CONFIRMED"})
	s, err := tb.Draw(testDrawContext(10, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Buffer) != 10 {
		t.Errorf("expected 10 cells, got %d", len(s.Buffer))
	}
}
