package views_test

import (
	"testing"
	"time"

	"github.com/deevus/orders-tui/views"
)

func TestStatusBar_Connection(t *testing.T) {
	sb := views.NewStatusBar("q quit")
	if sb.Connected() {
		t.Error("expected disconnected initially")
	}
	sb.SetConnected(true)
	if !sb.Connected() {
		t.Error("expected connected")
	}
}

func TestStatusBar_Loading(t *testing.T) {
	sb := views.NewStatusBar("")
	sb.SetLoading(true)
	if !sb.Loading() {
		t.Error("expected loading")
	}
	sb.SetLoading(false)
	if sb.Loading() {
		t.Error("expected loading cleared")
	}
}

func TestStatusBar_ToastReplacesAndExpires(t *testing.T) {
	sb := views.NewStatusBar("")
	sb.TTL = time.Hour

	first := sb.Push(views.SeveritySuccess, "Dashboard refreshed")
	second := sb.Push(views.SeverityError, "Failed to refresh dashboard")

	got, ok := sb.Toast()
	if !ok || got.ID != second.ID || got.Message != "Failed to refresh dashboard" {
		t.Fatalf("expected second toast, got %+v %v", got, ok)
	}

	if sb.Expire(first.ID) {
		t.Error("expiring a replaced toast should do nothing")
	}
	if !sb.Expire(second.ID) {
		t.Error("expected current toast to expire")
	}
	if _, ok := sb.Toast(); ok {
		t.Error("expected no toast after expiry")
	}
}

func TestStatusBar_ToastPastTTLIsHidden(t *testing.T) {
	sb := views.NewStatusBar("")
	sb.TTL = -time.Second
	sb.Push(views.SeverityWarning, "Real-time connection lost, falling back to polling")
	if _, ok := sb.Toast(); ok {
		t.Error("expected expired toast to be hidden")
	}
}

func TestStatusBar_Draw(t *testing.T) {
	sb := views.NewStatusBar("q quit  r refresh")
	sb.SetConnected(false)
	sb.SetLoading(true)
	sb.Push(views.SeverityError, "Failed to load pending orders")

	for _, width := range []uint16{120, 10} {
		s, err := sb.Draw(testDrawContext(width, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Size.Height != 1 || s.Size.Width != width {
			t.Errorf("expected %dx1, got %dx%d", width, s.Size.Width, s.Size.Height)
		}
	}
}
