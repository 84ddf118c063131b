package views_test

import (
	"errors"
	"testing"

	"github.com/deevus/orders-tui/internal/portal"
	"github.com/deevus/orders-tui/views"
)

func TestOrdersView_New(t *testing.T) {
	ov := views.NewOrdersView("urgent")
	if ov.Loaded() {
		t.Error("expected not loaded before SetOrders")
	}
	if ov.ItemCount() != 0 {
		t.Errorf("expected 0 items, got %d", ov.ItemCount())
	}
}

func TestOrdersView_SetOrders(t *testing.T) {
	ov := views.NewOrdersView("pending")
	in := []portal.Order{
		{ID: "2", ClientName: "Bistro", ItemCount: 3, Total: 1250.5},
		{ID: "1", ClientName: "Deli"},
	}
	ov.SetOrders(in)
	in[0].ID = "mutated"

	if !ov.Loaded() {
		t.Error("expected loaded")
	}
	got := ov.Orders()
	if len(got) != 2 || got[0].ID != "2" {
		t.Errorf("unexpected orders %+v", got)
	}
}

func TestOrdersView_ErrorClearedBySetOrders(t *testing.T) {
	ov := views.NewOrdersView("pending")
	ov.SetError(errors.New("timeout"))
	if ov.Err() == nil {
		t.Fatal("expected error")
	}
	ov.SetOrders(nil)
	if ov.Err() != nil {
		t.Errorf("expected error cleared, got %v", ov.Err())
	}
	if ov.ItemCount() != 0 {
		t.Errorf("expected empty list, got %d", ov.ItemCount())
	}
}

func TestOrdersView_Draw_States(t *testing.T) {
	ctx := testDrawContext(100, 20)

	loading := views.NewOrdersView("urgent")
	empty := views.NewOrdersView("urgent")
	empty.SetOrders(nil)
	failed := views.NewOrdersView("urgent")
	failed.SetError(errors.New("503"))
	full := views.NewOrdersView("urgent")
	full.SetOrders([]portal.Order{{ID: "7", ClientName: "Canteen", ItemCount: 1200, Total: 99.99}})

	for name, ov := range map[string]*views.OrdersView{
		"loading": loading,
		"empty":   empty,
		"error":   failed,
		"loaded":  full,
	} {
		t.Run(name, func(t *testing.T) {
			s, err := ov.Draw(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Size.Width != 100 || s.Size.Height != 20 {
				t.Errorf("expected 100x20 surface, got %dx%d", s.Size.Width, s.Size.Height)
			}
		})
	}
}

func TestOrdersView_Draw_SingleRow(t *testing.T) {
	ov := views.NewOrdersView("urgent")
	ov.SetOrders([]portal.Order{{ID: "7"}})
	if _, err := ov.Draw(testDrawContext(40, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
