package dashboard

import (
	"strings"

	"github.com/deevus/orders-tui/internal/portal"
)

// Tab identifies one order lane of the dashboard. Values are the lower-case
// UI keys; Status gives the upper-case wire form.
type Tab string

const (
	TabUrgent    Tab = "urgent"
	TabPending   Tab = "pending"
	TabConfirmed Tab = "confirmed"
	TabCancelled Tab = "cancelled"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabUrgent, TabPending, TabConfirmed, TabCancelled}

// IsValid returns whether the tab is one of the supported values.
func (t Tab) IsValid() bool {
	switch t {
	case TabUrgent, TabPending, TabConfirmed, TabCancelled:
		return true
	default:
		return false
	}
}

// Status returns the wire status for the tab.
func (t Tab) Status() string {
	return strings.ToUpper(string(t))
}

// Index returns the tab's display position, or -1 for an unknown tab.
func (t Tab) Index() int {
	for i, tab := range Tabs {
		if tab == t {
			return i
		}
	}
	return -1
}

// Label is the tab title shown in the tab bar.
func (t Tab) Label() string {
	return t.Status()
}

// ParseTab converts user or persisted input to a tab.
func ParseTab(raw string) (Tab, bool) {
	tab := Tab(strings.ToLower(strings.TrimSpace(raw)))
	return tab, tab.IsValid()
}

// TabForStatus maps a wire status to its tab. Unknown statuses report false.
func TabForStatus(status string) (Tab, bool) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case portal.StatusUrgent:
		return TabUrgent, true
	case portal.StatusPending:
		return TabPending, true
	case portal.StatusConfirmed:
		return TabConfirmed, true
	case portal.StatusCancelled:
		return TabCancelled, true
	default:
		return "", false
	}
}

// CountFor returns the badge count for tab from a counters snapshot.
// Confirmed orders are reported by the portal as completed.
func CountFor(c portal.Counters, tab Tab) int {
	switch tab {
	case TabUrgent:
		return c.Urgent
	case TabPending:
		return c.Pending
	case TabConfirmed:
		return c.Completed
	case TabCancelled:
		return c.Cancelled
	default:
		return 0
	}
}
