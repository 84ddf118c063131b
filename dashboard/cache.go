package dashboard

import "github.com/deevus/orders-tui/internal/portal"

// OrderCache holds the newest-first order list of every tab. An order id is
// kept in at most one tab. OrderCache is not safe for concurrent use; the
// Manager's owner goroutine is its only user.
type OrderCache struct {
	tabs map[Tab][]portal.Order
}

// NewOrderCache returns an empty cache.
func NewOrderCache() *OrderCache {
	return &OrderCache{tabs: make(map[Tab][]portal.Order)}
}

// Get returns a copy of the tab's orders. The result is never nil.
func (c *OrderCache) Get(tab Tab) []portal.Order {
	orders := c.tabs[tab]
	out := make([]portal.Order, len(orders))
	copy(out, orders)
	return out
}

// Replace stores a fresh list for tab. Ids in the list are removed from every
// other tab so membership stays exclusive.
func (c *OrderCache) Replace(tab Tab, orders []portal.Order) {
	ids := make(map[portal.OrderID]struct{}, len(orders))
	fresh := make([]portal.Order, 0, len(orders))
	for _, o := range orders {
		if _, dup := ids[o.ID]; dup {
			continue
		}
		ids[o.ID] = struct{}{}
		fresh = append(fresh, o)
	}
	for other := range c.tabs {
		if other == tab {
			continue
		}
		c.tabs[other] = filterOut(c.tabs[other], ids)
	}
	c.tabs[tab] = fresh
}

// Remove drops id from tab. Absent ids are ignored. Reports whether anything
// was removed.
func (c *OrderCache) Remove(tab Tab, id portal.OrderID) bool {
	orders := c.tabs[tab]
	kept := filterOut(orders, map[portal.OrderID]struct{}{id: {}})
	if len(kept) == len(orders) {
		return false
	}
	c.tabs[tab] = kept
	return true
}

// Insert places order at the head of tab, first removing any copy of the same
// id from every tab. Returns the tabs whose contents changed.
func (c *OrderCache) Insert(tab Tab, order portal.Order) []Tab {
	changed := []Tab{tab}
	for _, other := range Tabs {
		if c.Remove(other, order.ID) && other != tab {
			changed = append(changed, other)
		}
	}
	orders := c.tabs[tab]
	next := make([]portal.Order, 0, len(orders)+1)
	next = append(next, order)
	next = append(next, orders...)
	c.tabs[tab] = next
	return changed
}

// Locate returns the tab holding id.
func (c *OrderCache) Locate(id portal.OrderID) (Tab, bool) {
	for _, tab := range Tabs {
		for _, o := range c.tabs[tab] {
			if o.ID == id {
				return tab, true
			}
		}
	}
	return "", false
}

// Reset empties every tab.
func (c *OrderCache) Reset() {
	c.tabs = make(map[Tab][]portal.Order)
}

func filterOut(orders []portal.Order, ids map[portal.OrderID]struct{}) []portal.Order {
	out := orders[:0:0]
	for _, o := range orders {
		if _, drop := ids[o.ID]; drop {
			continue
		}
		out = append(out, o)
	}
	return out
}
