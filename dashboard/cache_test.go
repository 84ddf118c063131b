package dashboard_test

import (
	"testing"

	"github.com/deevus/orders-tui/dashboard"
	"github.com/deevus/orders-tui/internal/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func o(id string) portal.Order {
	return portal.Order{ID: portal.OrderID(id)}
}

func orderIDs(orders []portal.Order) []portal.OrderID {
	out := make([]portal.OrderID, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestOrderCache_GetEmptyIsNotNil(t *testing.T) {
	c := dashboard.NewOrderCache()
	got := c.Get(dashboard.TabPending)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOrderCache_GetReturnsCopy(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabPending, []portal.Order{o("1")})

	got := c.Get(dashboard.TabPending)
	got[0].ID = "mutated"

	assert.Equal(t, []portal.OrderID{"1"}, orderIDs(c.Get(dashboard.TabPending)))
}

func TestOrderCache_RemoveIsIdempotent(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabPending, []portal.Order{o("1"), o("2")})

	assert.True(t, c.Remove(dashboard.TabPending, "1"))
	assert.False(t, c.Remove(dashboard.TabPending, "1"))
	assert.False(t, c.Remove(dashboard.TabCancelled, "404"))

	assert.Equal(t, []portal.OrderID{"2"}, orderIDs(c.Get(dashboard.TabPending)))
}

func TestOrderCache_InsertAtHead(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Insert(dashboard.TabUrgent, o("A"))
	c.Insert(dashboard.TabUrgent, o("B"))

	assert.Equal(t, []portal.OrderID{"B", "A"}, orderIDs(c.Get(dashboard.TabUrgent)))
}

func TestOrderCache_InsertKeepsMembershipExclusive(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabPending, []portal.Order{o("7"), o("8")})

	changed := c.Insert(dashboard.TabConfirmed, o("7"))

	assert.ElementsMatch(t, []dashboard.Tab{dashboard.TabConfirmed, dashboard.TabPending}, changed)
	assert.Equal(t, []portal.OrderID{"8"}, orderIDs(c.Get(dashboard.TabPending)))
	assert.Equal(t, []portal.OrderID{"7"}, orderIDs(c.Get(dashboard.TabConfirmed)))

	tab, ok := c.Locate("7")
	require.True(t, ok)
	assert.Equal(t, dashboard.TabConfirmed, tab)
}

func TestOrderCache_InsertReplaysSameTab(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Insert(dashboard.TabUrgent, o("1"))
	c.Insert(dashboard.TabUrgent, o("2"))

	changed := c.Insert(dashboard.TabUrgent, o("1"))

	assert.Equal(t, []dashboard.Tab{dashboard.TabUrgent}, changed)
	assert.Equal(t, []portal.OrderID{"1", "2"}, orderIDs(c.Get(dashboard.TabUrgent)))
}

func TestOrderCache_ReplaceDedupesAcrossTabs(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabUrgent, []portal.Order{o("1"), o("2")})
	c.Replace(dashboard.TabPending, []portal.Order{o("2"), o("3"), o("3")})

	assert.Equal(t, []portal.OrderID{"1"}, orderIDs(c.Get(dashboard.TabUrgent)))
	assert.Equal(t, []portal.OrderID{"2", "3"}, orderIDs(c.Get(dashboard.TabPending)))
}

func TestOrderCache_ReplaceWithEmptyList(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabCancelled, []portal.Order{o("1")})
	c.Replace(dashboard.TabCancelled, nil)

	assert.Empty(t, c.Get(dashboard.TabCancelled))
}

func TestOrderCache_Reset(t *testing.T) {
	c := dashboard.NewOrderCache()
	c.Replace(dashboard.TabUrgent, []portal.Order{o("1")})
	c.Reset()

	assert.Empty(t, c.Get(dashboard.TabUrgent))
	_, ok := c.Locate("1")
	assert.False(t, ok)
}
