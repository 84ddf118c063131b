package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Order statuses as the portal sends them on the wire.
const (
	StatusUrgent    = "URGENT"
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// OrderID identifies an order. The portal emits ids as JSON numbers from the
// REST API and as strings from the push channel, so both are accepted.
type OrderID string

// UnmarshalJSON accepts a JSON string or number.
func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = OrderID(n.String())
	return nil
}

// Order is one catering/warehouse order as listed by the portal. Status is
// upper-cased on decode.
type Order struct {
	ID         OrderID   `json:"id"`
	Status     string    `json:"status"`
	ClientName string    `json:"clientName,omitempty"`
	ItemCount  int       `json:"itemCount,omitempty"`
	Total      float64   `json:"total,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Counters is one snapshot of the per-status order counts.
// Fields absent from a payload decode as zero.
type Counters struct {
	Urgent    int `json:"urgentCount"`
	Pending   int `json:"pendingCount"`
	Completed int `json:"completedCount"`
	Cancelled int `json:"cancelledCount"`
}

// Clamp returns a copy with negative counts replaced by zero.
func (c Counters) Clamp() Counters {
	return Counters{
		Urgent:    max(c.Urgent, 0),
		Pending:   max(c.Pending, 0),
		Completed: max(c.Completed, 0),
		Cancelled: max(c.Cancelled, 0),
	}
}

// Total returns the sum of all counts.
func (c Counters) Total() int {
	return c.Urgent + c.Pending + c.Completed + c.Cancelled
}

// DailyStats holds the dashboard's per-day figures.
type DailyStats struct {
	OrdersToday   int     `json:"ordersToday"`
	RevenueToday  float64 `json:"revenueToday"`
	AverageTicket float64 `json:"averageTicket"`
	ItemsShipped  int     `json:"itemsShipped"`
}

// Dashboard is the full dashboard snapshot.
type Dashboard struct {
	Counters
	DailyStats
}

// envelopeHeader is the common part of every REST response body. The
// payload fields sit next to it in the same object.
type envelopeHeader struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ordersResponse struct {
	Orders []json.RawMessage `json:"orders"`
}
