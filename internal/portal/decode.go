package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// fields is a decoded JSON object whose values are converted one at a time,
// so a malformed display field defaults instead of failing the whole payload.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f == nil {
		f = fields{}
	}
	return f, nil
}

// value returns the field as a plain Go value, with numbers kept as json.Number.
func (f fields) value(key string) (any, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// String accepts strings and numbers; anything else is empty.
func (f fields) String(key string) string {
	v, _ := f.value(key)
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Float accepts numbers and numeric strings; anything else is zero.
func (f fields) Float(key string) float64 {
	v, _ := f.value(key)
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0
	}
	n, err := cast.ToFloat64E(s)
	if err != nil {
		return 0
	}
	return n
}

// Int is Float truncated toward zero.
func (f fields) Int(key string) int {
	return int(f.Float(key))
}

// Time accepts RFC 3339, zoneless ISO 8601 (read as local time) and epoch
// seconds or milliseconds. Anything else is the zero time.
func (f fields) Time(key string) time.Time {
	v, ok := f.value(key)
	if !ok {
		return time.Time{}
	}
	switch v := v.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n <= 0 {
			return time.Time{}
		}
		if n > 1e11 {
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	case string:
		t, err := cast.ToTimeInDefaultLocationE(strings.TrimSpace(v), time.Local)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// ID decodes an order id, reporting false when the field is missing or is
// neither a string nor a number.
func (f fields) ID(key string) (OrderID, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	var id OrderID
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Object returns the nested object at key, or false when it is missing,
// null or not an object.
func (f fields) Object(key string) (fields, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	nested, err := decodeFields(raw)
	if err != nil {
		return nil, false
	}
	return nested, true
}

// UnmarshalJSON decodes an order, defaulting malformed display fields. Only a
// payload that is not an object, or an id of the wrong type, is an error.
func (o *Order) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("order: %w", err)
	}
	return o.fromFields(f)
}

func (o *Order) fromFields(f fields) error {
	var id OrderID
	if raw, ok := f["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("order: %w", err)
		}
	}
	*o = Order{
		ID:         id,
		Status:     strings.ToUpper(f.String("status")),
		ClientName: f.String("clientName"),
		ItemCount:  f.Int("itemCount"),
		Total:      f.Float("total"),
		CreatedAt:  f.Time("createdAt"),
	}
	return nil
}

// UnmarshalJSON decodes counts given as numbers or numeric strings. Missing
// or malformed counts are zero.
func (c *Counters) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("counters: %w", err)
	}
	*c = Counters{
		Urgent:    f.Int("urgentCount"),
		Pending:   f.Int("pendingCount"),
		Completed: f.Int("completedCount"),
		Cancelled: f.Int("cancelledCount"),
	}
	return nil
}

// UnmarshalJSON decodes the daily figures with the same tolerance as Counters.
func (d *DailyStats) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("daily stats: %w", err)
	}
	*d = DailyStats{
		OrdersToday:   f.Int("ordersToday"),
		RevenueToday:  f.Float("revenueToday"),
		AverageTicket: f.Float("averageTicket"),
		ItemsShipped:  f.Int("itemsShipped"),
	}
	return nil
}

// UnmarshalJSON decodes the counters and daily figures from the same object.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	if err := d.Counters.UnmarshalJSON(data); err != nil {
		return err
	}
	return d.DailyStats.UnmarshalJSON(data)
}

// UnmarshalJSON decodes a push envelope. A malformed timestamp is the zero time.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	*e = Envelope{
		Type:      f.String("type"),
		Payload:   f["payload"],
		Timestamp: f.Time("timestamp"),
	}
	return nil
}
