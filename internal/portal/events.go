package portal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Push message types carried in Envelope.Type.
const (
	MessageCountersUpdate = "counters_update"
	MessageOrderUpdate    = "order_update"
	MessageNewOrder       = "new_order"
	MessagePing           = "ping"
	MessagePong           = "pong"
)

// Envelope wraps every message on the push channel.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Event is one item of the ordered push event stream.
type Event interface {
	eventKind() string
}

// CountersChanged carries a full counters snapshot.
type CountersChanged struct {
	Counters Counters
}

// OrderChanged reports an order moving between statuses. PreviousStatus and
// NewStatus are empty when the portal omits them; Order may be nil.
type OrderChanged struct {
	OrderID        OrderID `json:"orderId"`
	PreviousStatus string  `json:"previousStatus,omitempty"`
	NewStatus      string  `json:"newStatus,omitempty"`
	Order          *Order  `json:"orderData,omitempty"`
}

// OrderCreated reports a newly placed order.
type OrderCreated struct {
	OrderID OrderID `json:"orderId"`
	Order   Order   `json:"orderData"`
}

// ConnectionChanged is synthesized by the client when the push channel
// connects or drops.
type ConnectionChanged struct {
	Connected bool
}

func (CountersChanged) eventKind() string   { return MessageCountersUpdate }
func (OrderChanged) eventKind() string      { return MessageOrderUpdate }
func (OrderCreated) eventKind() string      { return MessageNewOrder }
func (ConnectionChanged) eventKind() string { return "connection" }

// DecodeEvent converts an envelope into a typed event. ok is false for
// heartbeat and unknown message types. Malformed order data does not fail an
// order event: OrderChanged carries a nil Order and OrderCreated an order
// holding only the id.
func DecodeEvent(env Envelope) (ev Event, ok bool, err error) {
	switch env.Type {
	case MessageCountersUpdate:
		var c Counters
		if err := decodePayload(env.Payload, &c); err != nil {
			return nil, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		return CountersChanged{Counters: c.Clamp()}, true, nil
	case MessageOrderUpdate:
		f, err := payloadFields(env.Payload)
		if err != nil {
			return nil, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		oc := OrderChanged{
			PreviousStatus: strings.ToUpper(f.String("previousStatus")),
			NewStatus:      strings.ToUpper(f.String("newStatus")),
			Order:          orderData(f),
		}
		oc.OrderID, _ = f.ID("orderId")
		if oc.OrderID == "" && oc.Order != nil {
			oc.OrderID = oc.Order.ID
		}
		if oc.OrderID == "" {
			return nil, false, fmt.Errorf("decoding %s: missing order id", env.Type)
		}
		return oc, true, nil
	case MessageNewOrder:
		f, err := payloadFields(env.Payload)
		if err != nil {
			return nil, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		var nc OrderCreated
		nc.OrderID, _ = f.ID("orderId")
		if o := orderData(f); o != nil {
			nc.Order = *o
		}
		if nc.Order.ID == "" {
			nc.Order.ID = nc.OrderID
		}
		if nc.OrderID == "" {
			nc.OrderID = nc.Order.ID
		}
		return nc, true, nil
	default:
		return nil, false, nil
	}
}

// orderData decodes the optional orderData object, or returns nil when it is
// missing or unusable.
func orderData(f fields) *Order {
	nested, ok := f.Object("orderData")
	if !ok {
		return nil
	}
	var o Order
	if err := o.fromFields(nested); err != nil {
		return nil
	}
	return &o
}

func payloadFields(raw json.RawMessage) (fields, error) {
	if len(raw) == 0 {
		return fields{}, nil
	}
	return decodeFields(raw)
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Subscription delivers a stream of values on C until Close is called.
type Subscription[T any] struct {
	C       <-chan T
	closeFn func()
	once    sync.Once
}

// NewSubscription wraps ch; closeFn runs once on Close.
func NewSubscription[T any](ch <-chan T, closeFn func()) *Subscription[T] {
	return &Subscription[T]{C: ch, closeFn: closeFn}
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.closeFn()
		}
	})
}
