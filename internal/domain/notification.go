package domain

import "time"

// NotificationData is the payload of one notification record.
type NotificationData struct {
	Message string `json:"message"`
	OrderID *int64 `json:"order_id,omitempty"`
}

// NotificationRecord is one entry of the realtime per-user feed, keyed by the
// backend-assigned id. ReadAt is the only field the client mutates in place.
type NotificationRecord struct {
	ID        string           `json:"id"`
	Data      NotificationData `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// Unread reports whether the record lacks a read timestamp.
func (n NotificationRecord) Unread() bool {
	return n.ReadAt == nil
}

// NotificationSnapshot is the wire shape of one feed push: the entire current
// collection for the user as a mapping of record id to record, never a delta.
// The client converts it to an ordered list itself.
type NotificationSnapshot map[string]NotificationRecord
