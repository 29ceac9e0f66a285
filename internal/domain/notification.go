package domain

import "time"

// Notification is an append-only message shown to a user. Rows are never
// mutated after insert.
type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationType tags billing notifications; plain notifications carry an
// empty type.
type NotificationType string

const (
	NotificationPlain     NotificationType = ""
	NotificationWarning   NotificationType = "warning"
	NotificationDeduction NotificationType = "deduction"
	NotificationDowngrade NotificationType = "downgrade"
)
