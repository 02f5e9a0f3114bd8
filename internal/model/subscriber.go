package model

import "time"

// Subscriber statuses.
const (
	SubscriberStatusActive       = "active"
	SubscriberStatusUnsubscribed = "unsubscribed"
	SubscriberStatusBounced      = "bounced"
)

// Subscriber is a newsletter list member. Emails are stored lowercased and
// unique; unsubscribed and bounced addresses are reactivated in place rather
// than duplicated.
type Subscriber struct {
	ID             int64      `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Status         string     `json:"status" db:"status"`
	Source         string     `json:"source" db:"source"`
	SubscribedAt   time.Time  `json:"subscribedAt" db:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty" db:"unsubscribed_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// SubscriberStats summarizes the newsletter list by status.
type SubscriberStats struct {
	Total        int64 `json:"total" db:"total"`
	Active       int64 `json:"active" db:"active"`
	Unsubscribed int64 `json:"unsubscribed" db:"unsubscribed"`
	Bounced      int64 `json:"bounced" db:"bounced"`
}
