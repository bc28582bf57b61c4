package notification

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

type (
	// Notification is one entry in the shared operator feed.
	Notification struct {
		ID        int       `json:"id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Feed is the badge payload: what the header bell renders.
	Feed struct {
		UnreadCount int            `json:"unread_count"`
		LastID      int            `json:"last_id"`
		Latest      []Notification `json:"latest"`
	}
)

type QueryFilter struct {
	Search string `query:"search"`

	Pagination core.Pagination
}
