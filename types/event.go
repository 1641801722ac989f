package types

import "time"

// Event names published on the event bus.
const (
	EventBlogCreated    = "blog.created"
	EventBlogDeleted    = "blog.deleted"
	EventUserRegistered = "user.registered"
)

// Event is the JSON payload of a domain event.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	BlogID     int         `json:"blog_id,omitempty"`
	User       *PublicUser `json:"user,omitempty"`
	Blog       *BlogPost   `json:"blog,omitempty"`
}
