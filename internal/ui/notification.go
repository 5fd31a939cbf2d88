package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationType selects the toast styling.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyWarning NotificationType = "warning"
	NotifyInfo    NotificationType = "info"
)

// MaxNotifications is how many toasts are visible at once.
const MaxNotifications = 5

// DefaultNotificationDuration matches the toast auto-dismiss delay.
const DefaultNotificationDuration = 5 * time.Second

var notificationIcons = map[NotificationType]string{
	NotifySuccess: "✓",
	NotifyError:   "✕",
	NotifyWarning: "⚠",
	NotifyInfo:    "ℹ",
}

// Notification is one toast.
type Notification struct {
	ID       string
	Title    string
	Message  string
	Type     NotificationType
	Duration time.Duration
	Created  time.Time
}

// Icon returns the glyph shown beside the toast.
func (n Notification) Icon() string {
	if icon, ok := notificationIcons[n.Type]; ok {
		return icon
	}
	return notificationIcons[NotifyInfo]
}

// Expired reports whether the toast's duration has elapsed. Zero duration persists.
func (n Notification) Expired(now time.Time) bool {
	return n.Duration > 0 && !now.Before(n.Created.Add(n.Duration))
}

// NotificationCenter keeps the visible toasts, oldest first.
type NotificationCenter struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

// NewNotificationCenter returns an empty center.
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{now: time.Now}
}

// Notify adds a toast and drops the oldest when the limit is reached.
func (c *NotificationCenter) Notify(title, message string, kind NotificationType, duration time.Duration) Notification {
	if _, ok := notificationIcons[kind]; !ok {
		kind = NotifyInfo
	}
	n := Notification{
		ID:       "notification-" + uuid.NewString(),
		Title:    title,
		Message:  message,
		Type:     kind,
		Duration: duration,
		Created:  c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= MaxNotifications {
		c.items = c.items[len(c.items)-MaxNotifications+1:]
	}
	c.items = append(c.items, n)
	return n
}

// Success is shorthand for a success toast with the default duration.
func (c *NotificationCenter) Success(title, message string) Notification {
	return c.Notify(title, message, NotifySuccess, DefaultNotificationDuration)
}

// Error is shorthand for an error toast with the default duration.
func (c *NotificationCenter) Error(title, message string) Notification {
	return c.Notify(title, message, NotifyError, DefaultNotificationDuration)
}

// Active drops expired toasts and returns the rest.
func (c *NotificationCenter) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, n := range c.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	c.items = kept
	return append([]Notification(nil), kept...)
}

// Close removes a toast. Unknown ids are ignored.
func (c *NotificationCenter) Close(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of held toasts, expired or not.
func (c *NotificationCenter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
