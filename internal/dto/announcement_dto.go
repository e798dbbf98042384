package dto

import "time"

type CreateAnnouncementRequest struct {
	Title     string     `json:"title" binding:"required,max=255"`
	Content   string     `json:"content" binding:"required"`
	IsPinned  bool       `json:"is_pinned"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type UpdateAnnouncementRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Content     *string    `json:"content"`
	IsPinned    *bool      `json:"is_pinned"`
	IsPublished *bool      `json:"is_published"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type NotificationFilter struct {
	Limit      int  `form:"limit" binding:"omitempty,min=1,max=200"`
	UnreadOnly bool `form:"unread_only"`
}
