package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Announcement struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	IsPinned    bool           `gorm:"default:false" json:"is_pinned"`
	IsPublished bool           `gorm:"default:true" json:"is_published"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// VisibleAt reports whether the announcement should be shown at the
// given instant: published and not expired.
func (a *Announcement) VisibleAt(now time.Time) bool {
	if !a.IsPublished {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
