package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course         *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    *string        `gorm:"type:text" json:"description,omitempty"`
	DueDate        time.Time      `gorm:"not null" json:"due_date"`
	Points         float64        `gorm:"not null" json:"points"`
	MaxSubmissions int            `gorm:"not null;default:1" json:"max_submissions"`
	IsPublished    bool           `gorm:"default:true" json:"is_published"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Submission is one attempt by a student to turn in work. Attempts are
// numbered per (assignment, user) starting at 1 and are immutable after
// creation except for the status field.
type Submission struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_number" json:"assignment_id"`
	Assignment       *Assignment      `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	UserID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_number" json:"user_id"`
	User             *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubmissionNumber int              `gorm:"not null;uniqueIndex:idx_assignment_user_number" json:"submission_number"`
	SubmissionText   *string          `gorm:"type:text" json:"submission_text,omitempty"`
	SubmissionURL    *string          `gorm:"type:text" json:"submission_url,omitempty"`
	Status           SubmissionStatus `gorm:"size:20;not null;default:submitted" json:"status"`
	IsLate           bool             `gorm:"not null" json:"is_late"`
	DaysLate         int              `gorm:"not null" json:"days_late"`
	SubmittedAt      time.Time        `gorm:"autoCreateTime" json:"submitted_at"`

	Files []SubmissionFile `gorm:"foreignKey:SubmissionID" json:"files"`
	Grade *Grade           `gorm:"foreignKey:SubmissionID" json:"grade,omitempty"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SubmissionFile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	FileURL       string    `gorm:"type:text;not null" json:"file_url"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `gorm:"size:100" json:"mime_type"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *SubmissionFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
