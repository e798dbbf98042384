package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code              string     `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Description       *string    `gorm:"type:text" json:"description,omitempty"`
	Term              string     `gorm:"size:20" json:"term"`
	AcademicYear      int        `json:"academic_year"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	Credits           *float64   `json:"credits,omitempty"`
	Level             *string    `gorm:"size:50" json:"level,omitempty"`
	Status            string     `gorm:"size:20;default:published" json:"status"`
	InstructorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Instructor        *User      `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	MaxEnrollment     *int       `json:"max_enrollment,omitempty"`
	CurrentEnrollment int        `gorm:"default:0" json:"current_enrollment"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// EnrollmentStatus is the closed set of states an enrollment moves
// through. Rows are never deleted; unenrolling transitions to dropped.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

type Enrollment struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_course_user" json:"course_id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_course_user" json:"user_id"`
	Status     EnrollmentStatus `gorm:"size:20;not null;default:enrolled" json:"status"`
	EnrolledAt time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`
	DropDate   *time.Time       `json:"drop_date,omitempty"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
