package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grade is the 1:1 scoring record for a submission. ReleasedAt gates
// student visibility: a grade is only shown through the "my grades"
// query once it is non-nil.
type Grade struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"submission_id"`
	GraderID       uuid.UUID  `gorm:"type:uuid;not null" json:"grader_id"`
	PointsEarned   *float64   `json:"points_earned,omitempty"`
	PointsPossible *float64   `json:"points_possible,omitempty"`
	Percentage     *float64   `json:"percentage,omitempty"`
	LetterGrade    *string    `gorm:"size:5" json:"letter_grade,omitempty"`
	Feedback       *string    `gorm:"type:text" json:"feedback,omitempty"`
	GradedAt       time.Time  `json:"graded_at"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Released reports whether the grade is visible to the student.
func (g *Grade) Released() bool {
	return g != nil && g.ReleasedAt != nil
}
