package dto

import "github.com/Mrabbi3/ConceptsPro/internal/model"

type GradeSubmissionRequest struct {
	PointsEarned   *float64 `json:"points_earned" binding:"omitempty,min=0"`
	PointsPossible *float64 `json:"points_possible" binding:"omitempty,min=0"`
	Percentage     *float64 `json:"percentage" binding:"omitempty,min=0,max=100"`
	LetterGrade    *string  `json:"letter_grade" binding:"omitempty,max=5"`
	Feedback       *string  `json:"feedback"`
	Release        bool     `json:"release"`
}

// CourseGrades groups an assignment with all of its submissions and
// grades, for the instructor gradebook view.
type CourseGrades struct {
	Assignment  model.Assignment   `json:"assignment"`
	Submissions []model.Submission `json:"submissions"`
}
