package dto

import (
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
)

type CreateAssignmentRequest struct {
	Title          string    `json:"title" binding:"required,max=255"`
	Description    *string   `json:"description"`
	DueDate        time.Time `json:"due_date" binding:"required"`
	Points         float64   `json:"points" binding:"required,min=0"`
	MaxSubmissions int       `json:"max_submissions" binding:"omitempty,min=1"`
	IsPublished    *bool     `json:"is_published"`
}

type UpdateAssignmentRequest struct {
	Title          *string    `json:"title" binding:"omitempty,max=255"`
	Description    *string    `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Points         *float64   `json:"points" binding:"omitempty,min=0"`
	MaxSubmissions *int       `json:"max_submissions" binding:"omitempty,min=1"`
	IsPublished    *bool      `json:"is_published"`
}

// SubmittedFile carries the descriptor of an already-uploaded file to
// attach to a submission. Size and mime type are best-effort values
// from the upload pipeline.
type SubmittedFile struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url" binding:"required"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

type SubmitAssignmentRequest struct {
	SubmissionText *string         `json:"submission_text"`
	SubmissionURL  *string         `json:"submission_url"`
	Files          []SubmittedFile `json:"files" binding:"omitempty,dive"`
}

// AssignmentView is an assignment enriched with the caller's own latest
// submission (students only).
type AssignmentView struct {
	model.Assignment
	MySubmission *model.Submission `json:"my_submission,omitempty"`
}

// AssignmentDetail additionally carries every submission for staff.
type AssignmentDetail struct {
	model.Assignment
	MySubmission *model.Submission  `json:"my_submission,omitempty"`
	Submissions  []model.Submission `json:"submissions,omitempty"`
}
