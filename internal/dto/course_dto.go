package dto

import "time"

type CreateCourseRequest struct {
	Code          string     `json:"code" binding:"required,max=20"`
	Title         string     `json:"title" binding:"required,max=255"`
	Description   *string    `json:"description"`
	Term          string     `json:"term" binding:"required,max=20"`
	AcademicYear  int        `json:"academic_year"`
	StartDate     time.Time  `json:"start_date" binding:"required"`
	EndDate       time.Time  `json:"end_date" binding:"required,gtfield=StartDate"`
	Credits       *float64   `json:"credits"`
	Level         *string    `json:"level"`
	MaxEnrollment *int       `json:"max_enrollment" binding:"omitempty,min=1"`
}

type UpdateCourseRequest struct {
	Title         *string    `json:"title" binding:"omitempty,max=255"`
	Description   *string    `json:"description"`
	Term          *string    `json:"term" binding:"omitempty,max=20"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Credits       *float64   `json:"credits"`
	Level         *string    `json:"level"`
	Status        *string    `json:"status" binding:"omitempty,oneof=draft published archived"`
	MaxEnrollment *int       `json:"max_enrollment" binding:"omitempty,min=1"`
}
