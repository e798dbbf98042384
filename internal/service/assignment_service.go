package service

import (
	"context"
	"errors"
	"log"
	"path"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultMaxSubmissions = 1

type AssignmentService interface {
	ListAssignments(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]dto.AssignmentView, error)
	GetAssignment(ctx context.Context, caller *model.User, id uuid.UUID) (*dto.AssignmentDetail, error)
	CreateAssignment(ctx context.Context, caller *model.User, courseID uuid.UUID, input dto.CreateAssignmentRequest) (*model.Assignment, error)
	UpdateAssignment(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateAssignmentRequest) (*model.Assignment, error)
	DeleteAssignment(ctx context.Context, caller *model.User, id uuid.UUID) error
	Submit(ctx context.Context, caller *model.User, assignmentID uuid.UUID, input dto.SubmitAssignmentRequest) (*model.Submission, error)
	ListSubmissions(ctx context.Context, caller *model.User, assignmentID uuid.UUID) ([]model.Submission, error)
	GetMySubmissions(ctx context.Context, caller *model.User) ([]model.Submission, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	limitFn     func(ctx context.Context, userID uuid.UUID, action string) (bool, error)
	nowFn       func() time.Time
}

func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	redisClient *redis.Client,
	submitLimit time.Duration,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		courses:     courses,
		enrollments: enrollments,
		limitFn: func(ctx context.Context, userID uuid.UUID, action string) (bool, error) {
			return CheckAndSetRateLimit(ctx, redisClient, userID, action, submitLimit)
		},
		nowFn: time.Now,
	}
}

func (s *assignmentService) ListAssignments(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]dto.AssignmentView, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	isStaff := canGradeCourse(caller, course)
	if !isStaff {
		if err := requireEnrolled(ctx, s.enrollments, courseID, caller.ID); err != nil {
			return nil, err
		}
	}

	assignments, err := s.assignments.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		if !isStaff && !assignment.IsPublished {
			continue
		}

		view := dto.AssignmentView{Assignment: assignment}
		if caller.Role == model.RoleStudent {
			latest, err := s.submissions.FindLatestForUser(ctx, assignment.ID, caller.ID)
			if err == nil {
				hideUnreleasedGrade(latest)
				view.MySubmission = latest
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, caller *model.User, id uuid.UUID) (*dto.AssignmentDetail, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "assignment not found")
	}

	isStaff := canGradeCourse(caller, assignment.Course)
	if !isStaff {
		if err := requireEnrolled(ctx, s.enrollments, assignment.CourseID, caller.ID); err != nil {
			return nil, err
		}
		// Unpublished assignments are invisible to students.
		if !assignment.IsPublished {
			return nil, apperror.Wrap(apperror.ErrNotFound, "assignment not found")
		}
	}

	detail := &dto.AssignmentDetail{Assignment: *assignment}

	if isStaff {
		submissions, err := s.submissions.FindByAssignment(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Submissions = submissions
	} else {
		latest, err := s.submissions.FindLatestForUser(ctx, id, caller.ID)
		if err == nil {
			hideUnreleasedGrade(latest)
			detail.MySubmission = latest
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return detail, nil
}

func (s *assignmentService) CreateAssignment(ctx context.Context, caller *model.User, courseID uuid.UUID, input dto.CreateAssignmentRequest) (*model.Assignment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if !canManageCourse(caller, course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to manage this course")
	}

	maxSubmissions := input.MaxSubmissions
	if maxSubmissions == 0 {
		maxSubmissions = defaultMaxSubmissions
	}

	assignment := &model.Assignment{
		CourseID:       courseID,
		Title:          input.Title,
		Description:    input.Description,
		DueDate:        input.DueDate,
		Points:         input.Points,
		MaxSubmissions: maxSubmissions,
		IsPublished:    true,
	}
	if input.IsPublished != nil {
		assignment.IsPublished = *input.IsPublished
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	log.Printf("assignment created: %s in course %s", assignment.ID, courseID)

	return assignment, nil
}

func (s *assignmentService) UpdateAssignment(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateAssignmentRequest) (*model.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "assignment not found")
	}

	if !canManageCourse(caller, assignment.Course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to manage this course")
	}

	if input.Title != nil {
		assignment.Title = *input.Title
	}
	if input.Description != nil {
		assignment.Description = input.Description
	}
	if input.DueDate != nil {
		assignment.DueDate = *input.DueDate
	}
	if input.Points != nil {
		assignment.Points = *input.Points
	}
	if input.MaxSubmissions != nil {
		assignment.MaxSubmissions = *input.MaxSubmissions
	}
	if input.IsPublished != nil {
		assignment.IsPublished = *input.IsPublished
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, caller *model.User, id uuid.UUID) error {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err, "assignment not found")
	}

	if !canManageCourse(caller, assignment.Course) {
		return apperror.Wrap(apperror.ErrForbidden, "you are not authorized to manage this course")
	}

	return s.assignments.Delete(ctx, id)
}

// Submit creates the next attempt for the caller. Late status is
// stamped at creation: a submission is late iff it lands strictly after
// the due date, and days late is the number of whole 24h periods since.
func (s *assignmentService) Submit(ctx context.Context, caller *model.User, assignmentID uuid.UUID, input dto.SubmitAssignmentRequest) (*model.Submission, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, translateDBError(err, "assignment not found")
	}

	if err := requireEnrolled(ctx, s.enrollments, assignment.CourseID, caller.ID); err != nil {
		return nil, err
	}

	if !assignment.IsPublished {
		return nil, apperror.Wrap(apperror.ErrNotFound, "assignment not found")
	}

	// The rate-limit window is only consumed once the request has
	// passed existence and enrollment checks, so a rejected submit does
	// not burn the caller's allowance.
	allowed, err := s.limitFn(ctx, caller.ID, "submit_assignment")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimitExceeded, "you are submitting too fast, try again shortly")
	}

	now := s.nowFn()
	isLate := now.After(assignment.DueDate)
	daysLate := 0
	if isLate {
		daysLate = int(now.Sub(assignment.DueDate).Hours() / 24)
	}

	submission := &model.Submission{
		AssignmentID:   assignmentID,
		UserID:         caller.ID,
		SubmissionText: input.SubmissionText,
		SubmissionURL:  input.SubmissionURL,
		Status:         model.SubmissionSubmitted,
		IsLate:         isLate,
		DaysLate:       daysLate,
	}

	for _, f := range input.Files {
		name := f.FileName
		if name == "" {
			name = path.Base(f.FileURL)
		}
		submission.Files = append(submission.Files, model.SubmissionFile{
			FileName:      name,
			FileURL:       f.FileURL,
			FileSizeBytes: f.FileSize,
			MimeType:      f.MimeType,
		})
	}

	if err := s.submissions.CreateNumbered(ctx, submission, assignment.MaxSubmissions); err != nil {
		if errors.Is(err, repository.ErrSubmissionLimit) {
			return nil, apperror.Wrap(apperror.ErrLimitExceeded, "maximum submission limit reached for this assignment")
		}
		return nil, err
	}

	log.Printf("submission %d for assignment %s by user %s (late=%v)", submission.SubmissionNumber, assignmentID, caller.ID, isLate)

	return submission, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, caller *model.User, assignmentID uuid.UUID) ([]model.Submission, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, translateDBError(err, "assignment not found")
	}

	if !canGradeCourse(caller, assignment.Course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "access denied")
	}

	return s.submissions.FindByAssignment(ctx, assignmentID)
}

func (s *assignmentService) GetMySubmissions(ctx context.Context, caller *model.User) ([]model.Submission, error) {
	submissions, err := s.submissions.FindByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	for i := range submissions {
		hideUnreleasedGrade(&submissions[i])
	}

	return submissions, nil
}

// hideUnreleasedGrade strips the grade from a submission heading to a
// student when it has not been released yet.
func hideUnreleasedGrade(submission *model.Submission) {
	if submission != nil && submission.Grade != nil && !submission.Grade.Released() {
		submission.Grade = nil
	}
}
