package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
)

type GradeService interface {
	GradeSubmission(ctx context.Context, caller *model.User, submissionID uuid.UUID, input dto.GradeSubmissionRequest) (*model.Grade, error)
	ReleaseGrade(ctx context.Context, caller *model.User, submissionID uuid.UUID) (*model.Grade, error)
	GetMyGrades(ctx context.Context, caller *model.User) ([]model.Submission, error)
	GetCourseGrades(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]dto.CourseGrades, error)
}

type gradeService struct {
	grades        repository.GradeRepository
	submissions   repository.SubmissionRepository
	assignments   repository.AssignmentRepository
	courses       repository.CourseRepository
	notifications NotificationService
	nowFn         func() time.Time
}

func NewGradeService(
	grades repository.GradeRepository,
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	courses repository.CourseRepository,
	notifications NotificationService,
) GradeService {
	return &gradeService{
		grades:        grades,
		submissions:   submissions,
		assignments:   assignments,
		courses:       courses,
		notifications: notifications,
		nowFn:         time.Now,
	}
}

// GradeSubmission creates or replaces the grade for a submission.
// Regrading keeps a prior release timestamp unless the request releases
// again. Points possible falls back to the assignment's point value.
func (s *gradeService) GradeSubmission(ctx context.Context, caller *model.User, submissionID uuid.UUID, input dto.GradeSubmissionRequest) (*model.Grade, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, translateDBError(err, "submission not found")
	}

	if submission.Assignment == nil || submission.Assignment.Course == nil {
		return nil, apperror.Wrap(apperror.ErrInternal, "submission is missing its assignment")
	}

	if !canGradeCourse(caller, submission.Assignment.Course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to grade this submission")
	}

	now := s.nowFn()

	pointsPossible := input.PointsPossible
	if pointsPossible == nil {
		p := submission.Assignment.Points
		pointsPossible = &p
	}

	percentage := input.Percentage
	if percentage == nil && input.PointsEarned != nil && *pointsPossible > 0 {
		pct := *input.PointsEarned / *pointsPossible * 100
		percentage = &pct
	}

	grade := &model.Grade{
		SubmissionID:   submissionID,
		GraderID:       caller.ID,
		PointsEarned:   input.PointsEarned,
		PointsPossible: pointsPossible,
		Percentage:     percentage,
		LetterGrade:    input.LetterGrade,
		Feedback:       input.Feedback,
		GradedAt:       now,
	}
	if input.Release {
		grade.ReleasedAt = &now
	}

	if err := s.grades.Upsert(ctx, grade, input.Release); err != nil {
		return nil, err
	}

	if err := s.submissions.UpdateStatus(ctx, submissionID, model.SubmissionGraded); err != nil {
		return nil, err
	}

	// Re-read so a preserved release timestamp from an earlier release
	// is reflected in the response.
	stored, err := s.grades.FindBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	log.Printf("submission %s graded by %s (released=%v)", submissionID, caller.ID, stored.Released())

	if input.Release {
		s.notifyGradePosted(ctx, submission)
	}

	return stored, nil
}

// ReleaseGrade makes an existing grade visible to the student. TAs can
// grade but not release.
func (s *gradeService) ReleaseGrade(ctx context.Context, caller *model.User, submissionID uuid.UUID) (*model.Grade, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, translateDBError(err, "submission not found")
	}

	if submission.Assignment == nil || submission.Assignment.Course == nil {
		return nil, apperror.Wrap(apperror.ErrInternal, "submission is missing its assignment")
	}

	if !canManageCourse(caller, submission.Assignment.Course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to release grades for this course")
	}

	grade, err := s.grades.Release(ctx, submissionID, s.nowFn())
	if err != nil {
		return nil, translateDBError(err, "no grade exists for this submission")
	}

	s.notifyGradePosted(ctx, submission)

	return grade, nil
}

func (s *gradeService) notifyGradePosted(ctx context.Context, submission *model.Submission) {
	title := "Grade Posted"
	message := "Your submission has been graded."
	if submission.Assignment != nil {
		message = fmt.Sprintf("Your submission for %q has been graded.", submission.Assignment.Title)
	}

	link := fmt.Sprintf("/assignments/%s/submissions/%s", submission.AssignmentID, submission.ID)
	notification := &model.Notification{
		UserID:  submission.UserID,
		Type:    model.NotificationGradePosted,
		Title:   title,
		Message: message,
		LinkURL: &link,
	}

	if err := s.notifications.Notify(ctx, notification); err != nil {
		log.Printf("failed to notify user %s of grade: %v", submission.UserID, err)
	}
}

// GetMyGrades lists the caller's graded submissions, released grades
// only. Ungraded and unreleased work is omitted entirely.
func (s *gradeService) GetMyGrades(ctx context.Context, caller *model.User) ([]model.Submission, error) {
	submissions, err := s.submissions.FindByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	graded := make([]model.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.Grade.Released() {
			graded = append(graded, submission)
		}
	}

	return graded, nil
}

// GetCourseGrades is the instructor gradebook: every assignment in the
// course with every submission and grade, released or not.
func (s *gradeService) GetCourseGrades(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]dto.CourseGrades, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if !canGradeCourse(caller, course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "access denied")
	}

	assignments, err := s.assignments.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	gradebook := make([]dto.CourseGrades, 0, len(assignments))
	for _, assignment := range assignments {
		submissions, err := s.submissions.FindByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		gradebook = append(gradebook, dto.CourseGrades{
			Assignment:  assignment,
			Submissions: submissions,
		})
	}

	return gradebook, nil
}
