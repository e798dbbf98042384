package service

import (
	"context"
	"errors"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Authorization gate. Every service applies the same three rules:
// course-owned resources allow the course instructor or an admin
// (graders additionally allow TAs), student-scoped resources require an
// active enrollment, and self resources require a matching user id.
// The check ordering is fetch-then-authorize throughout, so a missing
// resource reports NotFound before ownership is considered.

func canManageCourse(caller *model.User, course *model.Course) bool {
	return caller.Role.IsAdmin() || course.InstructorID == caller.ID
}

func canGradeCourse(caller *model.User, course *model.Course) bool {
	return canManageCourse(caller, course) || caller.Role.CanGradeAnyCourse()
}

// requireEnrolled returns nil only when the caller has an enrollment in
// status enrolled for the course.
func requireEnrolled(ctx context.Context, enrollments repository.EnrollmentRepository, courseID, userID uuid.UUID) error {
	enrollment, err := enrollments.Find(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrForbidden, "access denied: you are not enrolled in this course")
		}
		return err
	}

	if enrollment.Status != model.EnrollmentEnrolled {
		return apperror.Wrap(apperror.ErrForbidden, "access denied: you are not enrolled in this course")
	}
	return nil
}

// translateDBError maps store-level failures onto the error taxonomy.
func translateDBError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.Wrap(apperror.ErrNotFound, notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.ErrConflict, "resource already exists")
	default:
		return err
	}
}
