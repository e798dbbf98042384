package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseService interface {
	ListCourses(ctx context.Context, caller *model.User) ([]model.Course, error)
	GetCourse(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Course, error)
	CreateCourse(ctx context.Context, caller *model.User, input dto.CreateCourseRequest) (*model.Course, error)
	UpdateCourse(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateCourseRequest) (*model.Course, error)
	Enroll(ctx context.Context, caller *model.User, courseID uuid.UUID) (*model.Enrollment, error)
	Unenroll(ctx context.Context, caller *model.User, courseID uuid.UUID) error
	ListStudents(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]model.Enrollment, error)
}

type courseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	search      SearchService
}

func NewCourseService(courses repository.CourseRepository, enrollments repository.EnrollmentRepository, search SearchService) CourseService {
	return &courseService{
		courses:     courses,
		enrollments: enrollments,
		search:      search,
	}
}

// ListCourses is role-dependent: students see courses they are enrolled
// in, instructors the courses they own. TAs have no ownership link and
// may grade across courses, so they get the full catalog like admins.
func (s *courseService) ListCourses(ctx context.Context, caller *model.User) ([]model.Course, error) {
	switch caller.Role {
	case model.RoleStudent:
		return s.courses.FindEnrolledByUser(ctx, caller.ID)
	case model.RoleInstructor:
		return s.courses.FindByInstructor(ctx, caller.ID)
	default:
		return s.courses.FindAll(ctx)
	}
}

func (s *courseService) GetCourse(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if caller.Role == model.RoleStudent {
		if err := requireEnrolled(ctx, s.enrollments, course.ID, caller.ID); err != nil {
			return nil, err
		}
	}

	return course, nil
}

func (s *courseService) CreateCourse(ctx context.Context, caller *model.User, input dto.CreateCourseRequest) (*model.Course, error) {
	if !caller.Role.CanCreateCourse() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only instructors can create courses")
	}

	year := input.AcademicYear
	if year == 0 {
		year = time.Now().Year()
	}

	course := &model.Course{
		Code:          input.Code,
		Title:         input.Title,
		Description:   input.Description,
		Term:          input.Term,
		AcademicYear:  year,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Credits:       input.Credits,
		Level:         input.Level,
		Status:        "published",
		InstructorID:  caller.ID,
		MaxEnrollment: input.MaxEnrollment,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, translateDBError(err, "course not found")
	}

	log.Printf("course created: %s by user %s", course.ID, caller.ID)

	if s.search != nil {
		if err := s.search.IndexCourse(course); err != nil {
			log.Printf("failed to index course %s: %v", course.ID, err)
		}
	}

	return course, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if !canManageCourse(caller, course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to update this course")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = input.Description
	}
	if input.Term != nil {
		course.Term = *input.Term
	}
	if input.StartDate != nil {
		course.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		course.EndDate = *input.EndDate
	}
	if input.Credits != nil {
		course.Credits = input.Credits
	}
	if input.Level != nil {
		course.Level = input.Level
	}
	if input.Status != nil {
		course.Status = *input.Status
	}
	if input.MaxEnrollment != nil {
		course.MaxEnrollment = input.MaxEnrollment
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexCourse(course); err != nil {
			log.Printf("failed to index course %s: %v", course.ID, err)
		}
	}

	return course, nil
}

// Enroll creates the (course, user) enrollment. Any existing row for
// the pair, including a dropped one, is a conflict; there is no
// re-enroll path. Capacity and the counter are checked and updated
// atomically in the repository transaction.
func (s *courseService) Enroll(ctx context.Context, caller *model.User, courseID uuid.UUID) (*model.Enrollment, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if _, err := s.enrollments.Find(ctx, courseID, caller.ID); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "already enrolled in this course")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment, err := s.enrollments.Enroll(ctx, courseID, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseFull) {
			return nil, apperror.Wrap(apperror.ErrLimitExceeded, "course is full")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "already enrolled in this course")
		}
		return nil, err
	}

	log.Printf("user %s enrolled in course %s", caller.ID, courseID)

	return enrollment, nil
}

func (s *courseService) Unenroll(ctx context.Context, caller *model.User, courseID uuid.UUID) error {
	enrollment, err := s.enrollments.Find(ctx, courseID, caller.ID)
	if err != nil {
		return translateDBError(err, "enrollment not found")
	}

	// Only an active enrollment can be dropped; repeating the drop must
	// not decrement the course counter a second time.
	if enrollment.Status != model.EnrollmentEnrolled {
		return apperror.Wrap(apperror.ErrConflict, "enrollment is not active")
	}

	if err := s.enrollments.Drop(ctx, enrollment); err != nil {
		return translateDBError(err, "enrollment not found")
	}

	log.Printf("user %s dropped course %s", caller.ID, courseID)

	return nil
}

func (s *courseService) ListStudents(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]model.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if !canManageCourse(caller, course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "access denied")
	}

	return s.enrollments.ListEnrolled(ctx, courseID)
}
