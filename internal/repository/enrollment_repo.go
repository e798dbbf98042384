package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCourseFull is returned by Enroll when the course has a capacity
// and it is already reached.
var ErrCourseFull = errors.New("course is full")

type EnrollmentRepository interface {
	Find(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error)
	// Enroll creates the enrollment row and increments the course
	// counter in one transaction. The course row is locked so the
	// capacity check and the counter update cannot race.
	Enroll(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error)
	// Drop transitions an enrolled row to dropped and decrements the
	// course counter in one transaction. Rows in any other status
	// report ErrRecordNotFound and leave the counter alone.
	Drop(ctx context.Context, enrollment *model.Enrollment) error
	ListEnrolled(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error)
	CountEnrolled(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Find(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error; err != nil {
		return nil, err
	}

	return &enrollment, nil
}

func (r *enrollmentRepository) Enroll(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		CourseID: courseID,
		UserID:   userID,
		Status:   model.EnrollmentEnrolled,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", courseID).
			First(&course).Error; err != nil {
			return err
		}

		if course.MaxEnrollment != nil && course.CurrentEnrollment >= *course.MaxEnrollment {
			return ErrCourseFull
		}

		// The (course_id, user_id) unique index rejects duplicates,
		// whatever the status of the existing row.
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}

		return tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("current_enrollment", gorm.Expr("current_enrollment + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) Drop(ctx context.Context, enrollment *model.Enrollment) error {
	now := time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status predicate makes the transition idempotent: a row
		// that is already dropped matches nothing, so the counter can
		// never be decremented twice for the same enrollment.
		res := tx.Model(&model.Enrollment{}).
			Where("id = ? AND status = ?", enrollment.ID, model.EnrollmentEnrolled).
			Updates(map[string]any{
				"status":    model.EnrollmentDropped,
				"drop_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Course{}).
			Where("id = ?", enrollment.CourseID).
			UpdateColumn("current_enrollment", gorm.Expr("current_enrollment - ?", 1)).Error
	})
}

func (r *enrollmentRepository) ListEnrolled(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ? AND status = ?", courseID, model.EnrollmentEnrolled).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) CountEnrolled(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, model.EnrollmentEnrolled).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
