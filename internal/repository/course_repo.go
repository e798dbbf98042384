package repository

import (
	"context"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	FindAll(ctx context.Context) ([]model.Course, error)
	FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error)
	FindEnrolledByUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("id = ?", id).
		First(&course).Error; err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) FindAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Order("created_at desc").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("instructor_id = ?", instructorID).
		Order("created_at desc").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) FindEnrolledByUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.status = ?", userID, model.EnrollmentEnrolled).
		Order("courses.created_at desc").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}
