package repository

import (
	"context"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GradeRepository interface {
	FindBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.Grade, error)
	// Upsert creates or updates the 1:1 grade row for a submission. The
	// unique index on submission_id guards the race between concurrent
	// graders (last write wins, never two rows). released_at is only
	// written when release is true, so updating a grade preserves a
	// prior release.
	Upsert(ctx context.Context, grade *model.Grade, release bool) error
	Release(ctx context.Context, submissionID uuid.UUID, at time.Time) (*model.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) FindBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.Grade, error) {
	var grade model.Grade
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&grade).Error; err != nil {
		return nil, err
	}

	return &grade, nil
}

func (r *gradeRepository) Upsert(ctx context.Context, grade *model.Grade, release bool) error {
	columns := []string{
		"grader_id", "points_earned", "points_possible", "percentage",
		"letter_grade", "feedback", "graded_at", "updated_at",
	}
	if release {
		columns = append(columns, "released_at")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(grade).Error
}

func (r *gradeRepository) Release(ctx context.Context, submissionID uuid.UUID, at time.Time) (*model.Grade, error) {
	result := r.db.WithContext(ctx).Model(&model.Grade{}).
		Where("submission_id = ?", submissionID).
		Update("released_at", at)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindBySubmission(ctx, submissionID)
}
