package repository

import (
	"context"
	"errors"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSubmissionLimit is returned by CreateNumbered when the student has
// already used up the assignment's max submission count.
var ErrSubmissionLimit = errors.New("maximum submission limit reached")

type SubmissionRepository interface {
	// CreateNumbered assigns the next submission number for the
	// (assignment, user) pair and creates the submission plus its file
	// records. The assignment row is locked for the duration of the
	// transaction so two concurrent submissions cannot claim the same
	// number or both slip past the limit.
	CreateNumbered(ctx context.Context, submission *model.Submission, maxSubmissions int) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error)
	FindLatestForUser(ctx context.Context, assignmentID, userID uuid.UUID) (*model.Submission, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Submission, error)
	CountForUser(ctx context.Context, assignmentID, userID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) error
	FileExistsByURL(ctx context.Context, fileURL string) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateNumbered(ctx context.Context, submission *model.Submission, maxSubmissions int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent submissions for the same assignment by
		// locking the assignment row before counting.
		var assignment model.Assignment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", submission.AssignmentID).
			First(&assignment).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Submission{}).
			Where("assignment_id = ? AND user_id = ?", submission.AssignmentID, submission.UserID).
			Count(&count).Error; err != nil {
			return err
		}

		if count >= int64(maxSubmissions) {
			return ErrSubmissionLimit
		}

		submission.SubmissionNumber = int(count) + 1

		return tx.Create(submission).Error
	})
}

func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Course").
		Preload("Files").
		Preload("Grade").
		Where("id = ?", id).
		First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (r *submissionRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Files").
		Preload("Grade").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) FindLatestForUser(ctx context.Context, assignmentID, userID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).
		Preload("Files").
		Preload("Grade").
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Order("submission_number desc").
		First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (r *submissionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Course").
		Preload("Grade").
		Where("user_id = ?", userID).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) CountForUser(ctx context.Context, assignmentID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submissionRepository) FileExistsByURL(ctx context.Context, fileURL string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.SubmissionFile{}).
		Where("file_url = ?", fileURL).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
