package repository

import (
	"context"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	FindVisibleByCourse(ctx context.Context, courseID uuid.UUID, now time.Time) ([]model.Announcement, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Announcement, error)
	Update(ctx context.Context, announcement *model.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	var announcement model.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&announcement).Error; err != nil {
		return nil, err
	}

	return &announcement, nil
}

func (r *announcementRepository) FindVisibleByCourse(ctx context.Context, courseID uuid.UUID, now time.Time) ([]model.Announcement, error) {
	var announcements []model.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("course_id = ? AND is_published = ?", courseID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("is_pinned desc").
		Order("published_at desc").
		Find(&announcements).Error; err != nil {
		return nil, err
	}

	return announcements, nil
}

// FindByCourse returns everything including unpublished and expired
// rows, for course staff.
func (r *announcementRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Announcement, error) {
	var announcements []model.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("course_id = ?", courseID).
		Order("is_pinned desc").
		Order("created_at desc").
		Find(&announcements).Error; err != nil {
		return nil, err
	}

	return announcements, nil
}

func (r *announcementRepository) Update(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Announcement{}, "id = ?", id).Error
}
