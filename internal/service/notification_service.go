package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type NotificationService interface {
	Notify(ctx context.Context, notification *model.Notification) error
	NotifyBatch(ctx context.Context, notifications []model.Notification) error
	List(ctx context.Context, caller *model.User, limit int, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context, caller *model.User) (int64, error)
	MarkAsRead(ctx context.Context, caller *model.User, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, caller *model.User) error
	Delete(ctx context.Context, caller *model.User, id uuid.UUID) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
	nowFn       func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		nowFn:       time.Now,
	}
}

func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	s.publish(ctx, notification)

	return nil
}

// NotifyBatch persists the notifications in one insert, then publishes
// each to its recipient's channel. Publish failures are logged and
// dropped; the persisted rows are the source of truth.
func (s *notificationService) NotifyBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}

	for i := range notifications {
		s.publish(ctx, &notifications[i])
	}

	return nil
}

func (s *notificationService) publish(ctx context.Context, notification *model.Notification) {
	if s.redisClient == nil {
		return
	}

	channel := fmt.Sprintf("user_notifications:%s", notification.UserID.String())

	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}

	if err := s.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("failed to publish notification to %s: %v", channel, err)
	}
}

func (s *notificationService) List(ctx context.Context, caller *model.User, limit int, unreadOnly bool) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.FindByUser(ctx, caller.ID, limit, unreadOnly)
}

func (s *notificationService) UnreadCount(ctx context.Context, caller *model.User) (int64, error) {
	return s.repo.CountUnread(ctx, caller.ID)
}

// MarkAsRead only touches the caller's own notifications; anyone
// else's id reports NotFound rather than Forbidden.
func (s *notificationService) MarkAsRead(ctx context.Context, caller *model.User, id uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err, "notification not found")
	}

	if notification.UserID != caller.ID {
		return apperror.Wrap(apperror.ErrNotFound, "notification not found")
	}

	return s.repo.MarkAsRead(ctx, id, s.nowFn())
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, caller *model.User) error {
	return s.repo.MarkAllAsRead(ctx, caller.ID, s.nowFn())
}

func (s *notificationService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err, "notification not found")
	}

	if notification.UserID != caller.ID {
		return apperror.Wrap(apperror.ErrNotFound, "notification not found")
	}

	return s.repo.Delete(ctx, id)
}
