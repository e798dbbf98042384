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

type AnnouncementService interface {
	Create(ctx context.Context, caller *model.User, courseID uuid.UUID, input dto.CreateAnnouncementRequest) (*model.Announcement, error)
	List(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]model.Announcement, error)
	Update(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateAnnouncementRequest) (*model.Announcement, error)
	Delete(ctx context.Context, caller *model.User, id uuid.UUID) error
}

type announcementService struct {
	announcements repository.AnnouncementRepository
	courses       repository.CourseRepository
	enrollments   repository.EnrollmentRepository
	notifications NotificationService
	search        SearchService
	nowFn         func() time.Time
}

func NewAnnouncementService(
	announcements repository.AnnouncementRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	notifications NotificationService,
	search SearchService,
) AnnouncementService {
	return &announcementService{
		announcements: announcements,
		courses:       courses,
		enrollments:   enrollments,
		notifications: notifications,
		search:        search,
		nowFn:         time.Now,
	}
}

// Create posts the announcement and fans out one notification per
// enrolled student. The announcement row is the commit point; fan-out
// failures after it are logged, not rolled back.
func (s *announcementService) Create(ctx context.Context, caller *model.User, courseID uuid.UUID, input dto.CreateAnnouncementRequest) (*model.Announcement, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if !canManageCourse(caller, course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to post announcements in this course")
	}

	now := s.nowFn()
	announcement := &model.Announcement{
		CourseID:    courseID,
		AuthorID:    caller.ID,
		Title:       input.Title,
		Content:     input.Content,
		IsPinned:    input.IsPinned,
		IsPublished: true,
		PublishedAt: &now,
		ExpiresAt:   input.ExpiresAt,
	}

	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, err
	}

	s.fanOut(ctx, course, announcement)

	if s.search != nil {
		if err := s.search.IndexAnnouncement(announcement); err != nil {
			log.Printf("failed to index announcement %s: %v", announcement.ID, err)
		}
	}

	return announcement, nil
}

func (s *announcementService) fanOut(ctx context.Context, course *model.Course, announcement *model.Announcement) {
	enrollments, err := s.announcementRecipients(ctx, course.ID)
	if err != nil {
		log.Printf("failed to load recipients for announcement %s: %v", announcement.ID, err)
		return
	}

	link := fmt.Sprintf("/courses/%s/announcements", course.ID)
	notifications := make([]model.Notification, 0, len(enrollments))
	for _, enrollment := range enrollments {
		notifications = append(notifications, model.Notification{
			UserID:  enrollment.UserID,
			Type:    model.NotificationAnnouncement,
			Title:   fmt.Sprintf("New announcement in %s", course.Code),
			Message: announcement.Title,
			LinkURL: &link,
		})
	}

	if err := s.notifications.NotifyBatch(ctx, notifications); err != nil {
		log.Printf("failed to fan out announcement %s: %v", announcement.ID, err)
		return
	}

	log.Printf("announcement %s fanned out to %d students", announcement.ID, len(notifications))
}

// announcementRecipients is every actively enrolled student in the
// course. Staff never hold enrollments, but filter on role anyway so a
// mis-enrolled instructor does not get student notifications.
func (s *announcementService) announcementRecipients(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	enrollments, err := s.enrollments.ListEnrolled(ctx, courseID)
	if err != nil {
		return nil, err
	}

	recipients := enrollments[:0]
	for _, enrollment := range enrollments {
		if enrollment.User != nil && enrollment.User.Role != model.RoleStudent {
			continue
		}
		recipients = append(recipients, enrollment)
	}

	return recipients, nil
}

func (s *announcementService) List(ctx context.Context, caller *model.User, courseID uuid.UUID) ([]model.Announcement, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, translateDBError(err, "course not found")
	}

	if canManageCourse(caller, course) {
		return s.announcements.FindByCourse(ctx, courseID)
	}

	if err := requireEnrolled(ctx, s.enrollments, courseID, caller.ID); err != nil {
		return nil, err
	}

	return s.announcements.FindVisibleByCourse(ctx, courseID, s.nowFn())
}

func (s *announcementService) Update(ctx context.Context, caller *model.User, id uuid.UUID, input dto.UpdateAnnouncementRequest) (*model.Announcement, error) {
	announcement, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "announcement not found")
	}

	if announcement.Course == nil || !canManageCourse(caller, announcement.Course) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you are not authorized to manage this announcement")
	}

	if input.Title != nil {
		announcement.Title = *input.Title
	}
	if input.Content != nil {
		announcement.Content = *input.Content
	}
	if input.IsPinned != nil {
		announcement.IsPinned = *input.IsPinned
	}
	if input.IsPublished != nil {
		announcement.IsPublished = *input.IsPublished
		if *input.IsPublished && announcement.PublishedAt == nil {
			now := s.nowFn()
			announcement.PublishedAt = &now
		}
	}
	if input.ExpiresAt != nil {
		announcement.ExpiresAt = input.ExpiresAt
	}

	if err := s.announcements.Update(ctx, announcement); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexAnnouncement(announcement); err != nil {
			log.Printf("failed to index announcement %s: %v", announcement.ID, err)
		}
	}

	return announcement, nil
}

func (s *announcementService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	announcement, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return translateDBError(err, "announcement not found")
	}

	if announcement.Course == nil || !canManageCourse(caller, announcement.Course) {
		return apperror.Wrap(apperror.ErrForbidden, "you are not authorized to manage this announcement")
	}

	if err := s.announcements.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteAnnouncement(id.String()); err != nil {
			log.Printf("failed to remove announcement %s from index: %v", id, err)
		}
	}

	return nil
}
