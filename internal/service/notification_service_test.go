package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
)

func TestMarkAsRead_OtherUsersNotificationIsNotFound(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo, nil)

	owner := newTestUser(model.RoleStudent)
	intruder := newTestUser(model.RoleStudent)

	notification := &model.Notification{
		UserID:  owner.ID,
		Type:    model.NotificationAnnouncement,
		Title:   "New announcement",
		Message: "hi",
	}
	if err := svc.Notify(context.Background(), notification); err != nil {
		t.Fatalf("notify: %v", err)
	}

	err := svc.MarkAsRead(context.Background(), intruder, notification.ID)
	if err == nil {
		t.Fatal("expected not found for another user's notification")
	}
	if code := apperror.MapErrorToStatus(err); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	if err := svc.MarkAsRead(context.Background(), owner, notification.ID); err != nil {
		t.Fatalf("owner mark read: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), owner)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo, nil)

	user := newTestUser(model.RoleStudent)
	for i := 0; i < 3; i++ {
		if err := svc.Notify(context.Background(), &model.Notification{
			UserID: user.ID,
			Type:   model.NotificationGradePosted,
			Title:  "Grade Posted",
		}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	if err := svc.MarkAllAsRead(context.Background(), user); err != nil {
		t.Fatalf("mark all: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), user)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}

	all, err := svc.List(context.Background(), user, 10, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(all))
	}
	for _, n := range all {
		if !n.IsRead || n.ReadAt == nil {
			t.Fatal("every notification should be read with a timestamp")
		}
	}
}

func TestDelete_OnlyOwn(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo, nil)

	owner := newTestUser(model.RoleStudent)
	intruder := newTestUser(model.RoleStudent)

	notification := &model.Notification{UserID: owner.ID, Type: model.NotificationAnnouncement, Title: "x"}
	if err := svc.Notify(context.Background(), notification); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := svc.Delete(context.Background(), intruder, notification.ID); err == nil {
		t.Fatal("expected not found for another user's notification")
	}

	if err := svc.Delete(context.Background(), owner, notification.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("notification not deleted, %d rows left", len(repo.rows))
	}
}
