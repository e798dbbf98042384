package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/google/uuid"
)

type announcementFixture struct {
	courses       *stubCourseRepo
	enrollments   *stubEnrollmentRepo
	announcements *stubAnnouncementRepo
	notifications *stubNotificationRepo
	svc           *announcementService
}

func newAnnouncementFixture() *announcementFixture {
	courses := newStubCourseRepo()
	enrollments := newStubEnrollmentRepo(courses)
	announcements := newStubAnnouncementRepo(courses)
	notifications := newStubNotificationRepo()

	notificationSvc := NewNotificationService(notifications, nil)
	svc := NewAnnouncementService(announcements, courses, enrollments, notificationSvc, nil).(*announcementService)

	return &announcementFixture{
		courses:       courses,
		enrollments:   enrollments,
		announcements: announcements,
		notifications: notifications,
		svc:           svc,
	}
}

func TestCreateAnnouncement_FanOutCardinality(t *testing.T) {
	instructor := newTestUser(model.RoleInstructor)
	f := newAnnouncementFixture()
	course := seedCourse(f.courses, instructor, nil)

	students := make([]*model.User, 5)
	for i := range students {
		students[i] = newTestUser(model.RoleStudent)
		f.enrollments.setEnrolled(course.ID, students[i])
	}

	announcement, err := f.svc.Create(context.Background(), instructor, course.ID, dto.CreateAnnouncementRequest{
		Title:   "Midterm moved",
		Content: "The midterm is now on Friday.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if announcement.PublishedAt == nil {
		t.Fatal("created announcement should be published")
	}

	if got := len(f.notifications.rows); got != len(students) {
		t.Fatalf("expected %d notifications, got %d", len(students), got)
	}
	for _, student := range students {
		if f.notifications.countForUser(student.ID) != 1 {
			t.Fatalf("student %s should get exactly one notification", student.ID)
		}
	}
}

func TestCreateAnnouncement_SkipsStaffEnrollments(t *testing.T) {
	instructor := newTestUser(model.RoleInstructor)
	ta := newTestUser(model.RoleTA)
	student := newTestUser(model.RoleStudent)
	f := newAnnouncementFixture()
	course := seedCourse(f.courses, instructor, nil)

	f.enrollments.setEnrolled(course.ID, student)
	f.enrollments.setEnrolled(course.ID, ta)

	if _, err := f.svc.Create(context.Background(), instructor, course.ID, dto.CreateAnnouncementRequest{
		Title:   "Welcome",
		Content: "First lecture notes are up.",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if f.notifications.countForUser(student.ID) != 1 {
		t.Fatal("enrolled student should be notified")
	}
	if f.notifications.countForUser(ta.ID) != 0 {
		t.Fatal("staff enrollments should not receive student notifications")
	}
}

func TestCreateAnnouncement_NonOwnerForbidden(t *testing.T) {
	instructor := newTestUser(model.RoleInstructor)
	other := newTestUser(model.RoleInstructor)
	f := newAnnouncementFixture()
	course := seedCourse(f.courses, instructor, nil)

	_, err := f.svc.Create(context.Background(), other, course.ID, dto.CreateAnnouncementRequest{
		Title:   "Nope",
		Content: "x",
	})
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if code := apperror.MapErrorToStatus(err); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if len(f.notifications.rows) != 0 {
		t.Fatal("no notifications should be created on a rejected announcement")
	}
}

func TestListAnnouncements_StudentVisibilityWindow(t *testing.T) {
	instructor := newTestUser(model.RoleInstructor)
	student := newTestUser(model.RoleStudent)
	f := newAnnouncementFixture()
	course := seedCourse(f.courses, instructor, nil)
	f.enrollments.setEnrolled(course.ID, student)

	now := time.Now()
	f.svc.nowFn = func() time.Time { return now }

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	visible := &model.Announcement{ID: uuid.New(), CourseID: course.ID, AuthorID: instructor.ID, Title: "Visible", Content: "x", IsPublished: true, PublishedAt: &past, ExpiresAt: &future}
	expired := &model.Announcement{ID: uuid.New(), CourseID: course.ID, AuthorID: instructor.ID, Title: "Expired", Content: "x", IsPublished: true, PublishedAt: &past, ExpiresAt: &past}
	draft := &model.Announcement{ID: uuid.New(), CourseID: course.ID, AuthorID: instructor.ID, Title: "Draft", Content: "x", IsPublished: false}
	for _, a := range []*model.Announcement{visible, expired, draft} {
		f.announcements.byID[a.ID] = a
	}

	got, err := f.svc.List(context.Background(), student, course.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Visible" {
		t.Fatalf("student should see only the live announcement, got %d", len(got))
	}

	staffGot, err := f.svc.List(context.Background(), instructor, course.ID)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(staffGot) != 3 {
		t.Fatalf("staff should see all announcements, got %d", len(staffGot))
	}
}

func TestUpdateAnnouncement_PublishStampsTimestamp(t *testing.T) {
	instructor := newTestUser(model.RoleInstructor)
	f := newAnnouncementFixture()
	course := seedCourse(f.courses, instructor, nil)

	draft := &model.Announcement{ID: uuid.New(), CourseID: course.ID, AuthorID: instructor.ID, Title: "Draft", Content: "x", IsPublished: false}
	f.announcements.byID[draft.ID] = draft

	published := true
	updated, err := f.svc.Update(context.Background(), instructor, draft.ID, dto.UpdateAnnouncementRequest{IsPublished: &published})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsPublished || updated.PublishedAt == nil {
		t.Fatal("publishing should stamp published_at")
	}
}
