package service

import (
	"context"
	"sort"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each mirrors the query semantics of the
// real Postgres-backed repository so service behavior can be exercised
// without a database.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[uuid.UUID]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, ok := r.byID[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *model.User) error {
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubCourseRepo struct {
	byID        map[uuid.UUID]*model.Course
	enrollments *stubEnrollmentRepo
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{byID: make(map[uuid.UUID]*model.Course)}
}

func (r *stubCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	clone := *course
	r.byID[course.ID] = &clone
	return nil
}

func (r *stubCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	course, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *course
	return &clone, nil
}

func (r *stubCourseRepo) Update(_ context.Context, course *model.Course) error {
	clone := *course
	r.byID[course.ID] = &clone
	return nil
}

func (r *stubCourseRepo) FindAll(_ context.Context) ([]model.Course, error) {
	var courses []model.Course
	for _, course := range r.byID {
		courses = append(courses, *course)
	}
	return courses, nil
}

func (r *stubCourseRepo) FindByInstructor(_ context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	for _, course := range r.byID {
		if course.InstructorID == instructorID {
			courses = append(courses, *course)
		}
	}
	return courses, nil
}

func (r *stubCourseRepo) FindEnrolledByUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	if r.enrollments == nil {
		return courses, nil
	}
	for _, enrollment := range r.enrollments.rows {
		if enrollment.UserID == userID && enrollment.Status == model.EnrollmentEnrolled {
			if course, ok := r.byID[enrollment.CourseID]; ok {
				courses = append(courses, *course)
			}
		}
	}
	return courses, nil
}

type enrollmentKey struct {
	courseID uuid.UUID
	userID   uuid.UUID
}

type stubEnrollmentRepo struct {
	rows    map[enrollmentKey]*model.Enrollment
	courses *stubCourseRepo
}

func newStubEnrollmentRepo(courses *stubCourseRepo) *stubEnrollmentRepo {
	r := &stubEnrollmentRepo{
		rows:    make(map[enrollmentKey]*model.Enrollment),
		courses: courses,
	}
	if courses != nil {
		courses.enrollments = r
	}
	return r
}

func (r *stubEnrollmentRepo) Find(_ context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	enrollment, ok := r.rows[enrollmentKey{courseID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *enrollment
	return &clone, nil
}

// Enroll mirrors the transactional repo: capacity check against the
// course counter, unique-index duplicate rejection, counter increment.
func (r *stubEnrollmentRepo) Enroll(_ context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	course, ok := r.courses.byID[courseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	if course.MaxEnrollment != nil && course.CurrentEnrollment >= *course.MaxEnrollment {
		return nil, repository.ErrCourseFull
	}

	key := enrollmentKey{courseID, userID}
	if _, exists := r.rows[key]; exists {
		return nil, gorm.ErrDuplicatedKey
	}

	enrollment := &model.Enrollment{
		ID:         uuid.New(),
		CourseID:   courseID,
		UserID:     userID,
		Status:     model.EnrollmentEnrolled,
		EnrolledAt: time.Now(),
	}
	r.rows[key] = enrollment
	course.CurrentEnrollment++

	clone := *enrollment
	return &clone, nil
}

func (r *stubEnrollmentRepo) Drop(_ context.Context, enrollment *model.Enrollment) error {
	key := enrollmentKey{enrollment.CourseID, enrollment.UserID}
	stored, ok := r.rows[key]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	// Mirrors the status-guarded update: only enrolled rows transition,
	// so a repeated drop never decrements the counter again.
	if stored.Status != model.EnrollmentEnrolled {
		return gorm.ErrRecordNotFound
	}

	now := time.Now()
	stored.Status = model.EnrollmentDropped
	stored.DropDate = &now

	if course, ok := r.courses.byID[enrollment.CourseID]; ok {
		course.CurrentEnrollment--
	}
	return nil
}

func (r *stubEnrollmentRepo) ListEnrolled(_ context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	for _, enrollment := range r.rows {
		if enrollment.CourseID == courseID && enrollment.Status == model.EnrollmentEnrolled {
			enrollments = append(enrollments, *enrollment)
		}
	}
	return enrollments, nil
}

func (r *stubEnrollmentRepo) CountEnrolled(_ context.Context, courseID uuid.UUID) (int64, error) {
	enrollments, _ := r.ListEnrolled(context.Background(), courseID)
	return int64(len(enrollments)), nil
}

// setEnrolled seeds an active enrollment directly, bypassing capacity.
func (r *stubEnrollmentRepo) setEnrolled(courseID uuid.UUID, user *model.User) {
	r.rows[enrollmentKey{courseID, user.ID}] = &model.Enrollment{
		ID:       uuid.New(),
		CourseID: courseID,
		UserID:   user.ID,
		Status:   model.EnrollmentEnrolled,
		User:     user,
	}
}

type stubAssignmentRepo struct {
	byID    map[uuid.UUID]*model.Assignment
	courses *stubCourseRepo
}

func newStubAssignmentRepo(courses *stubCourseRepo) *stubAssignmentRepo {
	return &stubAssignmentRepo{
		byID:    make(map[uuid.UUID]*model.Assignment),
		courses: courses,
	}
}

func (r *stubAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	clone := *assignment
	r.byID[assignment.ID] = &clone
	return nil
}

func (r *stubAssignmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Assignment, error) {
	assignment, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *assignment
	if course, ok := r.courses.byID[assignment.CourseID]; ok {
		courseClone := *course
		clone.Course = &courseClone
	}
	return &clone, nil
}

func (r *stubAssignmentRepo) FindByCourse(_ context.Context, courseID uuid.UUID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for _, assignment := range r.byID {
		if assignment.CourseID == courseID {
			assignments = append(assignments, *assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].DueDate.Before(assignments[j].DueDate)
	})
	return assignments, nil
}

func (r *stubAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	clone := *assignment
	clone.Course = nil
	r.byID[assignment.ID] = &clone
	return nil
}

func (r *stubAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type stubSubmissionRepo struct {
	rows        []*model.Submission
	assignments *stubAssignmentRepo
	grades      *stubGradeRepo
}

func newStubSubmissionRepo(assignments *stubAssignmentRepo) *stubSubmissionRepo {
	return &stubSubmissionRepo{assignments: assignments}
}

// CreateNumbered mirrors the locked transaction: count, limit check,
// next number.
func (r *stubSubmissionRepo) CreateNumbered(_ context.Context, submission *model.Submission, maxSubmissions int) error {
	count := 0
	for _, s := range r.rows {
		if s.AssignmentID == submission.AssignmentID && s.UserID == submission.UserID {
			count++
		}
	}

	if count >= maxSubmissions {
		return repository.ErrSubmissionLimit
	}

	submission.ID = uuid.New()
	submission.SubmissionNumber = count + 1
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	clone := *submission
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *stubSubmissionRepo) attachRelations(s model.Submission) model.Submission {
	if r.assignments != nil {
		if assignment, err := r.assignments.FindByID(context.Background(), s.AssignmentID); err == nil {
			s.Assignment = assignment
		}
	}
	if r.grades != nil {
		if grade, ok := r.grades.bySubmission[s.ID]; ok {
			clone := *grade
			s.Grade = &clone
		}
	}
	return s
}

func (r *stubSubmissionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	for _, s := range r.rows {
		if s.ID == id {
			clone := r.attachRelations(*s)
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSubmissionRepo) FindByAssignment(_ context.Context, assignmentID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	for _, s := range r.rows {
		if s.AssignmentID == assignmentID {
			submissions = append(submissions, r.attachRelations(*s))
		}
	}
	return submissions, nil
}

func (r *stubSubmissionRepo) FindLatestForUser(_ context.Context, assignmentID, userID uuid.UUID) (*model.Submission, error) {
	var latest *model.Submission
	for _, s := range r.rows {
		if s.AssignmentID == assignmentID && s.UserID == userID {
			if latest == nil || s.SubmissionNumber > latest.SubmissionNumber {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := r.attachRelations(*latest)
	return &clone, nil
}

func (r *stubSubmissionRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	for _, s := range r.rows {
		if s.UserID == userID {
			submissions = append(submissions, r.attachRelations(*s))
		}
	}
	return submissions, nil
}

func (r *stubSubmissionRepo) CountForUser(_ context.Context, assignmentID, userID uuid.UUID) (int64, error) {
	var count int64
	for _, s := range r.rows {
		if s.AssignmentID == assignmentID && s.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *stubSubmissionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.SubmissionStatus) error {
	for _, s := range r.rows {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubSubmissionRepo) FileExistsByURL(_ context.Context, fileURL string) (bool, error) {
	for _, s := range r.rows {
		for _, f := range s.Files {
			if f.FileURL == fileURL {
				return true, nil
			}
		}
	}
	return false, nil
}

type stubGradeRepo struct {
	bySubmission map[uuid.UUID]*model.Grade
}

func newStubGradeRepo() *stubGradeRepo {
	return &stubGradeRepo{bySubmission: make(map[uuid.UUID]*model.Grade)}
}

func (r *stubGradeRepo) FindBySubmission(_ context.Context, submissionID uuid.UUID) (*model.Grade, error) {
	grade, ok := r.bySubmission[submissionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *grade
	return &clone, nil
}

// Upsert mirrors the ON CONFLICT clause: one row per submission, and
// released_at only written when release is set.
func (r *stubGradeRepo) Upsert(_ context.Context, grade *model.Grade, release bool) error {
	existing, ok := r.bySubmission[grade.SubmissionID]
	if !ok {
		clone := *grade
		if clone.ID == uuid.Nil {
			clone.ID = uuid.New()
		}
		r.bySubmission[grade.SubmissionID] = &clone
		return nil
	}

	existing.GraderID = grade.GraderID
	existing.PointsEarned = grade.PointsEarned
	existing.PointsPossible = grade.PointsPossible
	existing.Percentage = grade.Percentage
	existing.LetterGrade = grade.LetterGrade
	existing.Feedback = grade.Feedback
	existing.GradedAt = grade.GradedAt
	if release {
		existing.ReleasedAt = grade.ReleasedAt
	}
	return nil
}

func (r *stubGradeRepo) Release(_ context.Context, submissionID uuid.UUID, at time.Time) (*model.Grade, error) {
	grade, ok := r.bySubmission[submissionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	grade.ReleasedAt = &at
	clone := *grade
	return &clone, nil
}

type stubAnnouncementRepo struct {
	byID    map[uuid.UUID]*model.Announcement
	courses *stubCourseRepo
}

func newStubAnnouncementRepo(courses *stubCourseRepo) *stubAnnouncementRepo {
	return &stubAnnouncementRepo{
		byID:    make(map[uuid.UUID]*model.Announcement),
		courses: courses,
	}
}

func (r *stubAnnouncementRepo) Create(_ context.Context, announcement *model.Announcement) error {
	if announcement.ID == uuid.Nil {
		announcement.ID = uuid.New()
	}
	clone := *announcement
	r.byID[announcement.ID] = &clone
	return nil
}

func (r *stubAnnouncementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Announcement, error) {
	announcement, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *announcement
	if course, ok := r.courses.byID[announcement.CourseID]; ok {
		courseClone := *course
		clone.Course = &courseClone
	}
	return &clone, nil
}

func (r *stubAnnouncementRepo) FindVisibleByCourse(_ context.Context, courseID uuid.UUID, now time.Time) ([]model.Announcement, error) {
	var announcements []model.Announcement
	for _, a := range r.byID {
		if a.CourseID != courseID || !a.IsPublished {
			continue
		}
		if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
			continue
		}
		announcements = append(announcements, *a)
	}
	return announcements, nil
}

func (r *stubAnnouncementRepo) FindByCourse(_ context.Context, courseID uuid.UUID) ([]model.Announcement, error) {
	var announcements []model.Announcement
	for _, a := range r.byID {
		if a.CourseID == courseID {
			announcements = append(announcements, *a)
		}
	}
	return announcements, nil
}

func (r *stubAnnouncementRepo) Update(_ context.Context, announcement *model.Announcement) error {
	clone := *announcement
	clone.Course = nil
	r.byID[announcement.ID] = &clone
	return nil
}

func (r *stubAnnouncementRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

type stubNotificationRepo struct {
	rows []*model.Notification
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{}
}

func (r *stubNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	clone := *notification
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *stubNotificationRepo) CreateBatch(_ context.Context, notifications []model.Notification) error {
	for i := range notifications {
		if notifications[i].ID == uuid.Nil {
			notifications[i].ID = uuid.New()
		}
		clone := notifications[i]
		r.rows = append(r.rows, &clone)
	}
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNotificationRepo) FindByUser(_ context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error) {
	var notifications []model.Notification
	for _, n := range r.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		notifications = append(notifications, *n)
		if len(notifications) == limit {
			break
		}
	}
	return notifications, nil
}

func (r *stubNotificationRepo) MarkAsRead(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.IsRead = true
			n.ReadAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID, at time.Time) error {
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
		}
	}
	return nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, n := range r.rows {
		if n.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// countForUser tallies stored notifications for a recipient.
func (r *stubNotificationRepo) countForUser(userID uuid.UUID) int {
	count := 0
	for _, n := range r.rows {
		if n.UserID == userID {
			count++
		}
	}
	return count
}

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

func newTestUser(role model.Role) *model.User {
	return &model.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.edu",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
}

func intPtr(v int) *int { return &v }

func float64Ptr(v float64) *float64 { return &v }
