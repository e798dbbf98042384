package service

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

type SearchService interface {
	IndexCourse(course *model.Course) error
	IndexAnnouncement(announcement *model.Announcement) error
	DeleteAnnouncement(id string) error
	GenerateSearchToken(userRole string) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager, masterKey string) SearchService {
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &searchService{
		client:    client,
		masterKey: masterKey,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *searchService) initIndexes() {
	courseFilterable := []string{"term", "academic_year", "level", "status"}
	courseFilterableInterface := make([]any, len(courseFilterable))
	for i, v := range courseFilterable {
		courseFilterableInterface[i] = v
	}
	_, err := s.client.Index("courses").UpdateFilterableAttributes(&courseFilterableInterface)
	if err != nil {
		log.Printf("Failed to update courses filterable attributes: %v", err)
	}

	courseSortable := []string{"created_at", "academic_year"}
	_, err = s.client.Index("courses").UpdateSortableAttributes(&courseSortable)
	if err != nil {
		log.Printf("Failed to update courses sortable attributes: %v", err)
	}

	annFilterable := []string{"course_id", "is_pinned"}
	annFilterableInterface := make([]any, len(annFilterable))
	for i, v := range annFilterable {
		annFilterableInterface[i] = v
	}
	_, err = s.client.Index("announcements").UpdateFilterableAttributes(&annFilterableInterface)
	if err != nil {
		log.Printf("Failed to update announcements filterable attributes: %v", err)
	}

	annSortable := []string{"published_at"}
	_, err = s.client.Index("announcements").UpdateSortableAttributes(&annSortable)
	if err != nil {
		log.Printf("Failed to update announcements sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"courses", "announcements"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliCourseDoc struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Term         string `json:"term"`
	AcademicYear int    `json:"academic_year"`
	Level        string `json:"level"`
	Status       string `json:"status"`
	Instructor   string `json:"instructor"`
	CreatedAt    int64  `json:"created_at"`
}

type meiliAnnouncementDoc struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPinned    bool   `json:"is_pinned"`
	PublishedAt int64  `json:"published_at"`
}

func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	cleanText = strings.Join(strings.Fields(cleanText), " ")

	return cleanText
}

func (s *searchService) IndexCourse(course *model.Course) error {
	doc := meiliCourseDoc{
		ID:           course.ID.String(),
		Code:         course.Code,
		Title:        course.Title,
		Description:  s.cleanContentForIndex(getStringOrEmpty(course.Description)),
		Term:         course.Term,
		AcademicYear: course.AcademicYear,
		Level:        getStringOrEmpty(course.Level),
		Status:       course.Status,
		CreatedAt:    course.CreatedAt.Unix(),
	}
	if course.Instructor != nil {
		doc.Instructor = course.Instructor.FullName()
	}

	task, err := s.client.Index("courses").AddDocuments([]meiliCourseDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed course %s, task id: %d", course.ID, task.TaskUID)
	return nil
}

func (s *searchService) IndexAnnouncement(announcement *model.Announcement) error {
	doc := meiliAnnouncementDoc{
		ID:       announcement.ID.String(),
		CourseID: announcement.CourseID.String(),
		Title:    announcement.Title,
		Content:  s.cleanContentForIndex(announcement.Content),
		IsPinned: announcement.IsPinned,
	}
	if announcement.PublishedAt != nil {
		doc.PublishedAt = announcement.PublishedAt.Unix()
	}

	task, err := s.client.Index("announcements").AddDocuments([]meiliAnnouncementDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed announcement %s, task id: %d", announcement.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteAnnouncement(id string) error {
	_, err := s.client.Index("announcements").DeleteDocument(id)
	return err
}

// GenerateSearchToken returns a tenant token scoped to the caller's
// role. Staff and admins search everything; students only published
// courses and announcements.
func (s *searchService) GenerateSearchToken(userRole string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		"courses":       map[string]any{"filter": nil},
		"announcements": map[string]any{"filter": nil},
	}

	if model.Role(userRole) == model.RoleStudent {
		searchRules["courses"] = map[string]any{
			"filter": "status = 'published'",
		}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
