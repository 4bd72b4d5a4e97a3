package search

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/feedbackportal/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// FeedbackIndexer keeps the full-text index in step with stored feedback.
type FeedbackIndexer interface {
	IndexFeedback(feedbacks ...*entity.Feedback) error
	DeleteFeedback(id string) error
	ClearFeedback() error
	SearchFeedback(q string, limit int64) (*FeedbackHits, error)
}

type FeedbackDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	SubjectCode string   `json:"subject_code,omitempty"`
	SubjectName string   `json:"subject_name,omitempty"`
	TeacherID   uint     `json:"teacher_id,omitempty"`
	TeacherName string   `json:"teacher_name,omitempty"`
	Author      string   `json:"author,omitempty"`
	Stars       *float64 `json:"stars"`
	CreatedAt   int64    `json:"created_at"`
}

type FeedbackHits struct {
	Hits               []FeedbackDocument `json:"hits"`
	EstimatedTotalHits int64              `json:"estimatedTotalHits"`
}

type meiliIndexer struct {
	client    meilisearch.ServiceManager
	index     string
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

func NewMeiliIndexer(client meilisearch.ServiceManager, index string, log *zap.Logger) FeedbackIndexer {
	s := &meiliIndexer{
		client:    client,
		index:     index,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndex()
	return s
}

func (s *meiliIndexer) initIndex() {
	filterableAttrs := []string{"subject_code", "teacher_id", "stars"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(s.index).UpdateFilterableAttributes(&filterableInterface); err != nil {
		s.log.Warn("failed to update filterable attributes", zap.String("index", s.index), zap.Error(err))
	}

	sortableAttrs := []string{"created_at", "stars"}
	if _, err := s.client.Index(s.index).UpdateSortableAttributes(&sortableAttrs); err != nil {
		s.log.Warn("failed to update sortable attributes", zap.String("index", s.index), zap.Error(err))
	}
}

// CleanContent strips markup so only readable text reaches the index.
func CleanContent(sanitizer *bluemonday.Policy, content string) string {
	// Replace block tags with spaces to prevent text merging
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func NewFeedbackDocument(sanitizer *bluemonday.Policy, f *entity.Feedback) FeedbackDocument {
	doc := FeedbackDocument{
		ID:        f.ID.String(),
		Title:     CleanContent(sanitizer, f.Title),
		Body:      CleanContent(sanitizer, f.Body),
		Stars:     f.Stars,
		CreatedAt: f.CreatedAt.Unix(),
	}
	if f.SubjectCode != nil {
		doc.SubjectCode = *f.SubjectCode
	}
	if f.Subject != nil {
		doc.SubjectName = f.Subject.Name
	}
	if f.TeacherID != nil {
		doc.TeacherID = *f.TeacherID
	}
	if f.Teacher != nil {
		doc.TeacherName = f.Teacher.Name
	}
	if f.Author != nil {
		doc.Author = f.Author.Username
	}
	return doc
}

func (s *meiliIndexer) IndexFeedback(feedbacks ...*entity.Feedback) error {
	if len(feedbacks) == 0 {
		return nil
	}

	docs := make([]FeedbackDocument, 0, len(feedbacks))
	for _, f := range feedbacks {
		docs = append(docs, NewFeedbackDocument(s.sanitizer, f))
	}

	task, err := s.client.Index(s.index).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index feedback: %w", err)
	}
	s.log.Debug("indexed feedback", zap.Int("count", len(docs)), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliIndexer) DeleteFeedback(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

func (s *meiliIndexer) ClearFeedback() error {
	_, err := s.client.Index(s.index).DeleteAllDocuments()
	return err
}

func (s *meiliIndexer) SearchFeedback(q string, limit int64) (*FeedbackHits, error) {
	raw, err := s.client.Index(s.index).SearchRaw(q, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits FeedbackHits
	if err := json.Unmarshal(*raw, &hits); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if hits.Hits == nil {
		hits.Hits = []FeedbackDocument{}
	}
	return &hits, nil
}

func strPtr(s string) *string {
	return &s
}
