package testutil

import (
	"strings"
	"sync"

	"anoa.com/feedbackportal/internal/entity"
	search "anoa.com/feedbackportal/internal/modules/search/service"
)

// RecordingIndexer is an in-memory search.FeedbackIndexer.
type RecordingIndexer struct {
	mu      sync.Mutex
	Docs    map[string]*entity.Feedback
	Deleted []string
	Clears  int
}

var _ search.FeedbackIndexer = (*RecordingIndexer)(nil)

func NewRecordingIndexer() *RecordingIndexer {
	return &RecordingIndexer{Docs: make(map[string]*entity.Feedback)}
}

func (r *RecordingIndexer) IndexFeedback(feedbacks ...*entity.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range feedbacks {
		r.Docs[f.ID.String()] = f
	}
	return nil
}

func (r *RecordingIndexer) DeleteFeedback(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Docs, id)
	r.Deleted = append(r.Deleted, id)
	return nil
}

func (r *RecordingIndexer) ClearFeedback() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Docs = make(map[string]*entity.Feedback)
	r.Clears++
	return nil
}

func (r *RecordingIndexer) SearchFeedback(q string, limit int64) (*search.FeedbackHits, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hits := &search.FeedbackHits{Hits: []search.FeedbackDocument{}}
	for _, f := range r.Docs {
		if int64(len(hits.Hits)) >= limit {
			break
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Title), strings.ToLower(q)) {
			continue
		}
		hits.Hits = append(hits.Hits, search.FeedbackDocument{ID: f.ID.String(), Title: f.Title})
	}
	hits.EstimatedTotalHits = int64(len(hits.Hits))
	return hits, nil
}

func (r *RecordingIndexer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Docs)
}
