package search

import (
	"context"
	"strings"

	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/feedbackportal/internal/modules/feedback/repository"
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	messageRepo "anoa.com/feedbackportal/internal/modules/message/repository"
	searchDto "anoa.com/feedbackportal/internal/modules/search/dto"
	subjectRepo "anoa.com/feedbackportal/internal/modules/subject/repository"
	teacherRepo "anoa.com/feedbackportal/internal/modules/teacher/repository"
	"anoa.com/feedbackportal/pkg/apperror"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	homeLimit    = 50
	reindexBatch = 500
)

type SearchService interface {
	Home(ctx context.Context, q string) (*searchDto.HomeResponse, error)
	FullText(ctx context.Context, query searchDto.SearchQuery) (*FeedbackHits, error)
	Reindex(ctx context.Context) (int, error)
}

type searchService struct {
	feedbackRepo feedbackRepo.FeedbackRepository
	subjectRepo  subjectRepo.SubjectRepository
	teacherRepo  teacherRepo.TeacherRepository
	messageRepo  messageRepo.MessageRepository
	indexer      FeedbackIndexer
	log          *zap.Logger
}

func NewSearchService(feedbackRepo feedbackRepo.FeedbackRepository, subjectRepo subjectRepo.SubjectRepository, teacherRepo teacherRepo.TeacherRepository, messageRepo messageRepo.MessageRepository, indexer FeedbackIndexer, log *zap.Logger) SearchService {
	return &searchService{
		feedbackRepo: feedbackRepo,
		subjectRepo:  subjectRepo,
		teacherRepo:  teacherRepo,
		messageRepo:  messageRepo,
		indexer:      indexer,
		log:          log,
	}
}

func (s *searchService) Home(ctx context.Context, q string) (*searchDto.HomeResponse, error) {
	q = strings.TrimSpace(q)

	feedbacks, err := s.feedbackRepo.Search(ctx, q, homeLimit)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjectRepo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	teachers, err := s.teacherRepo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.SearchByFeedbackTitle(ctx, q, homeLimit)
	if err != nil {
		return nil, err
	}

	resp := &searchDto.HomeResponse{
		Query:     q,
		Feedbacks: feedbackDto.NewFeedbackSummaries(feedbacks),
		Subjects:  make([]commonDto.SubjectSummary, 0, len(subjects)),
		Teachers:  make([]commonDto.TeacherSummary, 0, len(teachers)),
		Messages:  make([]messageDto.MessageSearchResult, 0, len(messages)),
	}
	for _, sub := range subjects {
		resp.Subjects = append(resp.Subjects, commonDto.SubjectSummary{Code: sub.Code, Name: sub.Name})
	}
	for _, t := range teachers {
		resp.Teachers = append(resp.Teachers, commonDto.TeacherSummary{ID: t.ID, Name: t.Name, Email: t.Email})
	}
	for _, m := range messages {
		result := messageDto.MessageSearchResult{MessageResponse: messageDto.NewMessageResponse(m, 0, nil)}
		if m.Feedback != nil {
			result.FeedbackTitle = m.Feedback.Title
		}
		resp.Messages = append(resp.Messages, result)
	}
	return resp, nil
}

func (s *searchService) FullText(ctx context.Context, query searchDto.SearchQuery) (*FeedbackHits, error) {
	if s.indexer == nil {
		return nil, apperror.Wrap(apperror.ErrUnavailable, "full-text search is disabled")
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	return s.indexer.SearchFeedback(strings.TrimSpace(query.Q), query.Limit)
}

// Reindex replaces the index contents with every stored feedback and returns
// how many documents were sent.
func (s *searchService) Reindex(ctx context.Context) (int, error) {
	if s.indexer == nil {
		return 0, nil
	}

	if err := s.indexer.ClearFeedback(); err != nil {
		return 0, err
	}

	total := 0
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := s.feedbackRepo.FindBatch(ctx, after, reindexBatch)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			break
		}
		if err := s.indexer.IndexFeedback(batch...); err != nil {
			return total, err
		}
		total += len(batch)
		after = batch[len(batch)-1].ID

		if len(batch) < reindexBatch {
			break
		}
	}

	s.log.Info("search index rebuilt", zap.Int("documents", total))
	return total, nil
}
