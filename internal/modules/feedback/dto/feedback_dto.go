package dto

import (
	"time"

	"anoa.com/feedbackportal/internal/entity"
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"github.com/google/uuid"
)

const timeLayout = time.RFC3339

type CreateFeedbackRequest struct {
	SubjectCode *string  `json:"subject_code" binding:"omitempty,course_code"`
	TeacherID   *uint    `json:"teacher_id" binding:"omitempty,min=1"`
	Title       string   `json:"title" binding:"required,max=40"`
	Body        string   `json:"body" binding:"required"`
	Stars       *float64 `json:"stars" binding:"omitempty,half_star"`
}

type GetFeedbackRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type FeedbackResponse struct {
	commonDto.FeedbackSummary
	Body string `json:"body"`
}

type ThreadResponse struct {
	Feedback     FeedbackResponse             `json:"feedback"`
	Messages     []messageDto.MessageResponse `json:"messages"`
	Participants []commonDto.AuthorResponse   `json:"participants"`
}

func NewAuthorResponse(u *entity.User) commonDto.AuthorResponse {
	if u == nil || u.ID == uuid.Nil {
		return commonDto.AuthorResponse{Username: "Unknown"}
	}
	id := u.ID
	return commonDto.AuthorResponse{ID: &id, Username: u.Username}
}

func NewFeedbackSummary(f *entity.Feedback) commonDto.FeedbackSummary {
	summary := commonDto.FeedbackSummary{
		ID:        f.ID,
		Title:     f.Title,
		Stars:     f.Stars,
		Author:    NewAuthorResponse(f.Author),
		CreatedAt: f.CreatedAt.Format(timeLayout),
	}
	if f.Subject != nil {
		summary.Subject = &commonDto.SubjectSummary{Code: f.Subject.Code, Name: f.Subject.Name}
	} else if f.SubjectCode != nil {
		summary.Subject = &commonDto.SubjectSummary{Code: *f.SubjectCode}
	}
	if f.Teacher != nil {
		summary.Teacher = &commonDto.TeacherSummary{ID: f.Teacher.ID, Name: f.Teacher.Name, Email: f.Teacher.Email}
	} else if f.TeacherID != nil {
		summary.Teacher = &commonDto.TeacherSummary{ID: *f.TeacherID}
	}
	return summary
}

func NewFeedbackSummaries(feedbacks []*entity.Feedback) []commonDto.FeedbackSummary {
	out := make([]commonDto.FeedbackSummary, 0, len(feedbacks))
	for _, f := range feedbacks {
		out = append(out, NewFeedbackSummary(f))
	}
	return out
}

func NewFeedbackResponse(f *entity.Feedback) FeedbackResponse {
	return FeedbackResponse{FeedbackSummary: NewFeedbackSummary(f), Body: f.Body}
}
