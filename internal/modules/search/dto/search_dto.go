package dto

import (
	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	commonDto "anoa.com/feedbackportal/pkg/dto"
)

type SearchQuery struct {
	Q     string `form:"q" binding:"max=100"`
	Limit int64  `form:"limit,default=20" binding:"min=1,max=100"`
}

type HomeResponse struct {
	Query     string                           `json:"query"`
	Feedbacks []commonDto.FeedbackSummary      `json:"feedbacks"`
	Subjects  []commonDto.SubjectSummary       `json:"subjects"`
	Teachers  []commonDto.TeacherSummary       `json:"teachers"`
	Messages  []messageDto.MessageSearchResult `json:"messages"`
}
