package dto

import (
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"anoa.com/feedbackportal/pkg/rating"
)

type CreateSubjectRequest struct {
	Code string `json:"code" binding:"required,course_code"`
	Name string `json:"name" binding:"required,max=100"`
}

type ListSubjectsQuery struct {
	Q string `form:"q" binding:"max=100"`
}

// SubjectProfileResponse carries the subject with its feedback and the
// rating derived from it at read time.
type SubjectProfileResponse struct {
	commonDto.SubjectSummary
	rating.Summary
	Teachers  []string                    `json:"teachers"`
	Feedbacks []commonDto.FeedbackSummary `json:"feedbacks"`
}
