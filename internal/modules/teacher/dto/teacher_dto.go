package dto

import (
	commonDto "anoa.com/feedbackportal/pkg/dto"
	"anoa.com/feedbackportal/pkg/rating"
)

type CreateTeacherRequest struct {
	Name  string  `json:"name" binding:"required,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=100"`
}

type GetTeacherRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type ListTeachersQuery struct {
	Q string `form:"q" binding:"max=100"`
}

type TeacherProfileResponse struct {
	commonDto.TeacherSummary
	rating.Summary
	Subjects  []string                    `json:"subjects"`
	Feedbacks []commonDto.FeedbackSummary `json:"feedbacks"`
}
