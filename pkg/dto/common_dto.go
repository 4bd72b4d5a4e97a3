package dto

import "github.com/google/uuid"

type AuthorResponse struct {
	ID       *uuid.UUID `json:"id"`
	Username string     `json:"username"`
}

type PaginationQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

func (q PaginationQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

func NewPaginationMeta(q PaginationQuery, total int64) PaginationMeta {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return PaginationMeta{
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       q.Limit,
	}
}

type SubjectSummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type TeacherSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

type FeedbackSummary struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Stars     *float64        `json:"stars"`
	Subject   *SubjectSummary `json:"subject"`
	Teacher   *TeacherSummary `json:"teacher"`
	Author    AuthorResponse  `json:"author"`
	CreatedAt string          `json:"created_at"`
}
