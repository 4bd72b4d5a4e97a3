package dto

import (
	"anoa.com/feedbackportal/internal/entity"
	commonDto "anoa.com/feedbackportal/pkg/dto"
)

type NotificationFilter struct {
	commonDto.PaginationQuery
	UnreadOnly bool `form:"unread"`
}

type PaginatedNotificationResponse struct {
	Data []entity.Notification    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
