package handler

import (
	"net/http"

	messageDto "anoa.com/feedbackportal/internal/modules/message/dto"
	message "anoa.com/feedbackportal/internal/modules/message/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageHandler struct {
	service message.MessageService
	log     *zap.Logger
}

func NewMessageHandler(service message.MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{service: service, log: log}
}

// CreateMessage handles POST /feedbacks/:id/messages.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	var req messageDto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.CreateMessage(c.Request.Context(), userID, feedbackID, req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	var req messageDto.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.UpdateMessage(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
