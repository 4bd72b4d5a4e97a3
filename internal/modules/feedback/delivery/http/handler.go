package handler

import (
	"context"
	"net/http"

	feedbackDto "anoa.com/feedbackportal/internal/modules/feedback/dto"
	feedback "anoa.com/feedbackportal/internal/modules/feedback/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	service feedback.FeedbackService
	log     *zap.Logger
}

func NewFeedbackHandler(service feedback.FeedbackService, log *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, log: log}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	h.create(c, h.service.CreateFeedback)
}

func (h *FeedbackHandler) CreateForumFeedback(c *gin.Context) {
	h.create(c, h.service.CreateForumFeedback)
}

type createFunc func(ctx context.Context, actor uuid.UUID, req feedbackDto.CreateFeedbackRequest) (*feedbackDto.FeedbackResponse, error)

func (h *FeedbackHandler) create(c *gin.Context, fn createFunc) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req feedbackDto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := fn(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// GetThread is public; an authenticated viewer also sees their own votes.
func (h *FeedbackHandler) GetThread(c *gin.Context) {
	var req feedbackDto.GetFeedbackRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}
	id := uuid.MustParse(req.ID)

	res, err := h.service.GetThread(c.Request.Context(), response.OptionalUserID(c), id)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	if err := h.service.DeleteFeedback(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "feedback deleted"})
}
