package handler

import (
	"net/http"

	"anoa.com/feedbackportal/internal/entity"
	voteDto "anoa.com/feedbackportal/internal/modules/vote/dto"
	vote "anoa.com/feedbackportal/internal/modules/vote/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VoteHandler struct {
	service vote.VoteService
	log     *zap.Logger
}

func NewVoteHandler(service vote.VoteService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{service: service, log: log}
}

// ToggleVote handles POST /votes with the kind in the body.
func (h *VoteHandler) ToggleVote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req voteDto.ToggleVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	h.toggle(c, userID, req.MessageID, req.Kind)
}

func (h *VoteHandler) Upvote(c *gin.Context) {
	h.toggleFromPath(c, entity.VoteUp)
}

func (h *VoteHandler) Downvote(c *gin.Context) {
	h.toggleFromPath(c, entity.VoteDown)
}

func (h *VoteHandler) toggleFromPath(c *gin.Context, kind entity.VoteKind) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	h.toggle(c, userID, messageID, kind)
}

func (h *VoteHandler) toggle(c *gin.Context, userID, messageID uuid.UUID, kind entity.VoteKind) {
	resp, err := h.service.ToggleVote(c.Request.Context(), userID, messageID, kind)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *VoteHandler) GetScore(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	score, err := h.service.Score(c.Request.Context(), messageID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, voteDto.ScoreResponse{MessageID: messageID, Score: score})
}
