package handler

import (
	"net/http"

	subjectDto "anoa.com/feedbackportal/internal/modules/subject/dto"
	subject "anoa.com/feedbackportal/internal/modules/subject/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubjectHandler struct {
	service subject.SubjectService
	log     *zap.Logger
}

func NewSubjectHandler(service subject.SubjectService, log *zap.Logger) *SubjectHandler {
	return &SubjectHandler{service: service, log: log}
}

func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req subjectDto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.CreateSubject(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *SubjectHandler) GetProfile(c *gin.Context) {
	res, err := h.service.GetProfile(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var query subjectDto.ListSubjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.ListSubjects(c.Request.Context(), query.Q)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
