package handler

import (
	"net/http"

	teacherDto "anoa.com/feedbackportal/internal/modules/teacher/dto"
	teacher "anoa.com/feedbackportal/internal/modules/teacher/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TeacherHandler struct {
	service teacher.TeacherService
	log     *zap.Logger
}

func NewTeacherHandler(service teacher.TeacherService, log *zap.Logger) *TeacherHandler {
	return &TeacherHandler{service: service, log: log}
}

func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req teacherDto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.CreateTeacher(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TeacherHandler) GetProfile(c *gin.Context) {
	var req teacherDto.GetTeacherRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid teacher id")
		return
	}

	res, err := h.service.GetProfile(c.Request.Context(), req.ID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var query teacherDto.ListTeachersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	res, err := h.service.ListTeachers(c.Request.Context(), query.Q)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
