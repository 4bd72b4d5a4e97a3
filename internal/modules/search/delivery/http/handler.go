package handler

import (
	"net/http"

	searchDto "anoa.com/feedbackportal/internal/modules/search/dto"
	search "anoa.com/feedbackportal/internal/modules/search/service"
	"anoa.com/feedbackportal/pkg/response"
	"anoa.com/feedbackportal/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	service search.SearchService
	log     *zap.Logger
}

func NewSearchHandler(service search.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{service: service, log: log}
}

func (h *SearchHandler) Home(c *gin.Context) {
	var query searchDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	resp, err := h.service.Home(c.Request.Context(), query.Q)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Search(c *gin.Context) {
	var query searchDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, h.log, validator.BindingError(err))
		return
	}

	hits, err := h.service.FullText(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, hits)
}
