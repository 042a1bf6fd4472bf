package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type ProbabilityHandler struct {
	*BaseHandler
	probabilityService services.ProbabilityService
}

func NewProbabilityHandler(base *BaseHandler, probabilityService services.ProbabilityService) *ProbabilityHandler {
	return &ProbabilityHandler{
		BaseHandler:        base,
		probabilityService: probabilityService,
	}
}

func (h *ProbabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	probability := r.Group("/probability")
	probability.Use(middleware.AuthMiddleware())
	{
		probability.POST("/estimate", h.Estimate)
		probability.GET("/history", h.GetHistory)
	}
}

// Estimate godoc
// @Summary Оценить вероятность одобрения визы
// @Description Доступно только пользователям с активной подпиской
// @Tags probability
// @Accept json
// @Produce json
// @Param request body dto.ProbabilityRequest true "Профиль заявителя"
// @Success 200 {object} dto.ProbabilityResponse
// @Failure 403 {object} apperrors.AppError "Требуется подписка"
// @Security BearerAuth
// @Router /probability/estimate [post]
func (h *ProbabilityHandler) Estimate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ProbabilityRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.probabilityService.Estimate(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProbabilityHandler) GetHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)

	history, total, err := h.probabilityService.GetHistory(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(history, total, page, pageSize))
}
