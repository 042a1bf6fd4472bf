package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.POST("", h.CreateApplication)
		applications.GET("", h.GetMyApplications)
		applications.GET("/:applicationId", h.GetApplication)
		applications.PUT("/:applicationId", h.UpdateApplication)
		applications.DELETE("/:applicationId", h.DeleteApplication)
	}

	admin := r.Group("/admin/applications")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("", h.ListApplications)
		admin.GET("/stats", h.GetStats)
		admin.PUT("/:applicationId/status", h.ChangeStatus)
	}
}

// CreateApplication godoc
// @Summary Подать заявку на визу
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Данные заявки"
// @Success 201 {object} dto.ApplicationResponse
// @Security BearerAuth
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.CreateApplication(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)

	applications, total, err := h.applicationService.GetUserApplications(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(applications, total, page, pageSize))
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.GetApplication(h.GetDB(c), userID, c.Param("applicationId"), h.IsAdmin(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.UpdateApplication(h.GetDB(c), userID, c.Param("applicationId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.applicationService.DeleteApplication(h.GetDB(c), userID, c.Param("applicationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Application deleted"})
}

func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	filter := repositories.ApplicationFilter{
		UserID:    c.Query("user_id"),
		CountryID: c.Query("country_id"),
		Status:    models.ApplicationStatus(c.Query("status")),
		VisaType:  models.VisaType(c.Query("visa_type")),
		Page:      page,
		PageSize:  pageSize,
	}

	applications, total, err := h.applicationService.ListApplications(h.GetDB(c), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(applications, total, page, pageSize))
}

func (h *ApplicationHandler) GetStats(c *gin.Context) {
	stats, err := h.applicationService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ChangeStatus переводит заявку в новый статус и уведомляет пользователя.
func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.ChangeStatus(h.GetDB(c), c.Param("applicationId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}
