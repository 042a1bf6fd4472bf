package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Витрина тарифов публичная
	plans := r.Group("/plans")
	{
		plans.GET("", h.ListPlans)
		plans.GET("/:planId", h.GetPlan)
	}

	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.POST("/request", h.RequestSubscription)
		subscriptions.GET("/my", h.GetMySubscription)
		subscriptions.GET("/entitlement", h.GetEntitlement)
		subscriptions.GET("/payments", h.ListPayments)
		subscriptions.PUT("/cancel", h.CancelSubscription)
	}

	adminPlans := r.Group("/admin/plans")
	adminPlans.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		adminPlans.POST("", h.CreatePlan)
		adminPlans.PUT("/:planId", h.UpdatePlan)
		adminPlans.DELETE("/:planId", h.DeactivatePlan)
	}

	adminSubs := r.Group("/admin/subscriptions")
	adminSubs.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		adminSubs.GET("", h.ListRequests)
		adminSubs.PUT("/:subscriptionId/approve", h.ApproveSubscription)
		adminSubs.PUT("/:subscriptionId/reject", h.RejectSubscription)
	}
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	// Скрытые тарифы видит только админ
	includeInactive := h.IsAdmin(c) && c.Query("include_inactive") == "true"

	plans, err := h.subscriptionService.ListPlans(h.GetDB(c), includeInactive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	plan, err := h.subscriptionService.GetPlan(h.GetDB(c), c.Param("planId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// RequestSubscription godoc
// @Summary Запросить премиум-подписку
// @Description Создает заявку на подписку, которую рассматривает администратор
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body dto.RequestSubscriptionRequest true "Тариф и автопродление"
// @Success 201 {object} dto.UserSubscriptionResponse
// @Failure 409 {object} apperrors.AppError "У пользователя уже есть активная заявка или подписка"
// @Security BearerAuth
// @Router /subscriptions/request [post]
func (h *SubscriptionHandler) RequestSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RequestSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	subscription, err := h.subscriptionService.RequestSubscription(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.GetMySubscription(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) GetEntitlement(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	entitlement, err := h.subscriptionService.GetEntitlement(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entitlement)
}

// ListPayments возвращает историю платежей пользователя.
func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	payments, err := h.subscriptionService.ListPayments(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// CancelSubscription отключает подписку: снимает is_active и автопродление.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.CancelSubscription(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.subscriptionService.CreatePlan(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(h.GetDB(c), c.Param("planId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *SubscriptionHandler) DeactivatePlan(c *gin.Context) {
	if err := h.subscriptionService.DeactivatePlan(h.GetDB(c), c.Param("planId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Plan deactivated"})
}

func (h *SubscriptionHandler) ListRequests(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	status := models.SubscriptionStatus(c.DefaultQuery("status", string(models.SubscriptionStatusPending)))

	requests, total, err := h.subscriptionService.ListRequests(h.GetDB(c), status, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(requests, total, page, pageSize))
}

// ApproveSubscription godoc
// @Summary Одобрить заявку на подписку
// @Description Устанавливает даты действия и включает подписку
// @Tags admin
// @Param subscriptionId path string true "ID заявки"
// @Param request body dto.ProcessSubscriptionRequest false "Комментарий администратора"
// @Success 200 {object} dto.UserSubscriptionResponse
// @Security BearerAuth
// @Router /admin/subscriptions/{subscriptionId}/approve [put]
func (h *SubscriptionHandler) ApproveSubscription(c *gin.Context) {
	var req dto.ProcessSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	subscription, err := h.subscriptionService.ApproveSubscription(h.GetDB(c), c.Param("subscriptionId"), req.AdminNotes)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) RejectSubscription(c *gin.Context) {
	var req dto.ProcessSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	subscription, err := h.subscriptionService.RejectSubscription(h.GetDB(c), c.Param("subscriptionId"), req.AdminNotes)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}
