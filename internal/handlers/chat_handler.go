package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.POST("/conversations", h.CreateConversation)
		chat.GET("/conversations", h.GetMyConversations)
		chat.GET("/conversations/:conversationId", h.GetConversation)
		chat.POST("/conversations/:conversationId/messages", h.SendMessage)
		chat.PUT("/conversations/:conversationId/read", h.MarkAsRead)
	}

	admin := r.Group("/admin/chat")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("/conversations", h.ListConversations)
		admin.PUT("/conversations/:conversationId/assign", h.AssignAdmin)
	}
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conversation, err := h.chatService.CreateConversation(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

func (h *ChatHandler) GetMyConversations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.GetUserConversations(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversation, err := h.chatService.GetConversation(h.GetDB(c), userID, c.Param("conversationId"), h.IsAdmin(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendChatMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(h.GetDB(c), userID, c.Param("conversationId"), &req, h.IsAdmin(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.MarkAsRead(h.GetDB(c), userID, c.Param("conversationId"), h.IsAdmin(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Messages marked as read"})
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	conversations, total, err := h.chatService.ListConversations(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(conversations, total, page, pageSize))
}

// AssignAdmin закрепляет текущего администратора за диалогом.
func (h *ChatHandler) AssignAdmin(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.AssignAdmin(h.GetDB(c), c.Param("conversationId"), adminID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Conversation assigned"})
}
