package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	*BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(base *BaseHandler, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
	}
}

func (h *DocumentHandler) RegisterRoutes(r *gin.RouterGroup) {
	documents := r.Group("/documents")
	documents.Use(middleware.AuthMiddleware())
	{
		documents.POST("", h.UploadDocument)
		documents.GET("", h.GetMyDocuments)
		documents.DELETE("/:documentId", h.DeleteDocument)
	}
}

// UploadDocument godoc
// @Summary Загрузить документ
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл документа"
// @Success 201 {object} dto.DocumentResponse
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	document, err := h.documentService.Upload(h.GetDB(c), c.Request.Context(), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, document)
}

func (h *DocumentHandler) GetMyDocuments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	documents, err := h.documentService.GetUserDocuments(h.GetDB(c), c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(h.GetDB(c), c.Request.Context(), userID, c.Param("documentId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Document deleted"})
}
