package handlers

import (
	"net/http"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/services"

	"github.com/gin-gonic/gin"
)

type CountryHandler struct {
	*BaseHandler
	countryService services.CountryService
}

func NewCountryHandler(base *BaseHandler, countryService services.CountryService) *CountryHandler {
	return &CountryHandler{
		BaseHandler:    base,
		countryService: countryService,
	}
}

func (h *CountryHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Справочник стран публичный
	countries := r.Group("/countries")
	{
		countries.GET("", h.ListCountries)
		countries.GET("/:countryId", h.GetCountry)
		countries.GET("/:countryId/fees", h.GetCountryFees)
	}

	// Калькулятор стоимости требует авторизации
	r.POST("/visa-cost", middleware.AuthMiddleware(), h.EstimateCost)

	adminCountries := r.Group("/admin/countries")
	adminCountries.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		adminCountries.POST("", h.CreateCountry)
		adminCountries.PUT("/:countryId", h.UpdateCountry)
		adminCountries.DELETE("/:countryId", h.DeleteCountry)
		adminCountries.PUT("/:countryId/fees", h.SetVisaFee)
	}
}

func (h *CountryHandler) ListCountries(c *gin.Context) {
	region := c.Query("region")

	countries, err := h.countryService.ListCountries(h.GetDB(c), region)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"countries": countries,
		"total":     len(countries),
	})
}

func (h *CountryHandler) GetCountry(c *gin.Context) {
	country, err := h.countryService.GetCountry(h.GetDB(c), c.Param("countryId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

func (h *CountryHandler) GetCountryFees(c *gin.Context) {
	fees, err := h.countryService.GetCountryFees(h.GetDB(c), c.Param("countryId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fees": fees})
}

func (h *CountryHandler) EstimateCost(c *gin.Context) {
	var req dto.CostEstimateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	estimate, err := h.countryService.EstimateCost(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, estimate)
}

func (h *CountryHandler) CreateCountry(c *gin.Context) {
	var req dto.CreateCountryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	country, err := h.countryService.CreateCountry(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, country)
}

func (h *CountryHandler) UpdateCountry(c *gin.Context) {
	var req dto.UpdateCountryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	country, err := h.countryService.UpdateCountry(h.GetDB(c), c.Param("countryId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

func (h *CountryHandler) DeleteCountry(c *gin.Context) {
	if err := h.countryService.DeleteCountry(h.GetDB(c), c.Param("countryId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Country deleted"})
}

func (h *CountryHandler) SetVisaFee(c *gin.Context) {
	var req dto.SetVisaFeeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	fee, err := h.countryService.SetVisaFee(h.GetDB(c), c.Param("countryId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, fee)
}
