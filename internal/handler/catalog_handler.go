package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/service"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
	"github.com/noah-isme/course-backoffice-api/pkg/response"
)

// CatalogHandler exposes the read-only subject and product catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /v1/subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalog.ListSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// GetSubject godoc
// @Summary Get a subject by id
// @Tags Catalog
// @Produce json
// @Param id path int true "Subject id"
// @Success 200 {object} response.Envelope
// @Router /v1/subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid subject id"))
		return
	}
	subject, err := h.catalog.GetSubject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// ListProducts godoc
// @Summary List products
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, nil)
}

// teacherProductStatsView flattens the stats row with the derived ratios.
type teacherProductStatsView struct {
	*models.TeacherProductStats
	Fullness     float64 `json:"fullness"`
	Removability float64 `json:"removability"`
	RatingCoef   float64 `json:"rating_coef"`
}

// GetTeacherProductStats godoc
// @Summary Get a teacher product with assignment aggregates
// @Tags Catalog
// @Produce json
// @Param id path int true "Teacher product id"
// @Success 200 {object} response.Envelope
// @Router /v1/teacher-products/{id}/stats [get]
func (h *CatalogHandler) GetTeacherProductStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher product id"))
		return
	}
	stats, err := h.catalog.GetTeacherProductStats(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacherProductStatsView{
		TeacherProductStats: stats,
		Fullness:            stats.Fullness(),
		Removability:        stats.Removability(),
		RatingCoef:          stats.RatingCoef(),
	}, nil)
}

// GetProduct godoc
// @Summary Get a product by id
// @Tags Catalog
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} response.Envelope
// @Router /v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid product id"))
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}
