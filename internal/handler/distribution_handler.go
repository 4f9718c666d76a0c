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

// DistributionHandler exposes the homework distribution endpoints.
type DistributionHandler struct {
	distributor *service.DistributorService
	exporter    *service.ExportService
	metrics     *service.MetricsService
}

// NewDistributionHandler constructs DistributionHandler.
func NewDistributionHandler(distributor *service.DistributorService, exporter *service.ExportService, metrics *service.MetricsService) *DistributionHandler {
	return &DistributionHandler{distributor: distributor, exporter: exporter, metrics: metrics}
}

// Distribute godoc
// @Summary Run a homework distribution
// @Tags Distributions
// @Accept json
// @Produce json
// @Param payload body models.DistributionParams true "Distribution parameters"
// @Success 201 {object} response.Envelope
// @Router /v1/products/distribute [post]
func (h *DistributionHandler) Distribute(c *gin.Context) {
	var params models.DistributionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid distribution payload"))
		return
	}

	snapshot, err := h.distributor.Distribute(c.Request.Context(), params)
	h.metrics.ObserveDistribution(plannedCount(snapshot), rejectedReasons(snapshot), err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snapshot)
}

// Get godoc
// @Summary Get a stored distribution snapshot
// @Tags Distributions
// @Produce json
// @Param id path int true "Distribution id"
// @Success 200 {object} response.Envelope
// @Router /v1/distributions/{id} [get]
func (h *DistributionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid distribution id"))
		return
	}
	distribution, err := h.distributor.GetDistribution(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil)
}

// Export godoc
// @Summary Export a distribution snapshot as csv or pdf
// @Tags Distributions
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Distribution id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /v1/distributions/{id}/export [get]
func (h *DistributionHandler) Export(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid distribution id"))
		return
	}
	distribution, err := h.distributor.GetDistribution(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.RenderDistribution(distribution, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func plannedCount(snapshot *models.DistributionSnapshot) int {
	if snapshot == nil {
		return 0
	}
	total := 0
	for _, plan := range snapshot.Reviewers {
		total += len(plan.Current)
	}
	return total
}

func rejectedReasons(snapshot *models.DistributionSnapshot) map[string]int {
	if snapshot == nil {
		return nil
	}
	reasons := make(map[string]int)
	for _, eh := range snapshot.ErrorHomeworks {
		reasons[string(eh.Message)]++
	}
	return reasons
}
