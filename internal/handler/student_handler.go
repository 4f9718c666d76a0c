package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice-api/internal/dto"
	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/service"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
	"github.com/noah-isme/course-backoffice-api/pkg/response"
)

// StudentHandler exposes the enrollment and expulsion endpoints.
type StudentHandler struct {
	enroller  *service.EnrollerService
	expulsion *service.ExpulsionService
	metrics   *service.MetricsService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(enroller *service.EnrollerService, expulsion *service.ExpulsionService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{enroller: enroller, expulsion: expulsion, metrics: metrics}
}

// studentProductView adds the teacher_state projection to the raw row.
type studentProductView struct {
	*models.StudentProduct
	TeacherState models.TeacherState `json:"teacher_state"`
}

func viewOf(sp *models.StudentProduct) studentProductView {
	return studentProductView{StudentProduct: sp, TeacherState: sp.TeacherState()}
}

// Enroll godoc
// @Summary Enroll a student through an offer
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /v1/students [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload"))
		return
	}

	newStudent := service.NewStudent{
		VKID:      req.Student.VKID,
		SohoID:    req.Student.SohoID,
		Email:     req.Student.Email,
		FirstName: req.Student.FirstName,
		LastName:  req.Student.LastName,
		FlowID:    req.Student.SohoFlowID(),
	}
	sp, err := h.enroller.EnrollStudent(c.Request.Context(), newStudent, req.OfferIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.IncEnrollment()
	response.Created(c, viewOf(sp))
}

// Expulse godoc
// @Summary Expulse a student from a product
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.ExpulseStudentRequest true "Expulsion payload"
// @Success 200 {object} response.Envelope
// @Router /v1/students/expulse [post]
func (h *StudentHandler) Expulse(c *gin.Context) {
	var req dto.ExpulseStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expulsion payload"))
		return
	}

	sp, err := h.expulsion.ExpulseStudentByProduct(c.Request.Context(), req.VKID, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.IncExpulsion()
	response.JSON(c, http.StatusOK, viewOf(sp), nil)
}

// ChangeTeacher godoc
// @Summary Repoint a student product at another teacher
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.ChangeTeacherRequest true "Teacher change payload"
// @Success 200 {object} response.Envelope
// @Router /v1/students/change-teacher [post]
func (h *StudentHandler) ChangeTeacher(c *gin.Context) {
	var req dto.ChangeTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher change payload"))
		return
	}

	sp, err := h.enroller.ChangeTeacherForStudent(c.Request.Context(), req.ProductID, req.StudentVKID, req.TeacherVKID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(sp), nil)
}

// ChangeVKID godoc
// @Summary Rebind the vk id of the student behind a soho account
// @Tags Students
// @Accept json
// @Produce json
// @Param soho_id path int true "Soho account id"
// @Param payload body dto.ChangeVKIDRequest true "New vk id"
// @Success 200 {object} response.Envelope
// @Router /v1/students/soho/{soho_id}/change-vk-id [post]
func (h *StudentHandler) ChangeVKID(c *gin.Context) {
	sohoID, err := strconv.ParseInt(c.Param("soho_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid soho id"))
		return
	}
	var req dto.ChangeVKIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vk id payload"))
		return
	}

	student, err := h.enroller.ChangeStudentVKID(c.Request.Context(), sohoID, req.VKID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// GradeTeacher godoc
// @Summary Record a student's grade for their teacher
// @Tags Students
// @Accept json
// @Produce json
// @Param soho_id path int true "Soho account id"
// @Param payload body dto.GradeTeacherRequest true "Grade payload"
// @Success 204 "No Content"
// @Router /v1/students/soho/{soho_id}/grade-teacher [post]
func (h *StudentHandler) GradeTeacher(c *gin.Context) {
	sohoID, err := strconv.ParseInt(c.Param("soho_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid soho id"))
		return
	}
	var req dto.GradeTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload"))
		return
	}

	if err := h.enroller.GradeTeacher(c.Request.Context(), sohoID, req.ProductID, req.Grade); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get a student by id
// @Tags Students
// @Produce json
// @Param id path int true "Student id"
// @Success 200 {object} response.Envelope
// @Router /v1/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
		return
	}

	student, err := h.enroller.GetStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
