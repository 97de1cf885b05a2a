package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"enrollwall/internal/model"
	"enrollwall/internal/service"
)

// EnrollmentHandler handles enrollment endpoints.
type EnrollmentHandler struct {
	svc service.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler.
func NewEnrollmentHandler(svc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc}
}

// EnrollmentRequest is the body for creating or updating an enrollment.
type EnrollmentRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	CourseID  uint   `json:"course_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,oneof=active completed dropped"`
}

func (h *EnrollmentHandler) bind(c echo.Context) (EnrollmentRequest, error) {
	var req EnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return req, invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return req, validationFailed(err)
	}
	return req, nil
}

// pathStatus reads the :status parameter.
func pathStatus(c echo.Context) (model.EnrollmentStatus, error) {
	status, err := model.ParseEnrollmentStatus(c.Param("status"))
	if err != nil {
		return "", validationFailed(err)
	}
	return status, nil
}

// CreateEnrollment godoc
// @Summary Enroll a student in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) CreateEnrollment(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	enrollment, err := h.svc.CreateEnrollment(c.Request().Context(), req.StudentID, req.CourseID, model.EnrollmentStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, enrollment)
}

// UpdateEnrollment godoc
// @Summary Overwrite an enrollment's status
// @Description Sets the status directly. Student and course must exist; the student's role is not re-checked.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param request body EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) UpdateEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	enrollment, err := h.svc.UpdateEnrollment(c.Request().Context(), id, req.StudentID, req.CourseID, model.EnrollmentStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

// CompleteEnrollment godoc
// @Summary Mark an enrollment completed
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /enrollments/{id}/complete [patch]
func (h *EnrollmentHandler) CompleteEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enrollment, err := h.svc.CompleteEnrollment(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

// DropEnrollment godoc
// @Summary Mark an enrollment dropped
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /enrollments/{id}/drop [patch]
func (h *EnrollmentHandler) DropEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enrollment, err := h.svc.DropEnrollment(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

// DeleteEnrollment godoc
// @Summary Delete enrollment
// @Tags enrollments
// @Param id path int true "Enrollment ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) DeleteEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteEnrollment(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetEnrollment godoc
// @Summary Get enrollment by id
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enrollment, err := h.svc.GetEnrollment(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

// ListEnrollments godoc
// @Summary List all enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {array} model.Enrollment
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(c echo.Context) error {
	enrollments, err := h.svc.ListEnrollments(c.Request().Context())
	return h.list(c, enrollments, err)
}

// ListByStatus godoc
// @Summary List enrollments by status
// @Tags enrollments
// @Produce json
// @Param status path string true "Status" Enums(active, completed, dropped)
// @Success 200 {array} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Router /enrollments/status/{status} [get]
func (h *EnrollmentHandler) ListByStatus(c echo.Context) error {
	status, err := pathStatus(c)
	if err != nil {
		return err
	}
	enrollments, err := h.svc.ListEnrollmentsByStatus(c.Request().Context(), status)
	return h.list(c, enrollments, err)
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Tags enrollments
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {array} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Router /enrollments/student/{student_id} [get]
func (h *EnrollmentHandler) ListByStudent(c echo.Context) error {
	studentID, err := pathID(c, "student_id")
	if err != nil {
		return err
	}
	enrollments, err := h.svc.ListEnrollmentsByStudent(c.Request().Context(), studentID)
	return h.list(c, enrollments, err)
}

// ListByStudentAndStatus godoc
// @Summary List a student's enrollments in one status
// @Tags enrollments
// @Produce json
// @Param student_id path int true "Student ID"
// @Param status path string true "Status" Enums(active, completed, dropped)
// @Success 200 {array} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Router /enrollments/student/{student_id}/{status} [get]
func (h *EnrollmentHandler) ListByStudentAndStatus(c echo.Context) error {
	studentID, err := pathID(c, "student_id")
	if err != nil {
		return err
	}
	status, err := pathStatus(c)
	if err != nil {
		return err
	}
	enrollments, err := h.svc.ListEnrollmentsByStudentAndStatus(c.Request().Context(), studentID, status)
	return h.list(c, enrollments, err)
}

// ListByCourse godoc
// @Summary List a course's enrollments
// @Tags enrollments
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {array} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enrollments/course/{course_id} [get]
func (h *EnrollmentHandler) ListByCourse(c echo.Context) error {
	courseID, err := pathID(c, "course_id")
	if err != nil {
		return err
	}
	enrollments, err := h.svc.ListEnrollmentsByCourse(c.Request().Context(), courseID)
	return h.list(c, enrollments, err)
}

// ListByTutor godoc
// @Summary List enrollments in courses taught by a tutor
// @Tags enrollments
// @Produce json
// @Param tutor_id path int true "Tutor ID"
// @Success 200 {array} model.Enrollment
// @Failure 400 {object} errors.ErrorResponse
// @Router /enrollments/tutor/{tutor_id} [get]
func (h *EnrollmentHandler) ListByTutor(c echo.Context) error {
	tutorID, err := pathID(c, "tutor_id")
	if err != nil {
		return err
	}
	enrollments, err := h.svc.ListEnrollmentsByTutor(c.Request().Context(), tutorID)
	return h.list(c, enrollments, err)
}

func (h *EnrollmentHandler) list(c echo.Context, enrollments []model.Enrollment, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollments)
}
