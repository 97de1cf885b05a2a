package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"enrollwall/internal/service"
)

// CourseHandler handles course endpoints.
type CourseHandler struct {
	svc service.CourseService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(svc service.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// CourseRequest represents a course create or update payload.
type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"gt=0"`
	TutorID     *uint  `json:"tutor_id" validate:"omitempty,gt=0"`
}

func (r CourseRequest) input() service.CourseInput {
	return service.CourseInput{
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		TutorID:     r.TutorID,
	}
}

// CreateCourse godoc
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body CourseRequest true "Course payload"
// @Success 201 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c echo.Context) error {
	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	course, err := h.svc.CreateCourse(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body CourseRequest true "Course payload"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	course, err := h.svc.UpdateCourse(c.Request().Context(), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary Delete course and its enrollments
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCourse(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCourse godoc
// @Summary Get course by id
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.svc.GetCourse(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

// ListCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {array} model.Course
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c echo.Context) error {
	courses, err := h.svc.ListCourses(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}
