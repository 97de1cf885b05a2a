package router

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"enrollwall/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	userHandler *handler.UserHandler,
	courseHandler *handler.CourseHandler,
	enrollmentHandler *handler.EnrollmentHandler,
) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
			}
			slog.LogAttrs(c.Request().Context(), level, "request",
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", handler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/v1")

	api.GET("/users", userHandler.ListUsers)
	api.POST("/users", userHandler.CreateUser)
	api.GET("/users/:id", userHandler.GetUser)
	api.PUT("/users/:id", userHandler.UpdateUser)
	api.DELETE("/users/:id", userHandler.DeleteUser)

	api.GET("/courses", courseHandler.ListCourses)
	api.POST("/courses", courseHandler.CreateCourse)
	api.GET("/courses/:id", courseHandler.GetCourse)
	api.PUT("/courses/:id", courseHandler.UpdateCourse)
	api.DELETE("/courses/:id", courseHandler.DeleteCourse)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", enrollmentHandler.ListEnrollments)
	enrollments.POST("", enrollmentHandler.CreateEnrollment)
	enrollments.GET("/status/:status", enrollmentHandler.ListByStatus)
	enrollments.GET("/student/:student_id", enrollmentHandler.ListByStudent)
	enrollments.GET("/student/:student_id/:status", enrollmentHandler.ListByStudentAndStatus)
	enrollments.GET("/course/:course_id", enrollmentHandler.ListByCourse)
	enrollments.GET("/tutor/:tutor_id", enrollmentHandler.ListByTutor)
	enrollments.GET("/:id", enrollmentHandler.GetEnrollment)
	enrollments.PUT("/:id", enrollmentHandler.UpdateEnrollment)
	enrollments.DELETE("/:id", enrollmentHandler.DeleteEnrollment)
	enrollments.PATCH("/:id/complete", enrollmentHandler.CompleteEnrollment)
	enrollments.PATCH("/:id/drop", enrollmentHandler.DropEnrollment)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
