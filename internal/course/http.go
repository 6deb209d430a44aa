package course

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgNotFound            = "Course not found"
	MsgCodeTaken           = "Course code already exists for this instructor"
	MsgAmbiguousCode       = "Course code matches more than one course; instructorId is required"
	MsgNotOwner            = "Not authorized to manage this course"
	MsgInstructorRequired  = "instructorId is required"
	MsgNotEnrolled         = "Student is not enrolled in this course"
	MsgInstructorNotFound  = "Instructor not found"
	MsgStudentNotFound     = "Student not found"
	MsgEnrolledCoursesFail = "Failed to fetch enrolled courses"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: httputil.NewValidator(),
		logger:   logger,
	}
}

// RegisterRoutes mounts the handlers on the /api/courses group. requireStaff
// guards mutations and must put an auth.Actor into the request context.
func (h *Handler) RegisterRoutes(router gin.IRouter, requireStaff gin.HandlerFunc) {
	router.GET("", h.GetAllCourses)
	router.POST("", requireStaff, h.CreateCourse)
	router.POST("/verify-code", h.VerifyCode)
	router.GET("/instructor/:instructorId", h.GetInstructorCourses)
	router.GET("/:id", h.GetCourse)
	router.PUT("/:id", requireStaff, h.UpdateCourse)
	router.DELETE("/:id", requireStaff, h.DeleteCourse)
	router.GET("/:id/students", h.GetEnrolledStudents)
	router.DELETE("/:id/students/:studentId", requireStaff, h.Unenroll)
}

// RegisterStudentRoutes mounts the enrollment lookup on the /api/students group.
func (h *Handler) RegisterStudentRoutes(router gin.IRouter) {
	router.GET("/enrolled-courses/:studentId", h.GetEnrolledCourses)
}

func (h *Handler) GetAllCourses(c *gin.Context) {
	courses, err := h.service.GetAllCourses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) GetInstructorCourses(c *gin.Context) {
	courses, err := h.service.GetInstructorCourses(c.Request.Context(), c.Param("instructorId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req CourseRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)
	h.logger.InfoContext(ctx, "creating course", "course_code", req.CourseCode, "actor", actor.IDNumber)

	course, err := h.service.CreateCourse(ctx, actor, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	var req CourseRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)
	h.logger.InfoContext(ctx, "updating course", "id", c.Param("id"), "actor", actor.IDNumber)

	course, err := h.service.UpdateCourse(ctx, actor, c.Param("id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)
	h.logger.InfoContext(ctx, "deleting course", "id", c.Param("id"), "actor", actor.IDNumber)

	if err := h.service.DeleteCourse(ctx, actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Course deleted successfully"})
}

func (h *Handler) GetEnrolledStudents(c *gin.Context) {
	students, err := h.service.EnrolledStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	course, err := h.service.VerifyCode(ctx, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "student enrolled", "course_id", course.ID, "student_id", req.StudentID)
	c.JSON(http.StatusOK, VerifyCodeResponse{
		Success: true,
		Message: "Enrolled successfully",
		Course:  course,
	})
}

func (h *Handler) Unenroll(c *gin.Context) {
	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)

	if err := h.service.Unenroll(ctx, actor, c.Param("id"), c.Param("studentId")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "student unenrolled", "course_id", c.Param("id"), "student_id", c.Param("studentId"))
	c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Student removed from course"})
}

func (h *Handler) GetEnrolledCourses(c *gin.Context) {
	ctx := c.Request.Context()
	courses, err := h.service.EnrolledCourses(ctx, c.Param("studentId"))
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, EnrolledCoursesError{Message: MsgStudentNotFound})
			return
		}
		h.logger.ErrorContext(ctx, "failed to fetch enrolled courses", "error", err, "student_id", c.Param("studentId"))
		c.JSON(http.StatusInternalServerError, EnrolledCoursesError{Message: MsgEnrolledCoursesFail})
		return
	}

	c.JSON(http.StatusOK, EnrolledCoursesResponse{Success: true, Courses: courses})
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrInstructorNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgInstructorNotFound)
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgStudentNotFound)
	case errors.Is(err, ErrStudentNotEnrolled):
		httputil.RespondError(c, http.StatusNotFound, MsgNotEnrolled)
	case errors.Is(err, ErrCourseCodeTaken):
		httputil.RespondError(c, http.StatusBadRequest, MsgCodeTaken)
	case errors.Is(err, ErrAmbiguousCode):
		httputil.RespondError(c, http.StatusBadRequest, MsgAmbiguousCode)
	case errors.Is(err, ErrInstructorRequired):
		httputil.RespondError(c, http.StatusBadRequest, MsgInstructorRequired)
	case errors.Is(err, ErrNotCourseOwner):
		httputil.RespondError(c, http.StatusUnauthorized, MsgNotOwner)
	default:
		h.logger.ErrorContext(c.Request.Context(), "course request failed", "error", err, "path", c.FullPath())
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
	}
}
