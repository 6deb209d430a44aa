package attendance

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgCourseNotFound  = "Course not found"
	MsgStudentNotFound = "Student not found"
	MsgNotEnrolled     = "Student is not enrolled in this course"
	MsgAlreadyRecorded = "Attendance already recorded for this session"
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

// RegisterRoutes mounts the handlers on the /api/attendance group.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/record", h.RecordAttendance)
	router.GET("/course/:courseId", h.GetCourseAttendance)
	router.GET("/student/:studentId", h.GetStudentAttendance)
}

func (h *Handler) RecordAttendance(c *gin.Context) {
	var req RecordRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	record, err := h.service.Record(ctx, CheckIn{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		Status:    req.Status,
	})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "attendance recorded",
		"course_id", record.CourseID,
		"student_id", record.StudentID,
		"status", record.Status,
	)
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetCourseAttendance(c *gin.Context) {
	records, err := h.service.CourseRecords(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetStudentAttendance(c *gin.Context) {
	records, err := h.service.StudentRecords(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// HandleError maps recorder errors to responses. The session handler shares it.
func HandleError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgCourseNotFound)
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgStudentNotFound)
	case errors.Is(err, ErrNotEnrolled):
		httputil.RespondError(c, http.StatusBadRequest, MsgNotEnrolled)
	case errors.Is(err, ErrAlreadyRecorded):
		httputil.RespondError(c, http.StatusBadRequest, MsgAlreadyRecorded)
	default:
		logger.ErrorContext(c.Request.Context(), "attendance request failed", "error", err, "path", c.FullPath())
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
	}
}
