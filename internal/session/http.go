package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/attendance"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/course"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgNotFound      = "Session not found"
	MsgEnded         = "Session already ended"
	MsgNotActive     = "Session is not active"
	MsgNotOwner      = "Not authorized to manage this course"
	MsgCourseMissing = "Course not found"
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

// RegisterRoutes mounts the handlers on the /api/sessions group.
func (h *Handler) RegisterRoutes(router gin.IRouter, requireInstructor gin.HandlerFunc) {
	router.POST("/create", requireInstructor, h.CreateSession)
	router.GET("/active", h.GetActiveSessions)
	router.GET("/stats/course/:courseId", h.GetCourseStats)
	router.POST("/:id/end", requireInstructor, h.EndSession)
}

// RegisterRecordRoutes mounts session check-in on the /api/session-attendance group.
func (h *Handler) RegisterRecordRoutes(router gin.IRouter) {
	router.POST("/record", h.RecordAttendance)
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)

	session, err := h.service.CreateSession(ctx, actor, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "session started",
		"session_id", session.ID,
		"course_id", session.CourseID,
		"ends_at", session.EndsAt,
	)
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) GetActiveSessions(c *gin.Context) {
	sessions, err := h.service.ActiveSessions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) EndSession(c *gin.Context) {
	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)

	session, err := h.service.EndSession(ctx, actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "session ended", "session_id", session.ID)
	c.JSON(http.StatusOK, session)
}

func (h *Handler) RecordAttendance(c *gin.Context) {
	var req RecordRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	record, err := h.service.RecordAttendance(ctx, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "session attendance recorded",
		"session_id", record.SessionID,
		"student_id", record.StudentID,
	)
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetCourseStats(c *gin.Context) {
	stats, err := h.service.CourseStats(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrSessionEnded):
		httputil.RespondError(c, http.StatusBadRequest, MsgEnded)
	case errors.Is(err, ErrSessionNotActive):
		httputil.RespondError(c, http.StatusBadRequest, MsgNotActive)
	case errors.Is(err, ErrNotCourseOwner):
		httputil.RespondError(c, http.StatusUnauthorized, MsgNotOwner)
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgCourseMissing)
	default:
		attendance.HandleError(c, h.logger, err)
	}
}
