package report

import (
	"log/slog"
	"net/http"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
)

const (
	MsgTrendFailed = "Failed to load trend data"
	MsgStatsFailed = "Failed to load dashboard stats"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterInstructorRoutes mounts the instructor trend on the /api/instructors group.
func (h *Handler) RegisterInstructorRoutes(router gin.IRouter, requireInstructor gin.HandlerFunc) {
	router.GET("/trends", requireInstructor, h.GetInstructorTrends)
}

// RegisterAdminRoutes mounts the admin reports. The group must already require the admin.
func (h *Handler) RegisterAdminRoutes(router gin.IRouter) {
	router.GET("/trends", h.GetSignupTrends)
	router.GET("/stats", h.GetStats)
}

func (h *Handler) GetInstructorTrends(c *gin.Context) {
	ctx := c.Request.Context()
	actor, _ := auth.ActorFromContext(ctx)

	trend, err := h.service.InstructorTrend(ctx, actor.IDNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load instructor trend", "error", err, "instructor_id", actor.IDNumber)
		httputil.RespondError(c, http.StatusInternalServerError, MsgTrendFailed)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *Handler) GetSignupTrends(c *gin.Context) {
	ctx := c.Request.Context()
	trend, err := h.service.SignupTrend(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load signup trend", "error", err)
		httputil.RespondError(c, http.StatusInternalServerError, MsgTrendFailed)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard stats", "error", err)
		httputil.RespondError(c, http.StatusInternalServerError, MsgStatsFailed)
		return
	}
	c.JSON(http.StatusOK, stats)
}
