package userlog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
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

// RegisterRoutes mounts the log listing on the admin group.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/logs", h.ListLogs)
}

func (h *Handler) ListLogs(c *gin.Context) {
	filter := Filter{
		UserType: c.Query("userType"),
		Action:   c.Query("action"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httputil.RespondError(c, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		filter.Limit = limit
	}

	switch filter.UserType {
	case "", UserTypeStudent, UserTypeInstructor:
	default:
		httputil.RespondError(c, http.StatusBadRequest, "userType must be one of: Student, Instructor")
		return
	}
	switch filter.Action {
	case "", ActionLogin, ActionLogout:
	default:
		httputil.RespondError(c, http.StatusBadRequest, "action must be one of: login, logout")
		return
	}

	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "failed to list user logs", "error", err)
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
		return
	}

	c.JSON(http.StatusOK, logs)
}
