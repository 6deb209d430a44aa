package instructor

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgNotFound           = "Instructor not found"
	MsgIDExists           = "Instructor ID already exists"
	MsgIDNumberTaken      = "ID Number is already taken"
	MsgInvalidCredentials = "Invalid instructor ID or password"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: httputil.NewValidator(),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes mounts the handlers on the /api/instructors group.
func (h *Handler) RegisterRoutes(router gin.IRouter, requireAdmin gin.HandlerFunc) {
	router.GET("", h.GetAllInstructors)
	router.GET("/:id", h.GetInstructor)
	router.POST("/create", requireAdmin, h.CreateInstructor)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.PUT("/:id", requireAdmin, h.UpdateInstructor)
	router.DELETE("/:id", requireAdmin, h.DeleteInstructor)
}

func (h *Handler) GetAllInstructors(c *gin.Context) {
	instructors, err := h.service.GetAllInstructors(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instructors)
}

func (h *Handler) GetInstructor(c *gin.Context) {
	instructor, err := h.service.GetInstructorByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instructor)
}

func (h *Handler) CreateInstructor(c *gin.Context) {
	var req CreateRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "creating instructor", "id_number", req.IDNumber)

	instructor, err := h.service.CreateInstructor(ctx, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordAccountRegistered(ctx, "instructor")

	c.JSON(http.StatusCreated, MutationResponse{
		Message:    "Instructor account created successfully",
		Instructor: instructor.Identity(),
	})
}

func (h *Handler) UpdateInstructor(c *gin.Context) {
	var req UpdateRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "updating instructor", "id", c.Param("id"))

	instructor, err := h.service.UpdateInstructor(ctx, c.Param("id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{
		Message:    "Instructor updated successfully",
		Instructor: instructor.Identity(),
	})
}

func (h *Handler) DeleteInstructor(c *gin.Context) {
	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "deleting instructor", "id", c.Param("id"))

	if err := h.service.DeleteInstructor(ctx, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Instructor deleted successfully"})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	instructor, err := h.service.Login(ctx, req)
	if err != nil {
		h.metrics.RecordLogin(ctx, "instructor", false)
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordLogin(ctx, "instructor", true)
	h.logger.InfoContext(ctx, "instructor logged in", "id_number", instructor.IDNumber)

	c.JSON(http.StatusOK, LoginResponse{Success: true, Instructor: instructor.Identity()})
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	instructor, err := h.service.Logout(ctx, req.InstructorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "instructor logged out", "id_number", instructor.IDNumber)
	c.JSON(http.StatusOK, LogoutResponse{Success: true, Message: "Logged out successfully"})
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInstructorNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrInstructorIDTaken):
		httputil.RespondError(c, http.StatusBadRequest, MsgIDExists)
	case errors.Is(err, ErrIDNumberTaken):
		httputil.RespondError(c, http.StatusBadRequest, MsgIDNumberTaken)
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondError(c, http.StatusUnauthorized, MsgInvalidCredentials)
	default:
		h.logger.ErrorContext(c.Request.Context(), "instructor request failed", "error", err, "path", c.FullPath())
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
	}
}
