package student

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgNotFound           = "Student not found"
	MsgIDExists           = "Student ID already exists"
	MsgIDNumberTaken      = "ID Number is already taken"
	MsgInvalidCredentials = "Invalid student ID or password"
	MsgInvalidSearch      = "Invalid search pattern"
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

// RegisterRoutes mounts the handlers on the /api/students group.
func (h *Handler) RegisterRoutes(router gin.IRouter, requireAdmin gin.HandlerFunc) {
	router.GET("/test", h.Test)
	router.GET("/search", h.SearchStudents)
	router.GET("", h.GetAllStudents)
	router.GET("/:id", h.GetStudent)
	router.POST("/create", h.CreateStudent)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.PUT("/:id", requireAdmin, h.UpdateStudent)
	router.DELETE("/:id", requireAdmin, h.DeleteStudent)
}

func (h *Handler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Test endpoint working"})
}

func (h *Handler) GetAllStudents(c *gin.Context) {
	students, err := h.service.GetAllStudents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) SearchStudents(c *gin.Context) {
	query := strings.TrimSpace(c.Query("search"))

	students, err := h.service.SearchStudents(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	results := make([]Identity, 0, len(students))
	for i := range students {
		results = append(results, students[i].Identity())
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.service.GetStudentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req CreateRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "creating student", "id_number", req.IDNumber)

	student, err := h.service.CreateStudent(ctx, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordAccountRegistered(ctx, "student")

	c.JSON(http.StatusCreated, CreateResponse{
		Message: "Student account created successfully",
		Student: Identity{IDNumber: student.IDNumber, FullName: student.FullName},
	})
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var req UpdateRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "updating student", "id", c.Param("id"), "id_number", req.IDNumber)

	student, err := h.service.UpdateStudent(ctx, c.Param("id"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpdateResponse{
		Message: "Student updated successfully",
		Student: student.Identity(),
	})
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "deleting student", "id", c.Param("id"))

	if err := h.service.DeleteStudent(ctx, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Student deleted successfully"})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	student, err := h.service.Login(ctx, req)
	if err != nil {
		h.metrics.RecordLogin(ctx, "student", false)
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordLogin(ctx, "student", true)
	h.logger.InfoContext(ctx, "student logged in", "id_number", student.IDNumber)

	c.JSON(http.StatusOK, LoginResponse{Success: true, Student: student.Identity()})
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	student, err := h.service.Logout(ctx, req.StudentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "student logged out", "id_number", student.IDNumber)
	c.JSON(http.StatusOK, LogoutResponse{Success: true, Message: "Logged out successfully"})
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondError(c, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, ErrStudentIDTaken):
		httputil.RespondError(c, http.StatusBadRequest, MsgIDExists)
	case errors.Is(err, ErrIDNumberTaken):
		httputil.RespondError(c, http.StatusBadRequest, MsgIDNumberTaken)
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondError(c, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, ErrInvalidSearch):
		httputil.RespondError(c, http.StatusBadRequest, MsgInvalidSearch)
	default:
		h.logger.ErrorContext(c.Request.Context(), "student request failed", "error", err, "path", c.FullPath())
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
	}
}
