package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const MsgInvalidAdminCredentials = "Invalid admin credentials"

type AdminLoginRequest struct {
	AdminID  string `json:"adminId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *AdminLoginRequest) Normalize() {
	r.AdminID = strings.TrimSpace(r.AdminID)
}

type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Handler struct {
	admin    *AdminVerifier
	tokens   *TokenIssuer
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(admin *AdminVerifier, tokens *TokenIssuer, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		admin:    admin,
		tokens:   tokens,
		validate: httputil.NewValidator(),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes mounts the admin login on the /api/admin group.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/login", h.AdminLogin)
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if !httputil.BindJSON(c, h.validate, &req) {
		return
	}

	ctx := c.Request.Context()
	if !h.admin.Verify(req.AdminID, req.Password) {
		h.logger.WarnContext(ctx, "admin login failed", "admin_id", req.AdminID)
		h.metrics.RecordLogin(ctx, string(RoleAdmin), false)
		httputil.RespondError(c, http.StatusUnauthorized, MsgInvalidAdminCredentials)
		return
	}

	token, expiresAt, err := h.tokens.Issue(h.admin.ID(), RoleAdmin)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue admin token", "error", err)
		httputil.RespondError(c, http.StatusInternalServerError, httputil.MsgServerError)
		return
	}

	h.metrics.RecordLogin(ctx, string(RoleAdmin), true)
	h.logger.InfoContext(ctx, "admin logged in", "admin_id", req.AdminID)

	c.JSON(http.StatusOK, AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
