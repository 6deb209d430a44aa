package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
)

const (
	HeaderAdminID       = "admin-id"
	HeaderAdminPassword = "admin-password"
	HeaderInstructorID  = "instructor-id"

	MsgAdminRequired      = "Admin authentication required"
	MsgInstructorRequired = "Instructor authentication required"
	MsgAuthRequired       = "Authentication required"
)

// InstructorResolver looks an instructor up by ID number.
type InstructorResolver interface {
	ResolveInstructor(ctx context.Context, idNumber string) (Actor, error)
}

type Middleware struct {
	admin       *AdminVerifier
	tokens      *TokenIssuer
	instructors InstructorResolver
	logger      *slog.Logger
}

func NewMiddleware(admin *AdminVerifier, tokens *TokenIssuer, instructors InstructorResolver, logger *slog.Logger) *Middleware {
	return &Middleware{
		admin:       admin,
		tokens:      tokens,
		instructors: instructors,
		logger:      logger,
	}
}

// RequireAdmin accepts a bearer admin token or the admin-id/admin-password headers.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := m.adminActor(c)
		if !ok {
			httputil.AbortError(c, http.StatusUnauthorized, MsgAdminRequired)
			return
		}
		m.setActor(c, actor)
		c.Next()
	}
}

// RequireInstructor resolves the instructor-id header to a stored instructor.
func (m *Middleware) RequireInstructor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := m.instructorActor(c)
		if err != nil {
			if !errors.Is(err, ErrUnknownActor) {
				m.logger.ErrorContext(c.Request.Context(), "failed to resolve instructor", "error", err)
				httputil.AbortError(c, http.StatusInternalServerError, httputil.MsgServerError)
				return
			}
			httputil.AbortError(c, http.StatusUnauthorized, MsgInstructorRequired)
			return
		}
		m.setActor(c, actor)
		c.Next()
	}
}

// RequireStaff lets either the admin or an instructor through.
func (m *Middleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := m.adminActor(c); ok {
			m.setActor(c, actor)
			c.Next()
			return
		}

		actor, err := m.instructorActor(c)
		if err != nil {
			if !errors.Is(err, ErrUnknownActor) {
				m.logger.ErrorContext(c.Request.Context(), "failed to resolve instructor", "error", err)
				httputil.AbortError(c, http.StatusInternalServerError, httputil.MsgServerError)
				return
			}
			httputil.AbortError(c, http.StatusUnauthorized, MsgAuthRequired)
			return
		}
		m.setActor(c, actor)
		c.Next()
	}
}

func (m *Middleware) adminActor(c *gin.Context) (Actor, bool) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		claims, err := m.tokens.Parse(token)
		if err != nil || claims.Role != RoleAdmin {
			m.logger.WarnContext(c.Request.Context(), "rejected admin token", "path", c.Request.URL.Path, "error", err)
			return Actor{}, false
		}
		return Actor{Role: RoleAdmin, ID: claims.Subject, IDNumber: claims.Subject}, true
	}

	id := c.GetHeader(HeaderAdminID)
	password := c.GetHeader(HeaderAdminPassword)
	if id == "" || password == "" {
		return Actor{}, false
	}
	if !m.admin.Verify(id, password) {
		m.logger.WarnContext(c.Request.Context(), "rejected admin credentials", "path", c.Request.URL.Path)
		return Actor{}, false
	}
	return Actor{Role: RoleAdmin, ID: id, IDNumber: id}, true
}

func (m *Middleware) instructorActor(c *gin.Context) (Actor, error) {
	idNumber := strings.TrimSpace(c.GetHeader(HeaderInstructorID))
	if idNumber == "" {
		return Actor{}, ErrUnknownActor
	}
	return m.instructors.ResolveInstructor(c.Request.Context(), idNumber)
}

func (m *Middleware) setActor(c *gin.Context, actor Actor) {
	c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
