package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	IDNumber string `json:"idNumber" validate:"required,max=8"`
	Status   string `json:"status" validate:"omitempty,oneof=present late absent"`
	Minutes  int    `json:"minutes" validate:"omitempty,min=1"`
}

func (r *sampleRequest) Normalize() {
	r.IDNumber = strings.TrimSpace(r.IDNumber)
}

func TestValidationMessage(t *testing.T) {
	v := httputil.NewValidator()

	tests := []struct {
		name string
		req  sampleRequest
		want string
	}{
		{"Required", sampleRequest{}, "idNumber is required"},
		{"MaxString", sampleRequest{IDNumber: "S123456789"}, "idNumber must be at most 8 characters"},
		{"OneOf", sampleRequest{IDNumber: "S1", Status: "sleeping"}, "status must be one of: present, late, absent"},
		{"MinNumber", sampleRequest{IDNumber: "S1", Minutes: -5}, "minutes must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, httputil.ValidationMessage(err))
		})
	}

	t.Run("NotAValidationError", func(t *testing.T) {
		assert.Equal(t, httputil.MsgInvalidBody, httputil.ValidationMessage(assert.AnError))
	})
}

func TestBcryptLength(t *testing.T) {
	v := httputil.NewValidator()

	type credentials struct {
		Password string `json:"password" validate:"bcryptlen"`
	}

	assert.NoError(t, v.Struct(credentials{Password: strings.Repeat("a", 72)}))
	assert.NoError(t, v.Struct(credentials{Password: strings.Repeat("é", 36)}))
	assert.NoError(t, v.Struct(credentials{}))

	// 40 runes, 80 bytes.
	err := v.Struct(credentials{Password: strings.Repeat("é", 40)})
	require.Error(t, err)
	assert.Equal(t, "password must be at most 72 bytes", httputil.ValidationMessage(err))
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := httputil.NewValidator()

	run := func(body string) (*httptest.ResponseRecorder, *sampleRequest, bool) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		var req sampleRequest
		ok := httputil.BindJSON(c, v, &req)
		return rec, &req, ok
	}

	t.Run("Valid_Trimmed", func(t *testing.T) {
		_, req, ok := run(`{"idNumber":"  S100  "}`)
		require.True(t, ok)
		assert.Equal(t, "S100", req.IDNumber)
	})

	t.Run("Malformed", func(t *testing.T) {
		rec, _, ok := run(`{"idNumber":`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request body", resp.Message)
	})

	t.Run("WhitespaceOnlyIsMissing", func(t *testing.T) {
		rec, _, ok := run(`{"idNumber":"   "}`)
		require.False(t, ok)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "idNumber is required", resp.Message)
	})
}
