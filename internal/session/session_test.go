package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/attendance"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/config"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/course"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/instructor"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/logger"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/session"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/student"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/userlog"
	"github.com/elle-sys/automated-attendance-tracking-system/testing/testdb"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Shared(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*student.Student)(nil),
		(*instructor.Instructor)(nil),
		(*course.Course)(nil),
		(*attendance.Record)(nil),
		(*session.Session)(nil),
		(*userlog.UserLog)(nil),
	)

	ctx := context.Background()
	mockMetrics := metrics.NewMock()
	log := logger.Discard()

	logService := userlog.NewService(userlog.NewRepository(pgContainer.DB, mockMetrics), nil, log, mockMetrics)
	students := student.NewService(student.NewRepository(pgContainer.DB, mockMetrics), logService)
	instructors := instructor.NewService(instructor.NewRepository(pgContainer.DB, mockMetrics), logService)
	courseRepo := course.NewRepository(pgContainer.DB, mockMetrics)
	courses := course.NewService(courseRepo, students, instructors, log)
	recorder := attendance.NewService(attendance.NewRepository(pgContainer.DB, mockMetrics), courses, students, mockMetrics)

	repo := session.NewRepository(pgContainer.DB, mockMetrics)
	svc := session.NewService(repo, courses, recorder)

	adminVerifier, err := auth.NewAdminVerifier(config.AdminConfig{ID: "admin", Password: "admin123"})
	require.NoError(t, err)
	mw := auth.NewMiddleware(adminVerifier, auth.NewTokenIssuer("test-secret", "attendance-service", time.Hour), instructors, log)

	router := gin.New()
	handler := session.NewHandler(svc, log)
	handler.RegisterRoutes(router.Group("/api/sessions"), mw.RequireInstructor())
	handler.RegisterRecordRoutes(router.Group("/api/session-attendance"))

	do := func(method, path string, body any, instructorID string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if instructorID != "" {
			req.Header.Set(auth.HeaderInstructorID, instructorID)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	message := func(w *httptest.ResponseRecorder) string {
		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Message
	}

	// seed creates T1's course CS101 with S1 and S2 enrolled; T2 owns nothing.
	seed := func(t *testing.T) *course.Course {
		testdb.CleanupTables(t, pgContainer.DB, "class_sessions", "attendance_records", "courses", "students", "instructors", "user_logs")

		for _, id := range []string{"T1", "T2"} {
			_, err := instructors.CreateInstructor(ctx, instructor.CreateRequest{IDNumber: id, FullName: "Instructor " + id, Password: "pw"})
			require.NoError(t, err)
		}
		for id, name := range map[string]string{"S1": "Ann", "S2": "Bob", "S3": "Cid"} {
			_, err := students.CreateStudent(ctx, student.CreateRequest{IDNumber: id, FullName: name, Password: "pw"})
			require.NoError(t, err)
		}

		c, err := courseRepo.Create(ctx, &course.Course{CourseCode: "CS101", CourseName: "Intro", InstructorID: "T1"})
		require.NoError(t, err)
		require.NoError(t, courseRepo.AddStudent(ctx, c.ID, "S1"))
		require.NoError(t, courseRepo.AddStudent(ctx, c.ID, "S2"))
		return c
	}

	start := func(t *testing.T, courseID string) session.Session {
		w := do(http.MethodPost, "/api/sessions/create", map[string]any{"courseId": courseID}, "T1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var s session.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
		return s
	}

	checkIn := func(sessionID, studentID string) *httptest.ResponseRecorder {
		return do(http.MethodPost, "/api/session-attendance/record", map[string]string{
			"sessionId": sessionID, "studentId": studentID,
		}, "")
	}

	t.Run("Create_DefaultDuration", func(t *testing.T) {
		c := seed(t)

		s := start(t, c.ID)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, c.ID, s.CourseID)
		assert.Equal(t, "T1", s.InstructorID)
		assert.Nil(t, s.EndedAt)
		assert.WithinDuration(t, s.StartedAt.Add(60*time.Minute), s.EndsAt, time.Second)
	})

	t.Run("Create_Rejections", func(t *testing.T) {
		c := seed(t)

		w := do(http.MethodPost, "/api/sessions/create", map[string]any{"courseId": c.ID}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, auth.MsgInstructorRequired, message(w))

		w = do(http.MethodPost, "/api/sessions/create", map[string]any{"courseId": c.ID}, "T2")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, session.MsgNotOwner, message(w))

		w = do(http.MethodPost, "/api/sessions/create", map[string]any{"courseId": "missing"}, "T1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, session.MsgCourseMissing, message(w))

		w = do(http.MethodPost, "/api/sessions/create", map[string]any{"courseId": c.ID, "durationMinutes": 481}, "T1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "durationMinutes must be at most 480", message(w))
	})

	t.Run("ActiveAndEnd", func(t *testing.T) {
		c := seed(t)
		running := start(t, c.ID)

		now := time.Now()
		_, err := repo.Create(ctx, &session.Session{
			CourseID:     c.ID,
			InstructorID: "T1",
			StartedAt:    now.Add(-2 * time.Hour),
			EndsAt:       now.Add(-time.Hour),
		})
		require.NoError(t, err)

		var active []session.Session
		w := do(http.MethodGet, "/api/sessions/active", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
		require.Len(t, active, 1)
		assert.Equal(t, running.ID, active[0].ID)

		count, err := svc.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		w = do(http.MethodPost, "/api/sessions/"+running.ID+"/end", nil, "T2")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = do(http.MethodPost, "/api/sessions/"+running.ID+"/end", nil, "T1")
		require.Equal(t, http.StatusOK, w.Code)
		var ended session.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ended))
		assert.NotNil(t, ended.EndedAt)

		w = do(http.MethodPost, "/api/sessions/"+running.ID+"/end", nil, "T1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, session.MsgEnded, message(w))

		w = do(http.MethodPost, "/api/sessions/missing/end", nil, "T1")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(http.MethodGet, "/api/sessions/active", nil, "")
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Record_OncePerSession", func(t *testing.T) {
		c := seed(t)
		s := start(t, c.ID)

		w := checkIn(s.ID, "S1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var record attendance.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, s.ID, record.SessionID)
		assert.Equal(t, c.ID, record.CourseID)
		assert.Equal(t, attendance.StatusPresent, record.Status)

		w = checkIn(s.ID, "S1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, attendance.MsgAlreadyRecorded, message(w))
	})

	t.Run("Record_Rejections", func(t *testing.T) {
		c := seed(t)
		s := start(t, c.ID)

		w := checkIn("missing", "S1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, session.MsgNotFound, message(w))

		w = checkIn(s.ID, "S3")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, attendance.MsgNotEnrolled, message(w))

		w = checkIn(s.ID, "S404")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, attendance.MsgStudentNotFound, message(w))

		_, err := svc.EndSession(ctx, auth.Actor{Role: auth.RoleAdmin}, s.ID)
		require.NoError(t, err)

		w = checkIn(s.ID, "S1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, session.MsgNotActive, message(w))
	})

	t.Run("CourseStats", func(t *testing.T) {
		c := seed(t)
		first := start(t, c.ID)
		second := start(t, c.ID)

		require.Equal(t, http.StatusCreated, checkIn(first.ID, "S1").Code)
		require.Equal(t, http.StatusCreated, checkIn(second.ID, "S1").Code)
		require.Equal(t, http.StatusCreated, checkIn(first.ID, "S2").Code)

		w := do(http.MethodGet, "/api/sessions/stats/course/"+c.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var stats session.CourseStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, c.ID, stats.CourseID)
		assert.Equal(t, 2, stats.TotalSessions)
		assert.Equal(t, 3, stats.TotalRecords)
		assert.Equal(t, []session.StudentStats{
			{IDNumber: "S1", FullName: "Ann", Attended: 2, Rate: 1},
			{IDNumber: "S2", FullName: "Bob", Attended: 1, Rate: 0.5},
		}, stats.Students)

		w = do(http.MethodGet, "/api/sessions/stats/course/missing", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
