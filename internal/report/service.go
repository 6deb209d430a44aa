package report

import (
	"context"
	"fmt"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"
)

type Courses interface {
	CourseIDsForInstructor(ctx context.Context, instructorID string) ([]string, error)
	CountCourses(ctx context.Context) (int, error)
}

type Attendance interface {
	TimesForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]time.Time, error)
}

type Students interface {
	SignupTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
	CountStudents(ctx context.Context) (int, error)
}

type Instructors interface {
	CountInstructors(ctx context.Context) (int, error)
}

type Sessions interface {
	CountActive(ctx context.Context) (int, error)
}

// Sources are the services the reports read from.
type Sources struct {
	Courses     Courses
	Attendance  Attendance
	Students    Students
	Instructors Instructors
	Sessions    Sessions
}

// Clock fixes "today". Zero fields fall back to time.Now and time.Local.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

type Stats struct {
	Students       int `json:"students"`
	Instructors    int `json:"instructors"`
	Courses        int `json:"courses"`
	ActiveSessions int `json:"activeSessions"`
}

type Service interface {
	InstructorTrend(ctx context.Context, instructorID string) (*Trend, error)
	SignupTrend(ctx context.Context) (*Trend, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	src     Sources
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Metrics
}

func NewService(src Sources, clock Clock, m *metrics.Metrics) Service {
	s := &service{
		src:     src,
		now:     clock.Now,
		loc:     clock.Location,
		metrics: m,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// InstructorTrend counts check-ins to the instructor's courses per day.
func (s *service) InstructorTrend(ctx context.Context, instructorID string) (*Trend, error) {
	s.metrics.RecordTrendRequest(ctx, "instructor")

	days := Window(s.now(), s.loc)
	courseIDs, err := s.src.Courses.CourseIDsForInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}

	from, to := Bounds(days)
	times, err := s.src.Attendance.TimesForCourses(ctx, courseIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("load attendance times: %w", err)
	}

	trend := BuildTrend(days, times)
	return &trend, nil
}

// SignupTrend counts student registrations per day.
func (s *service) SignupTrend(ctx context.Context) (*Trend, error) {
	s.metrics.RecordTrendRequest(ctx, "admin")

	days := Window(s.now(), s.loc)
	from, to := Bounds(days)
	times, err := s.src.Students.SignupTimes(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load signup times: %w", err)
	}

	trend := BuildTrend(days, times)
	return &trend, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Students, err = s.src.Students.CountStudents(ctx); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if stats.Instructors, err = s.src.Instructors.CountInstructors(ctx); err != nil {
		return nil, fmt.Errorf("count instructors: %w", err)
	}
	if stats.Courses, err = s.src.Courses.CountCourses(ctx); err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	if stats.ActiveSessions, err = s.src.Sessions.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("count active sessions: %w", err)
	}
	return &stats, nil
}
