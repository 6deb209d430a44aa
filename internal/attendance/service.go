package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/course"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/student"
)

var (
	ErrAlreadyRecorded = errors.New("attendance already recorded for this session")
	ErrCourseNotFound  = course.ErrCourseNotFound
	ErrStudentNotFound = student.ErrStudentNotFound
	ErrNotEnrolled     = course.ErrStudentNotEnrolled
)

// Courses is the part of the course service attendance depends on.
type Courses interface {
	GetCourse(ctx context.Context, id string) (*course.Course, error)
}

// Students is the part of the student service attendance depends on.
type Students interface {
	GetStudentByIDNumber(ctx context.Context, idNumber string) (*student.Student, error)
}

type Service interface {
	Record(ctx context.Context, in CheckIn) (*Record, error)
	CourseRecords(ctx context.Context, courseID string) ([]Record, error)
	StudentRecords(ctx context.Context, studentID string) ([]Record, error)
	SessionRecords(ctx context.Context, courseID string) ([]Record, error)
	TimesForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]time.Time, error)
}

type service struct {
	repo     Repository
	courses  Courses
	students Students
	metrics  *metrics.Metrics
}

func NewService(repo Repository, courses Courses, students Students, m *metrics.Metrics) Service {
	return &service{
		repo:     repo,
		courses:  courses,
		students: students,
		metrics:  m,
	}
}

// Record stores one check-in for an existing student enrolled in an existing
// course. Course-level check-ins are not de-duplicated.
func (s *service) Record(ctx context.Context, in CheckIn) (*Record, error) {
	c, err := s.courses.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.GetStudentByIDNumber(ctx, in.StudentID); err != nil {
		return nil, err
	}
	if !c.HasStudent(in.StudentID) {
		return nil, ErrNotEnrolled
	}

	status := in.Status
	if status == "" {
		status = StatusPresent
	}

	record, err := s.repo.Create(ctx, &Record{
		CourseID:  c.ID,
		StudentID: in.StudentID,
		SessionID: in.SessionID,
		Status:    status,
	})
	if err != nil {
		return nil, err
	}

	source := "course"
	if in.SessionID != "" {
		source = "session"
	}
	s.metrics.RecordAttendance(ctx, source)

	return record, nil
}

func (s *service) CourseRecords(ctx context.Context, courseID string) ([]Record, error) {
	return s.repo.ListByCourse(ctx, courseID)
}

func (s *service) StudentRecords(ctx context.Context, studentID string) ([]Record, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *service) SessionRecords(ctx context.Context, courseID string) ([]Record, error) {
	return s.repo.ListSessionRecords(ctx, courseID)
}

func (s *service) TimesForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]time.Time, error) {
	return s.repo.TimesForCourses(ctx, courseIDs, from, to)
}
