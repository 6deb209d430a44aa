package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/attendance"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/course"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionEnded     = errors.New("session already ended")
	ErrSessionNotActive = errors.New("session is not active")
	ErrNotCourseOwner   = course.ErrNotCourseOwner
)

// Courses is the part of the course service sessions depend on.
type Courses interface {
	GetCourse(ctx context.Context, id string) (*course.Course, error)
	EnrolledStudents(ctx context.Context, id string) ([]course.EnrolledStudent, error)
}

// Recorder is the part of the attendance service sessions depend on.
type Recorder interface {
	Record(ctx context.Context, in attendance.CheckIn) (*attendance.Record, error)
	SessionRecords(ctx context.Context, courseID string) ([]attendance.Record, error)
}

type Service interface {
	CreateSession(ctx context.Context, actor auth.Actor, req CreateRequest) (*Session, error)
	ActiveSessions(ctx context.Context) ([]Session, error)
	EndSession(ctx context.Context, actor auth.Actor, id string) (*Session, error)
	RecordAttendance(ctx context.Context, req RecordRequest) (*attendance.Record, error)
	CourseStats(ctx context.Context, courseID string) (*CourseStats, error)
	CountActive(ctx context.Context) (int, error)
}

type service struct {
	repo     Repository
	courses  Courses
	recorder Recorder
}

func NewService(repo Repository, courses Courses, recorder Recorder) Service {
	return &service{
		repo:     repo,
		courses:  courses,
		recorder: recorder,
	}
}

func (s *service) CreateSession(ctx context.Context, actor auth.Actor, req CreateRequest) (*Session, error) {
	c, err := s.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(c.InstructorID) {
		return nil, ErrNotCourseOwner
	}

	now := time.Now()
	return s.repo.Create(ctx, &Session{
		CourseID:     c.ID,
		InstructorID: c.InstructorID,
		StartedAt:    now,
		EndsAt:       now.Add(time.Duration(req.DurationMinutes) * time.Minute),
	})
}

func (s *service) ActiveSessions(ctx context.Context) ([]Session, error) {
	return s.repo.ListActive(ctx, time.Now())
}

func (s *service) EndSession(ctx context.Context, actor auth.Actor, id string) (*Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(session.InstructorID) {
		return nil, ErrNotCourseOwner
	}
	if session.EndedAt != nil {
		return nil, ErrSessionEnded
	}

	now := time.Now()
	if err := s.repo.End(ctx, id, now); err != nil {
		return nil, err
	}
	session.EndedAt = &now
	return session, nil
}

// RecordAttendance checks a student in to a running session.
func (s *service) RecordAttendance(ctx context.Context, req RecordRequest) (*attendance.Record, error) {
	session, err := s.repo.GetByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.ActiveAt(time.Now()) {
		return nil, ErrSessionNotActive
	}

	return s.recorder.Record(ctx, attendance.CheckIn{
		CourseID:  session.CourseID,
		StudentID: req.StudentID,
		SessionID: session.ID,
		Status:    req.Status,
	})
}

func (s *service) CourseStats(ctx context.Context, courseID string) (*CourseStats, error) {
	enrolled, err := s.courses.EnrolledStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	records, err := s.recorder.SessionRecords(ctx, courseID)
	if err != nil {
		return nil, err
	}

	attended := make(map[string]int, len(enrolled))
	for _, r := range records {
		if r.Status != attendance.StatusAbsent {
			attended[r.StudentID]++
		}
	}

	stats := &CourseStats{
		CourseID:      courseID,
		TotalSessions: total,
		TotalRecords:  len(records),
		Students:      make([]StudentStats, 0, len(enrolled)),
	}
	for _, st := range enrolled {
		entry := StudentStats{
			IDNumber: st.IDNumber,
			FullName: st.FullName,
			Attended: attended[st.IDNumber],
		}
		if total > 0 {
			entry.Rate = math.Round(float64(entry.Attended)/float64(total)*100) / 100
		}
		stats.Students = append(stats.Students, entry)
	}
	return stats, nil
}

func (s *service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx, time.Now())
}
