package session

import (
	"context"
	"strings"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/attendance"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	DefaultDurationMinutes = 60
	MaxDurationMinutes     = 480
)

// Session is one class meeting. It accepts check-ins until it is ended or
// EndsAt passes.
type Session struct {
	bun.BaseModel `bun:"table:class_sessions,alias:cs"`

	ID           string     `bun:"id,pk,type:varchar(36)" json:"id"`
	CourseID     string     `bun:"course_id,notnull" json:"courseId"`
	InstructorID string     `bun:"instructor_id,notnull" json:"instructorId"`
	StartedAt    time.Time  `bun:"started_at,notnull" json:"startedAt"`
	EndsAt       time.Time  `bun:"ends_at,notnull" json:"endsAt"`
	EndedAt      *time.Time `bun:"ended_at" json:"endedAt,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

var _ bun.BeforeAppendModelHook = (*Session)(nil)

func (s *Session) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Session) ActiveAt(now time.Time) bool {
	return s.EndedAt == nil && now.Before(s.EndsAt)
}

type CreateRequest struct {
	CourseID        string `json:"courseId" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"min=1,max=480"`
}

func (r *CreateRequest) Normalize() {
	r.CourseID = strings.TrimSpace(r.CourseID)
	if r.DurationMinutes == 0 {
		r.DurationMinutes = DefaultDurationMinutes
	}
}

type RecordRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"oneof=present late absent"`
}

func (r *RecordRequest) Normalize() {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = attendance.StatusPresent
	}
}

type StudentStats struct {
	IDNumber string  `json:"idNumber"`
	FullName string  `json:"fullName"`
	Attended int     `json:"attended"`
	Rate     float64 `json:"rate"`
}

// CourseStats summarises session attendance of one course. Rate is the share
// of the course's sessions the student checked in to, rounded to two places.
type CourseStats struct {
	CourseID      string         `json:"courseId"`
	TotalSessions int            `json:"totalSessions"`
	TotalRecords  int            `json:"totalRecords"`
	Students      []StudentStats `json:"students"`
}
