package attendance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Record is one check-in. Records are never updated. SessionID is empty for
// course-level check-ins; a student can hold only one record per session.
type Record struct {
	bun.BaseModel `bun:"table:attendance_records,alias:ar"`

	ID         string    `bun:"id,pk,type:varchar(36)" json:"id"`
	CourseID   string    `bun:"course_id,notnull" json:"courseId"`
	StudentID  string    `bun:"student_id,notnull,unique:session_student" json:"studentId"`
	SessionID  string    `bun:"session_id,nullzero,unique:session_student" json:"sessionId,omitempty"`
	Status     string    `bun:"status,notnull" json:"status"`
	RecordedAt time.Time `bun:"recorded_at,nullzero,notnull,default:current_timestamp" json:"recordedAt"`
}

var _ bun.BeforeAppendModelHook = (*Record)(nil)

func (r *Record) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type RecordRequest struct {
	CourseID  string `json:"courseId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"oneof=present late absent"`
}

func (r *RecordRequest) Normalize() {
	r.CourseID = strings.TrimSpace(r.CourseID)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = StatusPresent
	}
}

// CheckIn is a request to mark one student, optionally within a session.
type CheckIn struct {
	CourseID  string
	StudentID string
	SessionID string
	Status    string
}
