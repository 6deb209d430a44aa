package userlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	UserTypeStudent    = "Student"
	UserTypeInstructor = "Instructor"

	ActionLogin  = "login"
	ActionLogout = "logout"
)

// UserLog is one append-only login/logout audit entry.
type UserLog struct {
	bun.BaseModel `bun:"table:user_logs,alias:ul"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	UserType  string    `bun:"user_type,notnull" json:"userType"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	IDNumber  string    `bun:"id_number,notnull" json:"idNumber"`
	Action    string    `bun:"action,notnull" json:"action"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

var _ bun.BeforeAppendModelHook = (*UserLog)(nil)

func (l *UserLog) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Filter narrows a log listing. Empty fields match everything.
type Filter struct {
	UserType string
	Action   string
	Limit    int
}
