package student

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	IDNumber  string    `bun:"id_number,notnull,unique" json:"idNumber"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	Password  string    `bun:"password,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Student)(nil)

func (s *Student) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = time.Now()
	}
	return nil
}

type CreateRequest struct {
	IDNumber string `json:"idNumber" validate:"required,max=64"`
	FullName string `json:"fullName" validate:"required,max=200"`
	Password string `json:"password" validate:"required,bcryptlen"`
}

func (r *CreateRequest) Normalize() {
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	r.FullName = strings.TrimSpace(r.FullName)
}

type UpdateRequest struct {
	IDNumber string `json:"idNumber" validate:"required,max=64"`
	FullName string `json:"fullName" validate:"required,max=200"`
}

func (r *UpdateRequest) Normalize() {
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	r.FullName = strings.TrimSpace(r.FullName)
}

type LoginRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.StudentID = strings.TrimSpace(r.StudentID)
}

type LogoutRequest struct {
	StudentID string `json:"studentId" validate:"required"`
}

func (r *LogoutRequest) Normalize() {
	r.StudentID = strings.TrimSpace(r.StudentID)
}

// Identity is the public part of a student returned by login, update and search.
type Identity struct {
	ID       string `json:"id,omitempty"`
	IDNumber string `json:"idNumber"`
	FullName string `json:"fullName"`
}

func (s *Student) Identity() Identity {
	return Identity{ID: s.ID, IDNumber: s.IDNumber, FullName: s.FullName}
}

type CreateResponse struct {
	Message string   `json:"message"`
	Student Identity `json:"student"`
}

type UpdateResponse struct {
	Message string   `json:"message"`
	Student Identity `json:"student"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Student Identity `json:"student"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
