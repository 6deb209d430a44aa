package instructor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Instructor struct {
	bun.BaseModel `bun:"table:instructors,alias:i"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	IDNumber  string    `bun:"id_number,notnull,unique" json:"idNumber"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	Password  string    `bun:"password,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Instructor)(nil)

func (i *Instructor) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if i.ID == "" {
			i.ID = uuid.NewString()
		}
	case *bun.UpdateQuery:
		i.UpdatedAt = time.Now()
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

// UpdateRequest leaves the password unchanged when it is empty.
type UpdateRequest struct {
	IDNumber string `json:"idNumber" validate:"required,max=64"`
	FullName string `json:"fullName" validate:"required,max=200"`
	Password string `json:"password" validate:"bcryptlen"`
}

func (r *UpdateRequest) Normalize() {
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	r.FullName = strings.TrimSpace(r.FullName)
}

type LoginRequest struct {
	InstructorID string `json:"instructorId" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.InstructorID = strings.TrimSpace(r.InstructorID)
}

type LogoutRequest struct {
	InstructorID string `json:"instructorId" validate:"required"`
}

func (r *LogoutRequest) Normalize() {
	r.InstructorID = strings.TrimSpace(r.InstructorID)
}

type Identity struct {
	ID       string `json:"id,omitempty"`
	IDNumber string `json:"idNumber"`
	FullName string `json:"fullName"`
}

func (i *Instructor) Identity() Identity {
	return Identity{ID: i.ID, IDNumber: i.IDNumber, FullName: i.FullName}
}

type MutationResponse struct {
	Message    string   `json:"message"`
	Instructor Identity `json:"instructor"`
}

type LoginResponse struct {
	Success    bool     `json:"success"`
	Instructor Identity `json:"instructor"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
