package course

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	ScheduleNotSet = "Schedule not set"
	RoomNotSet     = "Room not set"
)

// Course is unique per (instructor_id, course_code). Students holds the
// enrolled students' ID numbers.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID           string    `bun:"id,pk,type:varchar(36)" json:"id"`
	CourseCode   string    `bun:"course_code,notnull,unique:instructor_course_code" json:"courseCode"`
	CourseName   string    `bun:"course_name,notnull" json:"courseName"`
	InstructorID string    `bun:"instructor_id,notnull,unique:instructor_course_code" json:"instructorId"`
	Schedule     string    `bun:"schedule,notnull" json:"schedule"`
	Room         string    `bun:"room,notnull" json:"room"`
	Students     []string  `bun:"students,array,notnull" json:"students"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Course)(nil)

func (c *Course) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Students == nil {
			c.Students = []string{}
		}
	case *bun.UpdateQuery:
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (c *Course) HasStudent(idNumber string) bool {
	for _, s := range c.Students {
		if s == idNumber {
			return true
		}
	}
	return false
}

// CourseRequest is the body of both create and update.
type CourseRequest struct {
	CourseCode   string `json:"courseCode" validate:"required,max=32"`
	CourseName   string `json:"courseName" validate:"required,max=200"`
	InstructorID string `json:"instructorId" validate:"max=64"`
	Schedule     string `json:"schedule" validate:"max=200"`
	Room         string `json:"room" validate:"max=100"`
}

func (r *CourseRequest) Normalize() {
	r.CourseCode = strings.ToUpper(strings.TrimSpace(r.CourseCode))
	r.CourseName = strings.TrimSpace(r.CourseName)
	r.InstructorID = strings.TrimSpace(r.InstructorID)
	r.Schedule = strings.TrimSpace(r.Schedule)
	r.Room = strings.TrimSpace(r.Room)
}

type VerifyCodeRequest struct {
	CourseCode   string `json:"courseCode" validate:"required"`
	StudentID    string `json:"studentId" validate:"required"`
	InstructorID string `json:"instructorId"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.CourseCode = strings.ToUpper(strings.TrimSpace(r.CourseCode))
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.InstructorID = strings.TrimSpace(r.InstructorID)
}

type VerifyCodeResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Course  *Course `json:"course"`
}

type EnrolledStudent struct {
	IDNumber string `json:"idNumber"`
	FullName string `json:"fullName"`
}

// EnrolledCourse is one entry of a student's enrollment lookup.
type EnrolledCourse struct {
	ID         string `json:"id"`
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Instructor string `json:"instructor"`
	Schedule   string `json:"schedule"`
	Room       string `json:"room"`
}

type EnrolledCoursesResponse struct {
	Success bool             `json:"success"`
	Courses []EnrolledCourse `json:"courses"`
}

type EnrolledCoursesError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
