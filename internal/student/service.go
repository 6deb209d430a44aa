package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/userlog"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentIDTaken     = errors.New("student id already exists")
	ErrIDNumberTaken      = errors.New("id number is already taken")
	ErrInvalidCredentials = errors.New("invalid student id or password")
	ErrInvalidSearch      = errors.New("invalid search pattern")
)

// AuditLog records login and logout events.
type AuditLog interface {
	Append(ctx context.Context, entry *userlog.UserLog) error
}

type Service interface {
	CreateStudent(ctx context.Context, req CreateRequest) (*Student, error)
	GetAllStudents(ctx context.Context) ([]Student, error)
	SearchStudents(ctx context.Context, query string) ([]Student, error)
	GetStudentByID(ctx context.Context, id string) (*Student, error)
	GetStudentByIDNumber(ctx context.Context, idNumber string) (*Student, error)
	GetStudentsByIDNumbers(ctx context.Context, idNumbers []string) ([]Student, error)
	UpdateStudent(ctx context.Context, id string, req UpdateRequest) (*Student, error)
	DeleteStudent(ctx context.Context, id string) error
	Login(ctx context.Context, req LoginRequest) (*Student, error)
	Logout(ctx context.Context, idNumber string) (*Student, error)
	CountStudents(ctx context.Context) (int, error)
	SignupTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

type service struct {
	repo  Repository
	audit AuditLog
}

func NewService(repo Repository, audit AuditLog) Service {
	return &service{
		repo:  repo,
		audit: audit,
	}
}

func (s *service) CreateStudent(ctx context.Context, req CreateRequest) (*Student, error) {
	if _, err := s.repo.GetByIDNumber(ctx, req.IDNumber); err == nil {
		return nil, ErrStudentIDTaken
	} else if !errors.Is(err, ErrStudentNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, &Student{
		IDNumber: req.IDNumber,
		FullName: req.FullName,
		Password: hashed,
	})
}

func (s *service) GetAllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) SearchStudents(ctx context.Context, query string) ([]Student, error) {
	return s.repo.Search(ctx, query)
}

func (s *service) GetStudentByID(ctx context.Context, id string) (*Student, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetStudentByIDNumber(ctx context.Context, idNumber string) (*Student, error) {
	return s.repo.GetByIDNumber(ctx, idNumber)
}

func (s *service) GetStudentsByIDNumbers(ctx context.Context, idNumbers []string) ([]Student, error) {
	return s.repo.GetByIDNumbers(ctx, idNumbers)
}

// UpdateStudent changes ID number and name. A changed ID number must be free.
func (s *service) UpdateStudent(ctx context.Context, id string, req UpdateRequest) (*Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IDNumber != student.IDNumber {
		if _, err := s.repo.GetByIDNumber(ctx, req.IDNumber); err == nil {
			return nil, ErrIDNumberTaken
		} else if !errors.Is(err, ErrStudentNotFound) {
			return nil, err
		}
	}

	student.IDNumber = req.IDNumber
	student.FullName = req.FullName
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) DeleteStudent(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Login checks the password and appends a login entry on success only.
func (s *service) Login(ctx context.Context, req LoginRequest) (*Student, error) {
	student, err := s.repo.GetByIDNumber(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(student.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.audit.Append(ctx, auditEntry(student, userlog.ActionLogin)); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) Logout(ctx context.Context, idNumber string) (*Student, error) {
	student, err := s.repo.GetByIDNumber(ctx, idNumber)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, auditEntry(student, userlog.ActionLogout)); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) CountStudents(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *service) SignupTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return s.repo.CreatedBetween(ctx, from, to)
}

func auditEntry(student *Student, action string) *userlog.UserLog {
	return &userlog.UserLog{
		UserID:   student.ID,
		UserType: userlog.UserTypeStudent,
		FullName: student.FullName,
		IDNumber: student.IDNumber,
		Action:   action,
	}
}
