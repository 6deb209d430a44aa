package instructor

import (
	"context"
	"errors"
	"fmt"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/userlog"
)

var (
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrInstructorIDTaken  = errors.New("instructor id already exists")
	ErrIDNumberTaken      = errors.New("id number is already taken")
	ErrInvalidCredentials = errors.New("invalid instructor id or password")
)

type AuditLog interface {
	Append(ctx context.Context, entry *userlog.UserLog) error
}

type Service interface {
	CreateInstructor(ctx context.Context, req CreateRequest) (*Instructor, error)
	GetAllInstructors(ctx context.Context) ([]Instructor, error)
	GetInstructorByID(ctx context.Context, id string) (*Instructor, error)
	GetInstructorByIDNumber(ctx context.Context, idNumber string) (*Instructor, error)
	UpdateInstructor(ctx context.Context, id string, req UpdateRequest) (*Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
	Login(ctx context.Context, req LoginRequest) (*Instructor, error)
	Logout(ctx context.Context, idNumber string) (*Instructor, error)
	CountInstructors(ctx context.Context) (int, error)
	// DisplayNames maps ID numbers to full names. Unknown ID numbers are absent.
	DisplayNames(ctx context.Context, idNumbers []string) (map[string]string, error)
	ResolveInstructor(ctx context.Context, idNumber string) (auth.Actor, error)
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

func (s *service) CreateInstructor(ctx context.Context, req CreateRequest) (*Instructor, error) {
	if _, err := s.repo.GetByIDNumber(ctx, req.IDNumber); err == nil {
		return nil, ErrInstructorIDTaken
	} else if !errors.Is(err, ErrInstructorNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, &Instructor{
		IDNumber: req.IDNumber,
		FullName: req.FullName,
		Password: hashed,
	})
}

func (s *service) GetAllInstructors(ctx context.Context) ([]Instructor, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetInstructorByID(ctx context.Context, id string) (*Instructor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetInstructorByIDNumber(ctx context.Context, idNumber string) (*Instructor, error) {
	return s.repo.GetByIDNumber(ctx, idNumber)
}

func (s *service) UpdateInstructor(ctx context.Context, id string, req UpdateRequest) (*Instructor, error) {
	instructor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IDNumber != instructor.IDNumber {
		if _, err := s.repo.GetByIDNumber(ctx, req.IDNumber); err == nil {
			return nil, ErrIDNumberTaken
		} else if !errors.Is(err, ErrInstructorNotFound) {
			return nil, err
		}
	}

	instructor.IDNumber = req.IDNumber
	instructor.FullName = req.FullName
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		instructor.Password = hashed
	}

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, err
	}
	return instructor, nil
}

func (s *service) DeleteInstructor(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Instructor, error) {
	instructor, err := s.repo.GetByIDNumber(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(instructor.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.audit.Append(ctx, auditEntry(instructor, userlog.ActionLogin)); err != nil {
		return nil, err
	}
	return instructor, nil
}

func (s *service) Logout(ctx context.Context, idNumber string) (*Instructor, error) {
	instructor, err := s.repo.GetByIDNumber(ctx, idNumber)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, auditEntry(instructor, userlog.ActionLogout)); err != nil {
		return nil, err
	}
	return instructor, nil
}

func (s *service) CountInstructors(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *service) DisplayNames(ctx context.Context, idNumbers []string) (map[string]string, error) {
	instructors, err := s.repo.GetByIDNumbers(ctx, idNumbers)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(instructors))
	for _, i := range instructors {
		names[i.IDNumber] = i.FullName
	}
	return names, nil
}

// ResolveInstructor turns an instructor-id header value into a request actor.
func (s *service) ResolveInstructor(ctx context.Context, idNumber string) (auth.Actor, error) {
	instructor, err := s.repo.GetByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			return auth.Actor{}, auth.ErrUnknownActor
		}
		return auth.Actor{}, err
	}

	return auth.Actor{
		Role:     auth.RoleInstructor,
		ID:       instructor.ID,
		IDNumber: instructor.IDNumber,
		FullName: instructor.FullName,
	}, nil
}

func auditEntry(instructor *Instructor, action string) *userlog.UserLog {
	return &userlog.UserLog{
		UserID:   instructor.ID,
		UserType: userlog.UserTypeInstructor,
		FullName: instructor.FullName,
		IDNumber: instructor.IDNumber,
		Action:   action,
	}
}
