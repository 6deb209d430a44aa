package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/instructor"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/student"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseCodeTaken    = errors.New("course code already exists for this instructor")
	ErrAmbiguousCode      = errors.New("course code matches more than one course")
	ErrNotCourseOwner     = errors.New("not authorized to manage this course")
	ErrInstructorRequired = errors.New("instructor id is required")
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this course")
	ErrInstructorNotFound = instructor.ErrInstructorNotFound
	ErrStudentNotFound    = student.ErrStudentNotFound
)

// Students is the part of the student service courses depend on.
type Students interface {
	GetStudentByIDNumber(ctx context.Context, idNumber string) (*student.Student, error)
	GetStudentsByIDNumbers(ctx context.Context, idNumbers []string) ([]student.Student, error)
}

// Instructors is the part of the instructor service courses depend on.
type Instructors interface {
	GetInstructorByIDNumber(ctx context.Context, idNumber string) (*instructor.Instructor, error)
	DisplayNames(ctx context.Context, idNumbers []string) (map[string]string, error)
}

type Service interface {
	CreateCourse(ctx context.Context, actor auth.Actor, req CourseRequest) (*Course, error)
	GetAllCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
	GetInstructorCourses(ctx context.Context, instructorID string) ([]Course, error)
	CourseIDsForInstructor(ctx context.Context, instructorID string) ([]string, error)
	UpdateCourse(ctx context.Context, actor auth.Actor, id string, req CourseRequest) (*Course, error)
	DeleteCourse(ctx context.Context, actor auth.Actor, id string) error
	EnrolledStudents(ctx context.Context, id string) ([]EnrolledStudent, error)
	VerifyCode(ctx context.Context, req VerifyCodeRequest) (*Course, error)
	Unenroll(ctx context.Context, actor auth.Actor, courseID, studentID string) error
	EnrolledCourses(ctx context.Context, studentID string) ([]EnrolledCourse, error)
	CountCourses(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	students    Students
	instructors Instructors
	logger      *slog.Logger
}

func NewService(repo Repository, students Students, instructors Instructors, logger *slog.Logger) Service {
	return &service{
		repo:        repo,
		students:    students,
		instructors: instructors,
		logger:      logger,
	}
}

// CreateCourse defaults the owner to the calling instructor.
func (s *service) CreateCourse(ctx context.Context, actor auth.Actor, req CourseRequest) (*Course, error) {
	ownerID := req.InstructorID
	if ownerID == "" {
		if actor.IsAdmin() {
			return nil, ErrInstructorRequired
		}
		ownerID = actor.IDNumber
	}
	if !actor.CanManage(ownerID) {
		return nil, ErrNotCourseOwner
	}

	if _, err := s.instructors.GetInstructorByIDNumber(ctx, ownerID); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Course{
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		InstructorID: ownerID,
		Schedule:     req.Schedule,
		Room:         req.Room,
	})
}

func (s *service) GetAllCourses(ctx context.Context) ([]Course, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetCourse(ctx context.Context, id string) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetInstructorCourses(ctx context.Context, instructorID string) ([]Course, error) {
	return s.repo.GetByInstructor(ctx, instructorID)
}

func (s *service) CourseIDsForInstructor(ctx context.Context, instructorID string) ([]string, error) {
	return s.repo.IDsByInstructor(ctx, instructorID)
}

// UpdateCourse replaces the editable fields. Only the admin may hand a
// course to another instructor.
func (s *service) UpdateCourse(ctx context.Context, actor auth.Actor, id string, req CourseRequest) (*Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, ErrNotCourseOwner
	}

	if req.InstructorID != "" && req.InstructorID != course.InstructorID {
		if !actor.IsAdmin() {
			return nil, ErrNotCourseOwner
		}
		if _, err := s.instructors.GetInstructorByIDNumber(ctx, req.InstructorID); err != nil {
			return nil, err
		}
		course.InstructorID = req.InstructorID
	}

	course.CourseCode = req.CourseCode
	course.CourseName = req.CourseName
	course.Schedule = req.Schedule
	course.Room = req.Room

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) DeleteCourse(ctx context.Context, actor auth.Actor, id string) error {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(course.InstructorID) {
		return ErrNotCourseOwner
	}
	return s.repo.Delete(ctx, id)
}

// EnrolledStudents resolves the enrollment to names. ID numbers with no
// student record are returned with the ID number as name.
func (s *service) EnrolledStudents(ctx context.Context, id string) ([]EnrolledStudent, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	found, err := s.students.GetStudentsByIDNumbers(ctx, course.Students)
	if err != nil {
		return nil, fmt.Errorf("load enrolled students: %w", err)
	}

	names := make(map[string]string, len(found))
	for _, st := range found {
		names[st.IDNumber] = st.FullName
	}

	enrolled := make([]EnrolledStudent, 0, len(course.Students))
	for _, idNumber := range course.Students {
		name, ok := names[idNumber]
		if !ok {
			s.logger.WarnContext(ctx, "enrolled student has no record",
				"course_id", course.ID,
				"student_id", idNumber,
			)
			name = idNumber
		}
		enrolled = append(enrolled, EnrolledStudent{IDNumber: idNumber, FullName: name})
	}
	return enrolled, nil
}

// VerifyCode enrolls a student by course code. Enrolling twice is a no-op.
func (s *service) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*Course, error) {
	if _, err := s.students.GetStudentByIDNumber(ctx, req.StudentID); err != nil {
		return nil, err
	}

	candidates, err := s.repo.GetByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, err
	}

	var target *Course
	for i := range candidates {
		if req.InstructorID == "" || candidates[i].InstructorID == req.InstructorID {
			if target != nil {
				return nil, ErrAmbiguousCode
			}
			target = &candidates[i]
		}
	}
	if target == nil {
		return nil, ErrCourseNotFound
	}

	if err := s.repo.AddStudent(ctx, target.ID, req.StudentID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, target.ID)
}

func (s *service) Unenroll(ctx context.Context, actor auth.Actor, courseID, studentID string) error {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !actor.CanManage(course.InstructorID) {
		return ErrNotCourseOwner
	}

	removed, err := s.repo.RemoveStudent(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrStudentNotEnrolled
	}
	return nil
}

// EnrolledCourses lists a student's courses with the instructor's display
// name. A failed name lookup degrades to the raw instructor ID.
func (s *service) EnrolledCourses(ctx context.Context, studentID string) ([]EnrolledCourse, error) {
	if _, err := s.students.GetStudentByIDNumber(ctx, studentID); err != nil {
		return nil, err
	}

	courses, err := s.repo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	instructorIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		instructorIDs = append(instructorIDs, c.InstructorID)
	}

	names, err := s.instructors.DisplayNames(ctx, instructorIDs)
	if err != nil {
		s.logger.WarnContext(ctx, "instructor name lookup failed, using raw IDs",
			"student_id", studentID,
			"error", err,
		)
		names = map[string]string{}
	}

	result := make([]EnrolledCourse, 0, len(courses))
	for _, c := range courses {
		name, ok := names[c.InstructorID]
		if !ok {
			if err == nil {
				s.logger.WarnContext(ctx, "course references unknown instructor",
					"course_id", c.ID,
					"instructor_id", c.InstructorID,
				)
			}
			name = c.InstructorID
		}

		entry := EnrolledCourse{
			ID:         c.ID,
			CourseCode: c.CourseCode,
			CourseName: c.CourseName,
			Instructor: name,
			Schedule:   c.Schedule,
			Room:       c.Room,
		}
		if entry.Schedule == "" {
			entry.Schedule = ScheduleNotSet
		}
		if entry.Room == "" {
			entry.Room = RoomNotSet
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *service) CountCourses(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
