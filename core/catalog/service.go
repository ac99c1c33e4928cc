package catalog

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrStudentNotFound    = errors.New("student record not found")
	ErrInstructorNotFound = errors.New("instructor record not found")
)

type (
	Repository interface {
		// courses
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		// universities
		CreateUniversity(ctx context.Context, nu NewUniversity) (University, error)
		QueryAllUniversities(ctx context.Context) ([]University, error)
		DeleteUniversity(ctx context.Context, id int) error

		// textbooks; linking finds-or-creates the book and links it to the
		// course within a single transaction
		QueryAllTextbooks(ctx context.Context) ([]Textbook, error)
		QueryCourseTextbooks(ctx context.Context, courseID int) ([]Textbook, error)
		LinkCourseTextbook(ctx context.Context, courseID int, nt NewTextbook) (Textbook, error)
		UnlinkCourseTextbook(ctx context.Context, courseID, bookID int) error

		// topics; same find-or-create-then-link contract as textbooks
		QueryCourseTopics(ctx context.Context, courseID int) ([]Topic, error)
		LinkCourseTopic(ctx context.Context, courseID int, nt NewTopic) (Topic, error)
		UnlinkCourseTopic(ctx context.Context, courseID, topicID int) error

		// people
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByUserID(ctx context.Context, userID int) (Student, error)
		UpsertStudentProfile(ctx context.Context, userID int, sp StudentProfile) (Student, error)
		GetInstructorByUserID(ctx context.Context, userID int) (Instructor, error)
		UpsertInstructorProfile(ctx context.Context, userID int, ip InstructorProfile) (Instructor, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, nc)
}

func (svc *Service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetCourse(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) UpdateCourse(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err := uc.Validate(orig); err != nil {
		return Course{}, err
	}
	return svc.repo.UpdateCourse(ctx, id, uc)
}

func (svc *Service) DeleteCourse(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) CreateUniversity(ctx context.Context, nu NewUniversity) (University, error) {
	return svc.repo.CreateUniversity(ctx, nu)
}

func (svc *Service) QueryUniversities(ctx context.Context) ([]University, error) {
	return svc.repo.QueryAllUniversities(ctx)
}

func (svc *Service) DeleteUniversity(ctx context.Context, id int) error {
	return svc.repo.DeleteUniversity(ctx, id)
}

func (svc *Service) QueryTextbooks(ctx context.Context) ([]Textbook, error) {
	return svc.repo.QueryAllTextbooks(ctx)
}

func (svc *Service) QueryCourseTextbooks(ctx context.Context, courseID int) ([]Textbook, error) {
	return svc.repo.QueryCourseTextbooks(ctx, courseID)
}

func (svc *Service) AddCourseTextbook(ctx context.Context, courseID int, nt NewTextbook) (Textbook, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Textbook{}, err
	}
	return svc.repo.LinkCourseTextbook(ctx, courseID, nt)
}

func (svc *Service) RemoveCourseTextbook(ctx context.Context, courseID, bookID int) error {
	return svc.repo.UnlinkCourseTextbook(ctx, courseID, bookID)
}

func (svc *Service) QueryCourseTopics(ctx context.Context, courseID int) ([]Topic, error) {
	return svc.repo.QueryCourseTopics(ctx, courseID)
}

func (svc *Service) AddCourseTopic(ctx context.Context, courseID int, nt NewTopic) (Topic, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Topic{}, err
	}
	return svc.repo.LinkCourseTopic(ctx, courseID, nt)
}

func (svc *Service) RemoveCourseTopic(ctx context.Context, courseID, topicID int) error {
	return svc.repo.UnlinkCourseTopic(ctx, courseID, topicID)
}

func (svc *Service) QueryStudents(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetStudentByUserID(ctx context.Context, userID int) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) SaveStudentProfile(ctx context.Context, userID int, sp StudentProfile) (Student, error) {
	return svc.repo.UpsertStudentProfile(ctx, userID, sp)
}

func (svc *Service) GetInstructorByUserID(ctx context.Context, userID int) (Instructor, error) {
	return svc.repo.GetInstructorByUserID(ctx, userID)
}

func (svc *Service) SaveInstructorProfile(ctx context.Context, userID int, ip InstructorProfile) (Instructor, error) {
	return svc.repo.UpsertInstructorProfile(ctx, userID, ip)
}
