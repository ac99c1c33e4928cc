package enroll

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/user"
)

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrAlreadyApproved = errors.New("enrollment has already been approved")
	ErrNotApproved     = errors.New("enrollment has not been approved yet")
)

type (
	// Repository is the persistence contract for Enrollment records. CreateEnrollment
	// must rely on the store's (course, student) uniqueness constraint and report a
	// duplicate as ErrAlreadyEnrolled; a missing course or student surfaces as
	// ErrNotFound via referential integrity.
	Repository interface {
		CreateEnrollment(ctx context.Context, courseID, studentID int, enrollDate time.Time) (Enrollment, error)
		GetEnrollment(ctx context.Context, courseID, studentID int) (Enrollment, error)
		QueryCourseEnrollments(ctx context.Context, courseID int) ([]CourseEnrollment, error)
		QueryStudentCourses(ctx context.Context, studentID int, approvedOnly bool) ([]CourseRef, error)
		SetApproved(ctx context.Context, courseID, studentID int) error
		SetEvaluation(ctx context.Context, courseID, studentID, score int) error
		DeleteEnrollment(ctx context.Context, courseID, studentID int) error
	}

	// ACLRepository is the persistence contract for instructor-course memberships.
	ACLRepository interface {
		AssignCourse(ctx context.Context, instructorID, courseID int) error
		UnassignCourse(ctx context.Context, instructorID, courseID int) error
		HasCourse(ctx context.Context, instructorID, courseID int) (bool, error)
		QueryAssignments(ctx context.Context) ([]Assignment, error)
		QueryInstructorCourseIDs(ctx context.Context, instructorID int) ([]int, error)
	}

	Service struct {
		repo Repository
		acl  ACLRepository
		gate *Gate
	}
)

func NewService(repo Repository, acl ACLRepository, gate *Gate) *Service {
	return &Service{repo: repo, acl: acl, gate: gate}
}

// Request creates a Requested enrollment for the pair. Duplicate requests are
// resolved by the store's uniqueness constraint: exactly one record survives
// and the loser gets ErrAlreadyEnrolled.
func (svc *Service) Request(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if err := ne.Validate(); err != nil {
		return Enrollment{}, err
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return svc.repo.CreateEnrollment(ctx, ne.CourseID, ne.StudentID, today)
}

// Cancel removes a pending request. Approved (and graded) enrollments cannot be
// cancelled by the student; those require instructor-side rejection.
func (svc *Service) Cancel(ctx context.Context, courseID, studentID int) error {
	enr, err := svc.repo.GetEnrollment(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if enr.Approved {
		return ErrAlreadyApproved
	}
	return svc.repo.DeleteEnrollment(ctx, courseID, studentID)
}

// ListForCourse returns every enrollment of a course for the acting instructor.
func (svc *Service) ListForCourse(ctx context.Context, actor user.User, courseID int) ([]CourseEnrollment, error) {
	if _, err := svc.gate.Authorize(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseEnrollments(ctx, courseID)
}

// Decide applies an instructor decision on a pending request. Approving an
// already-approved record is a no-op; rejecting deletes the record, and a
// second reject reports ErrNotFound.
func (svc *Service) Decide(ctx context.Context, actor user.User, d Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := svc.gate.Authorize(ctx, actor, d.CourseID); err != nil {
		return err
	}

	switch d.Action {
	case ActionApprove:
		enr, err := svc.repo.GetEnrollment(ctx, d.CourseID, d.StudentID)
		if err != nil {
			return err
		}
		if enr.Approved {
			return nil
		}
		return svc.repo.SetApproved(ctx, d.CourseID, d.StudentID)
	case ActionReject:
		return svc.repo.DeleteEnrollment(ctx, d.CourseID, d.StudentID)
	}
	return errors.Errorf("unknown action %q", d.Action)
}

// SetEvaluation grades an approved enrollment. Grading a pending request is
// refused: approval is a precondition, not an optional nicety.
func (svc *Service) SetEvaluation(ctx context.Context, actor user.User, ev Evaluation) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if _, err := svc.gate.Authorize(ctx, actor, ev.CourseID); err != nil {
		return err
	}

	enr, err := svc.repo.GetEnrollment(ctx, ev.CourseID, ev.StudentID)
	if err != nil {
		return err
	}
	if !enr.Approved {
		return ErrNotApproved
	}
	return svc.repo.SetEvaluation(ctx, ev.CourseID, ev.StudentID, *ev.Score)
}

// StudentCourses lists the courses a student is enrolled in; approvedOnly
// restricts the list to approved enrollments.
func (svc *Service) StudentCourses(ctx context.Context, studentID int, approvedOnly bool) ([]CourseRef, error) {
	return svc.repo.QueryStudentCourses(ctx, studentID, approvedOnly)
}

// Enrollment returns the record for a pair, if any.
func (svc *Service) Enrollment(ctx context.Context, courseID, studentID int) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, courseID, studentID)
}

// ACL management (admin-side)

func (svc *Service) AssignCourse(ctx context.Context, instructorID, courseID int) error {
	return svc.acl.AssignCourse(ctx, instructorID, courseID)
}

func (svc *Service) UnassignCourse(ctx context.Context, instructorID, courseID int) error {
	return svc.acl.UnassignCourse(ctx, instructorID, courseID)
}

func (svc *Service) QueryAssignments(ctx context.Context) ([]Assignment, error) {
	return svc.acl.QueryAssignments(ctx)
}

func (svc *Service) InstructorCourseIDs(ctx context.Context, instructorID int) ([]int, error) {
	return svc.acl.QueryInstructorCourseIDs(ctx, instructorID)
}
