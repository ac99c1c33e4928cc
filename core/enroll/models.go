package enroll

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/quadbase/ocms/core"
)

// State is the derived lifecycle state of an Enrollment. Rejection is not a
// state: rejecting deletes the record.
type State string

const (
	StateRequested State = "requested" // approved=false, no evaluation
	StateApproved  State = "approved"  // approved=true, no evaluation
	StateGraded    State = "graded"    // approved=true, evaluation set
)

// Enrollment links one student to one course. The (course, student) pair is
// unique; the store's uniqueness constraint is the mechanism of record.
type Enrollment struct {
	ID         int       `json:"enroll_id"`
	CourseID   int       `json:"course_id"`
	StudentID  int       `json:"student_id"`
	EnrollDate time.Time `json:"enroll_date"`
	Approved   bool      `json:"approved"`
	Evaluation null.Int  `json:"evaluation"`
}

func (e Enrollment) State() State {
	switch {
	case !e.Approved:
		return StateRequested
	case !e.Evaluation.Valid:
		return StateApproved
	default:
		return StateGraded
	}
}

// CourseEnrollment is one row of the instructor's enrollment list for a course.
type CourseEnrollment struct {
	EnrollID    int       `json:"enroll_id"`
	StudentID   int       `json:"student_id"`
	StudentName string    `json:"student_name"`
	EnrollDate  time.Time `json:"enroll_date"`
	Approved    bool      `json:"approved"`
	Evaluation  null.Int  `json:"evaluation"`
}

// CourseRef is a minimal course reference for student-facing course lists.
type CourseRef struct {
	ID   int    `json:"course_id"`
	Name string `json:"course_name"`
}

// Assignment is one (instructor, course) ACL membership pair.
type Assignment struct {
	InstructorID int `json:"instructor_id"`
	CourseID     int `json:"course_id"`
}

// DecisionAction is the closed set of instructor decisions on a request.
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// NewEnrollment is the payload of a student enrollment request.
type NewEnrollment struct {
	CourseID  int `json:"course_id" validate:"required,min=1"`
	StudentID int `json:"student_id" validate:"required,min=1"`
}

func (ne NewEnrollment) Validate() error { return core.Validate.Struct(ne) }

// Decision is the payload of an instructor approve/reject call.
type Decision struct {
	CourseID  int            `json:"course_id" validate:"required,min=1"`
	StudentID int            `json:"student_id" validate:"required,min=1"`
	Action    DecisionAction `json:"action" validate:"required,oneof=approve reject"`
}

func (d Decision) Validate() error { return core.Validate.Struct(d) }

// Evaluation is the payload of an instructor grading call. The pointer keeps
// a missing score distinguishable from a literal zero.
type Evaluation struct {
	CourseID  int  `json:"course_id" validate:"required,min=1"`
	StudentID int  `json:"student_id" validate:"required,min=1"`
	Score     *int `json:"evaluation" validate:"required,min=0,max=100"`
}

func (ev Evaluation) Validate() error { return core.Validate.Struct(ev) }
