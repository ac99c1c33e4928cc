package analytics

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// View selects which secondary table the report computes; the other is left
// empty to avoid needless work.
type View string

const (
	ViewCourse  View = "course"
	ViewStudent View = "student"
)

// Filter is the optional predicate set of a report. Zero-valued fields pass
// everything through; date bounds are inclusive and independently optional.
type Filter struct {
	ProgramType string
	CourseID    int
	StartDate   time.Time
	EndDate     time.Time
	View        View
}

func (f Filter) hasPredicates() bool {
	return f.ProgramType != "" || f.CourseID != 0 || !f.StartDate.IsZero() || !f.EndDate.IsZero()
}

// Fact is one enrollment row joined with its course and student dimensions,
// the unit the aggregation pipeline works on.
type Fact struct {
	CourseID    int
	CourseName  string
	ProgramType string
	Duration    string
	StudentID   int
	StudentName string
	SkillLevel  string
	City        string
	Country     string
	Evaluation  null.Int
	EnrollDate  time.Time
}

// CourseDim is the course dimension row.
type CourseDim struct {
	ID          int
	Name        string
	ProgramType string
	Duration    string
}

// StudentDim is the student dimension row.
type StudentDim struct {
	ID         int
	Name       string
	SkillLevel string
	City       string
	Country    string
}

type CourseStats struct {
	CourseID        int          `json:"course_id"`
	CourseName      string       `json:"course_name"`
	ProgramType     string       `json:"program_type"`
	Duration        string       `json:"duration"`
	EnrollmentCount int          `json:"enrollment_count"`
	AvgEvaluation   null.Float64 `json:"avg_evaluation"`
	MinEvaluation   null.Int     `json:"min_evaluation"`
	MaxEvaluation   null.Int     `json:"max_evaluation"`
}

type StudentStats struct {
	StudentID       int          `json:"student_id"`
	StudentName     string       `json:"student_name"`
	SkillLevel      string       `json:"skill_level"`
	City            string       `json:"city"`
	Country         string       `json:"country"`
	CoursesEnrolled int          `json:"courses_enrolled"`
	AvgGrade        null.Float64 `json:"avg_grade"`
	MinGrade        null.Int     `json:"min_grade"`
	MaxGrade        null.Int     `json:"max_grade"`
}

type GradeBucket struct {
	GradeRange string `json:"grade_range"`
	Count      int    `json:"count"`
}

type Summary struct {
	TotalCourses     int          `json:"totalCourses"`
	TotalStudents    int          `json:"totalStudents"`
	TotalEnrollments int          `json:"totalEnrollments"`
	AvgEvaluation    null.Float64 `json:"avgEvaluation"`
}

type CourseRef struct {
	ID   int    `json:"course_id"`
	Name string `json:"course_name"`
}

type FilterOptions struct {
	ProgramTypes []string    `json:"programTypes"`
	Courses      []CourseRef `json:"courses"`
}

type Report struct {
	EnrollmentStats         []CourseStats  `json:"enrollmentStats"`
	PerformanceDistribution []GradeBucket  `json:"performanceDistribution"`
	StudentStats            []StudentStats `json:"studentStats"`
	Summary                 Summary        `json:"summary"`
	Filters                 FilterOptions  `json:"filters"`
}

// MatrixCell distinguishes enrolled-but-ungraded (evaluation null) from an
// absent cell (no map entry, not enrolled).
type MatrixCell struct {
	Evaluation null.Int  `json:"evaluation"`
	EnrollDate time.Time `json:"enroll_date"`
}

type MatrixStudent struct {
	StudentID   int                `json:"student_id"`
	StudentName string             `json:"student_name"`
	SkillLevel  string             `json:"skill_level"`
	Grades      map[int]MatrixCell `json:"grades"`
}

type Matrix struct {
	Courses  []CourseRef     `json:"courses"`
	Students []MatrixStudent `json:"students"`
}
