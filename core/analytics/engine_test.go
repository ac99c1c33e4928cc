package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadbase/ocms/core/analytics"
	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/storage/database/inmem"
	"github.com/quadbase/ocms/tests"
)

type fixtures struct {
	svc     *analytics.Service
	usrRepo user.Repository
	catRepo catalog.Repository
	enrRepo enroll.Repository

	db      catalog.Course // "Databases", Degree
	algo    catalog.Course // "Algorithms", Degree
	net     catalog.Course // "Networks", Certificate
	alice   catalog.Student
	bob     catalog.Student
	charlie catalog.Student
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// setup seeds three courses and three students:
//
//	alice:   Databases 95 (graded), Algorithms 72 (graded)
//	bob:     Databases 55 (graded), Networks (approved, ungraded)
//	charlie: no enrollments
func setup(t *testing.T) fixtures {
	mem := inmemdb.New()
	f := fixtures{
		svc:     analytics.NewService(inmemdb.NewAnalyticsRepository(mem)),
		usrRepo: inmemdb.NewUserRepository(mem),
		catRepo: inmemdb.NewCatalogRepository(mem),
		enrRepo: inmemdb.NewEnrollRepository(mem),
	}

	f.db = testutil.CreateCourse(t, f.catRepo, "Databases", catalog.ProgramDegree)
	f.algo = testutil.CreateCourse(t, f.catRepo, "Algorithms", catalog.ProgramDegree)
	f.net = testutil.CreateCourse(t, f.catRepo, "Networks", catalog.ProgramCertificate)

	u1 := testutil.CreateUser(t, f.usrRepo, "alice", "", user.RoleStudent)
	u2 := testutil.CreateUser(t, f.usrRepo, "bob", "", user.RoleStudent)
	u3 := testutil.CreateUser(t, f.usrRepo, "charlie", "", user.RoleStudent)
	f.alice = testutil.CreateStudent(t, f.catRepo, u1.ID, "Alice")
	f.bob = testutil.CreateStudent(t, f.catRepo, u2.ID, "Bob")
	f.charlie = testutil.CreateStudent(t, f.catRepo, u3.ID, "Charlie")

	testutil.Enroll(t, f.enrRepo, f.db.ID, f.alice.ID, day("2026-01-10"))
	testutil.Grade(t, f.enrRepo, f.db.ID, f.alice.ID, 95)
	testutil.Enroll(t, f.enrRepo, f.algo.ID, f.alice.ID, day("2026-02-15"))
	testutil.Grade(t, f.enrRepo, f.algo.ID, f.alice.ID, 72)
	testutil.Enroll(t, f.enrRepo, f.db.ID, f.bob.ID, day("2026-03-01"))
	testutil.Grade(t, f.enrRepo, f.db.ID, f.bob.ID, 55)
	testutil.Enroll(t, f.enrRepo, f.net.ID, f.bob.ID, day("2026-03-20"))
	testutil.Approve(t, f.enrRepo, f.net.ID, f.bob.ID)
	return f
}

func Test_engine_Report(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rep, err := f.svc.Report(ctx, analytics.Filter{})
	require.NoError(t, err)

	// every course appears, busiest first
	require.Len(t, rep.EnrollmentStats, 3)
	db := rep.EnrollmentStats[0]
	assert.Equal(t, f.db.ID, db.CourseID)
	assert.Equal(t, 2, db.EnrollmentCount)
	assert.Equal(t, 75.0, db.AvgEvaluation.Float64)
	assert.Equal(t, 55, db.MinEvaluation.Int)
	assert.Equal(t, 95, db.MaxEvaluation.Int)

	// the ungraded Networks enrollment counts but contributes no aggregates
	for _, st := range rep.EnrollmentStats {
		if st.CourseID == f.net.ID {
			assert.Equal(t, 1, st.EnrollmentCount)
			assert.False(t, st.AvgEvaluation.Valid)
		}
	}

	// alphabetically sorted buckets, empty ones omitted
	assert.Equal(t, []analytics.GradeBucket{
		{GradeRange: "A (90-100)", Count: 1},
		{GradeRange: "C (70-79)", Count: 1},
		{GradeRange: "F (<60)", Count: 1},
	}, rep.PerformanceDistribution)

	assert.Equal(t, 3, rep.Summary.TotalCourses)
	assert.Equal(t, 3, rep.Summary.TotalStudents)
	assert.Equal(t, 4, rep.Summary.TotalEnrollments)
	assert.Equal(t, 74.0, rep.Summary.AvgEvaluation.Float64) // (95+72+55)/3

	assert.Equal(t, []string{"Certificate", "Degree"}, rep.Filters.ProgramTypes)
	require.Len(t, rep.Filters.Courses, 3)
	assert.Equal(t, "Algorithms", rep.Filters.Courses[0].Name)

	// course view leaves student stats empty
	assert.Empty(t, rep.StudentStats)
}

func Test_engine_Report_studentView(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rep, err := f.svc.Report(ctx, analytics.Filter{View: analytics.ViewStudent})
	require.NoError(t, err)

	// all students appear when no predicates are active; graded first
	require.Len(t, rep.StudentStats, 3)
	assert.Equal(t, "Alice", rep.StudentStats[0].StudentName)
	assert.Equal(t, 83.5, rep.StudentStats[0].AvgGrade.Float64)
	assert.Equal(t, 72, rep.StudentStats[0].MinGrade.Int)
	assert.Equal(t, 95, rep.StudentStats[0].MaxGrade.Int)
	assert.Equal(t, "Bob", rep.StudentStats[1].StudentName)
	assert.Equal(t, 2, rep.StudentStats[1].CoursesEnrolled)
	assert.Equal(t, "Charlie", rep.StudentStats[2].StudentName)
	assert.Equal(t, 0, rep.StudentStats[2].CoursesEnrolled)
	assert.False(t, rep.StudentStats[2].AvgGrade.Valid)

	// with a predicate, students without matching enrollments drop out
	rep, err = f.svc.Report(ctx, analytics.Filter{View: analytics.ViewStudent, CourseID: f.db.ID})
	require.NoError(t, err)
	require.Len(t, rep.StudentStats, 2)
	for _, st := range rep.StudentStats {
		assert.NotEqual(t, "Charlie", st.StudentName)
	}
}

func Test_engine_Report_filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// program type keeps only matching courses
	rep, err := f.svc.Report(ctx, analytics.Filter{ProgramType: "Certificate"})
	require.NoError(t, err)
	require.Len(t, rep.EnrollmentStats, 1)
	assert.Equal(t, f.net.ID, rep.EnrollmentStats[0].CourseID)

	// date bounds are inclusive and drop zero-count courses
	rep, err = f.svc.Report(ctx, analytics.Filter{
		StartDate: day("2026-02-15"),
		EndDate:   day("2026-03-01"),
	})
	require.NoError(t, err)
	require.Len(t, rep.EnrollmentStats, 2)
	for _, st := range rep.EnrollmentStats {
		assert.Equal(t, 1, st.EnrollmentCount)
		assert.NotEqual(t, f.net.ID, st.CourseID)
	}

	// the summary ignores filters
	assert.Equal(t, 4, rep.Summary.TotalEnrollments)

	// course filter
	rep, err = f.svc.Report(ctx, analytics.Filter{CourseID: f.algo.ID})
	require.NoError(t, err)
	require.Len(t, rep.EnrollmentStats, 1)
	assert.Equal(t, 72.0, rep.EnrollmentStats[0].AvgEvaluation.Float64)
}

func Test_engine_Report_gradeBoundaries(t *testing.T) {
	mem := inmemdb.New()
	usrRepo := inmemdb.NewUserRepository(mem)
	catRepo := inmemdb.NewCatalogRepository(mem)
	enrRepo := inmemdb.NewEnrollRepository(mem)
	svc := analytics.NewService(inmemdb.NewAnalyticsRepository(mem))

	course := testutil.CreateCourse(t, catRepo, "Calculus", catalog.ProgramDegree)
	for i, score := range []int{90, 89, 80, 79, 70, 69, 60, 59, 0, 100} {
		u := testutil.CreateUser(t, usrRepo, "stud"+string(rune('a'+i)), "", user.RoleStudent)
		s := testutil.CreateStudent(t, catRepo, u.ID, "Student "+string(rune('A'+i)))
		testutil.Enroll(t, enrRepo, course.ID, s.ID)
		testutil.Grade(t, enrRepo, course.ID, s.ID, score)
	}

	rep, err := svc.Report(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []analytics.GradeBucket{
		{GradeRange: "A (90-100)", Count: 2},
		{GradeRange: "B (80-89)", Count: 2},
		{GradeRange: "C (70-79)", Count: 2},
		{GradeRange: "D (60-69)", Count: 2},
		{GradeRange: "F (<60)", Count: 2},
	}, rep.PerformanceDistribution)
}

func Test_engine_Report_emptyStore(t *testing.T) {
	svc := analytics.NewService(inmemdb.NewAnalyticsRepository(inmemdb.New()))

	rep, err := svc.Report(context.Background(), analytics.Filter{View: analytics.ViewStudent})
	require.NoError(t, err)
	assert.Empty(t, rep.EnrollmentStats)
	assert.Empty(t, rep.PerformanceDistribution)
	assert.Empty(t, rep.StudentStats)
	assert.Equal(t, analytics.Summary{}, rep.Summary)
	assert.Empty(t, rep.Filters.Courses)
	assert.False(t, rep.Summary.AvgEvaluation.Valid)
}

func Test_engine_Matrix(t *testing.T) {
	f := setup(t)

	m, err := f.svc.Matrix(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Courses, 3)
	assert.Equal(t, f.db.ID, m.Courses[0].ID)

	require.Len(t, m.Students, 3)
	alice := m.Students[0]
	assert.Equal(t, "Alice", alice.StudentName)
	require.Len(t, alice.Grades, 2)
	assert.Equal(t, 95, alice.Grades[f.db.ID].Evaluation.Int)

	// enrolled-but-ungraded keeps its cell with a null evaluation
	bob := m.Students[1]
	cell, ok := bob.Grades[f.net.ID]
	require.True(t, ok)
	assert.False(t, cell.Evaluation.Valid)

	// no enrollments, no cells
	assert.Empty(t, m.Students[2].Grades)
}
