package enroll_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/storage/database/inmem"
	"github.com/quadbase/ocms/tests"
)

type fixtures struct {
	svc     *enroll.Service
	usrRepo user.Repository
	catRepo catalog.Repository
	enrRepo enroll.Repository
	aclRepo enroll.ACLRepository

	course     catalog.Course
	student    catalog.Student
	instructor catalog.Instructor
	instrUser  user.User
}

func setup(t *testing.T) fixtures {
	db := inmemdb.New()
	f := fixtures{
		usrRepo: inmemdb.NewUserRepository(db),
		catRepo: inmemdb.NewCatalogRepository(db),
		enrRepo: inmemdb.NewEnrollRepository(db),
		aclRepo: inmemdb.NewACLRepository(db),
	}
	gate := enroll.NewGate(f.catRepo, f.aclRepo)
	f.svc = enroll.NewService(f.enrRepo, f.aclRepo, gate)

	studentUsr := testutil.CreateUser(t, f.usrRepo, "kela", "", user.RoleStudent)
	f.instrUser = testutil.CreateUser(t, f.usrRepo, "prof", "", user.RoleInstructor)
	f.student = testutil.CreateStudent(t, f.catRepo, studentUsr.ID, "Kela M")
	f.instructor = testutil.CreateInstructor(t, f.catRepo, f.instrUser.ID, "Prof T")
	f.course = testutil.CreateCourse(t, f.catRepo, "Databases", catalog.ProgramDegree)
	testutil.Assign(t, f.aclRepo, f.instructor.ID, f.course.ID)
	return f
}

func Test_service_Request(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	enr, err := f.svc.Request(ctx, enroll.NewEnrollment{CourseID: f.course.ID, StudentID: f.student.ID})
	require.NoError(t, err)
	assert.Equal(t, enroll.StateRequested, enr.State())
	assert.False(t, enr.Approved)
	assert.False(t, enr.Evaluation.Valid)

	// requesting the same pair again conflicts
	_, err = f.svc.Request(ctx, enroll.NewEnrollment{CourseID: f.course.ID, StudentID: f.student.ID})
	assert.Equal(t, enroll.ErrAlreadyEnrolled, err)

	// unknown course
	_, err = f.svc.Request(ctx, enroll.NewEnrollment{CourseID: 999, StudentID: f.student.ID})
	assert.Equal(t, enroll.ErrNotFound, err)

	// invalid payload
	_, err = f.svc.Request(ctx, enroll.NewEnrollment{CourseID: f.course.ID})
	assert.Error(t, err)
}

func Test_service_Cancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// nothing to cancel
	err := f.svc.Cancel(ctx, f.course.ID, f.student.ID)
	assert.Equal(t, enroll.ErrNotFound, err)

	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	require.NoError(t, f.svc.Cancel(ctx, f.course.ID, f.student.ID))
	_, err = f.svc.Enrollment(ctx, f.course.ID, f.student.ID)
	assert.Equal(t, enroll.ErrNotFound, err)

	// cancelling after approval conflicts
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	testutil.Approve(t, f.enrRepo, f.course.ID, f.student.ID)
	err = f.svc.Cancel(ctx, f.course.ID, f.student.ID)
	assert.Equal(t, enroll.ErrAlreadyApproved, err)
}

func Test_service_Decide(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)

	// a student cannot decide
	studentUsr := testutil.CreateUser(t, f.usrRepo, "sneaky", "", user.RoleStudent)
	err := f.svc.Decide(ctx, studentUsr, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionApprove,
	})
	assert.Equal(t, enroll.ErrForbidden, err)

	// an instructor without the course on their roster cannot decide
	otherUsr := testutil.CreateUser(t, f.usrRepo, "other", "", user.RoleInstructor)
	testutil.CreateInstructor(t, f.catRepo, otherUsr.ID, "Other T")
	err = f.svc.Decide(ctx, otherUsr, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionApprove,
	})
	assert.Equal(t, enroll.ErrForbidden, err)

	// approve
	err = f.svc.Decide(ctx, f.instrUser, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionApprove,
	})
	require.NoError(t, err)
	enr, err := f.svc.Enrollment(ctx, f.course.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, enroll.StateApproved, enr.State())

	// approve is idempotent
	err = f.svc.Decide(ctx, f.instrUser, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionApprove,
	})
	assert.NoError(t, err)

	// reject deletes the record
	err = f.svc.Decide(ctx, f.instrUser, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionReject,
	})
	require.NoError(t, err)
	_, err = f.svc.Enrollment(ctx, f.course.ID, f.student.ID)
	assert.Equal(t, enroll.ErrNotFound, err)

	// a second reject finds nothing
	err = f.svc.Decide(ctx, f.instrUser, enroll.Decision{
		CourseID: f.course.ID, StudentID: f.student.ID, Action: enroll.ActionReject,
	})
	assert.Equal(t, enroll.ErrNotFound, err)
}

func Test_service_SetEvaluation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	score := func(n int) *int { return &n }

	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)

	// grading an unapproved enrollment conflicts
	err := f.svc.SetEvaluation(ctx, f.instrUser, enroll.Evaluation{
		CourseID: f.course.ID, StudentID: f.student.ID, Score: score(85),
	})
	assert.Equal(t, enroll.ErrNotApproved, err)

	testutil.Approve(t, f.enrRepo, f.course.ID, f.student.ID)

	// out-of-range scores are rejected
	err = f.svc.SetEvaluation(ctx, f.instrUser, enroll.Evaluation{
		CourseID: f.course.ID, StudentID: f.student.ID, Score: score(101),
	})
	assert.Error(t, err)
	err = f.svc.SetEvaluation(ctx, f.instrUser, enroll.Evaluation{
		CourseID: f.course.ID, StudentID: f.student.ID, Score: score(-1),
	})
	assert.Error(t, err)

	err = f.svc.SetEvaluation(ctx, f.instrUser, enroll.Evaluation{
		CourseID: f.course.ID, StudentID: f.student.ID, Score: score(85),
	})
	require.NoError(t, err)
	enr, err := f.svc.Enrollment(ctx, f.course.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, enroll.StateGraded, enr.State())
	assert.Equal(t, 85, enr.Evaluation.Int)

	// re-grading overwrites
	err = f.svc.SetEvaluation(ctx, f.instrUser, enroll.Evaluation{
		CourseID: f.course.ID, StudentID: f.student.ID, Score: score(0),
	})
	require.NoError(t, err)
	enr, _ = f.svc.Enrollment(ctx, f.course.ID, f.student.ID)
	assert.Equal(t, 0, enr.Evaluation.Int)
}

func Test_service_ListForCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	usr2 := testutil.CreateUser(t, f.usrRepo, "abby", "", user.RoleStudent)
	student2 := testutil.CreateStudent(t, f.catRepo, usr2.ID, "Abby Z")
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	testutil.Enroll(t, f.enrRepo, f.course.ID, student2.ID)

	enrs, err := f.svc.ListForCourse(ctx, f.instrUser, f.course.ID)
	require.NoError(t, err)
	require.Len(t, enrs, 2)
	// sorted by student name
	assert.Equal(t, "Abby Z", enrs[0].StudentName)
	assert.Equal(t, "Kela M", enrs[1].StudentName)

	// off-roster instructor is refused
	otherUsr := testutil.CreateUser(t, f.usrRepo, "other", "", user.RoleInstructor)
	testutil.CreateInstructor(t, f.catRepo, otherUsr.ID, "Other T")
	_, err = f.svc.ListForCourse(ctx, otherUsr, f.course.ID)
	assert.Equal(t, enroll.ErrForbidden, err)
}

func Test_service_StudentCourses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	course2 := testutil.CreateCourse(t, f.catRepo, "Algorithms", catalog.ProgramDegree)
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	testutil.Enroll(t, f.enrRepo, course2.ID, f.student.ID)
	testutil.Approve(t, f.enrRepo, course2.ID, f.student.ID)

	all, err := f.svc.StudentCourses(ctx, f.student.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := f.svc.StudentCourses(ctx, f.student.ID, true)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, course2.ID, approved[0].ID)
}

func Test_service_ACL(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	course2 := testutil.CreateCourse(t, f.catRepo, "Networks", catalog.ProgramCertificate)

	require.NoError(t, f.svc.AssignCourse(ctx, f.instructor.ID, course2.ID))
	// assigning again is a no-op
	require.NoError(t, f.svc.AssignCourse(ctx, f.instructor.ID, course2.ID))

	ids, err := f.svc.InstructorCourseIDs(ctx, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{f.course.ID, course2.ID}, ids)

	asgs, err := f.svc.QueryAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, asgs, 2)

	require.NoError(t, f.svc.UnassignCourse(ctx, f.instructor.ID, course2.ID))
	ids, err = f.svc.InstructorCourseIDs(ctx, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{f.course.ID}, ids)

	// unknown instructor cannot be assigned
	err = f.svc.AssignCourse(ctx, 999, f.course.ID)
	assert.Equal(t, enroll.ErrNotFound, err)
}
