package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/tests"
)

type enrollFixtures struct {
	fixtures

	course      catalog.Course
	student     catalog.Student
	studentTok  string
	instructor  catalog.Instructor
	instrTok    string
	adminTok    string
	outsiderTok string // instructor without the course on their roster
}

func enrollSetup(t *testing.T) enrollFixtures {
	f := enrollFixtures{fixtures: setup(t)}

	studentUsr := testutil.CreateUser(t, f.usrRepo, "kela", "secret1", user.RoleStudent)
	instrUsr := testutil.CreateUser(t, f.usrRepo, "prof", "secret1", user.RoleInstructor)
	outsiderUsr := testutil.CreateUser(t, f.usrRepo, "other", "secret1", user.RoleInstructor)
	adminUsr := testutil.CreateUser(t, f.usrRepo, "root", "secret1", user.RoleAdmin)

	f.student = testutil.CreateStudent(t, f.catRepo, studentUsr.ID, "Kela M")
	f.instructor = testutil.CreateInstructor(t, f.catRepo, instrUsr.ID, "Prof T")
	testutil.CreateInstructor(t, f.catRepo, outsiderUsr.ID, "Other T")
	f.course = testutil.CreateCourse(t, f.catRepo, "Databases", catalog.ProgramDegree)
	testutil.Assign(t, f.aclRepo, f.instructor.ID, f.course.ID)

	f.studentTok = getToken(t, studentUsr)
	f.instrTok = getToken(t, instrUsr)
	f.outsiderTok = getToken(t, outsiderUsr)
	f.adminTok = getToken(t, adminUsr)
	return f
}

func Test_enrollApi_request(t *testing.T) {
	f := enrollSetup(t)
	body := marshallObj(t, map[string]int{"course_id": f.course.ID})

	runTable(t, f.app, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/enrollments", body: body,
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Student role required", method: http.MethodPost, path: "/v1/enrollments", body: body,
			token: f.instrTok, wantCode: http.StatusForbidden},
		{name: "Success", method: http.MethodPost, path: "/v1/enrollments", body: body,
			token: f.studentTok, wantCode: http.StatusCreated},
		{name: "Duplicate conflicts", method: http.MethodPost, path: "/v1/enrollments", body: body,
			token: f.studentTok, wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "student is already enrolled in this course"})},
		{name: "Unknown course", method: http.MethodPost, path: "/v1/enrollments",
			body:  marshallObj(t, map[string]int{"course_id": 999}),
			token: f.studentTok, wantCode: http.StatusNotFound},
	})
}

func Test_enrollApi_cancel(t *testing.T) {
	f := enrollSetup(t)
	path := fmt.Sprintf("/v1/enrollments?courseId=%d", f.course.ID)

	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)

	runTable(t, f.app, []httpTest{
		{name: "Missing courseId", method: http.MethodDelete, path: "/v1/enrollments",
			token: f.studentTok, wantCode: http.StatusBadRequest},
		{name: "Success", method: http.MethodDelete, path: path,
			token: f.studentTok, wantCode: http.StatusNoContent},
		{name: "Already cancelled", method: http.MethodDelete, path: path,
			token: f.studentTok, wantCode: http.StatusNotFound},
	})

	// an approved enrollment cannot be cancelled
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	testutil.Approve(t, f.enrRepo, f.course.ID, f.student.ID)
	runTable(t, f.app, []httpTest{
		{name: "Approved conflicts", method: http.MethodDelete, path: path,
			token: f.studentTok, wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "enrollment has already been approved"})},
	})
}

func Test_enrollApi_queryForCourse(t *testing.T) {
	f := enrollSetup(t)
	path := fmt.Sprintf("/v1/enrollments?courseId=%d", f.course.ID)

	enr := testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	want := []enroll.CourseEnrollment{{
		EnrollID:    enr.ID,
		StudentID:   f.student.ID,
		StudentName: f.student.Name,
		EnrollDate:  enr.EnrollDate,
		Approved:    false,
	}}

	runTable(t, f.app, []httpTest{
		{name: "Instructor role required", path: path, token: f.studentTok, wantCode: http.StatusForbidden},
		{name: "Roster membership required", path: path, token: f.outsiderTok, wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Success", path: path, token: f.instrTok, wantData: marshallObj(t, want)},
	})
}

func Test_enrollApi_decide(t *testing.T) {
	f := enrollSetup(t)
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)

	approve := marshallObj(t, map[string]interface{}{
		"course_id": f.course.ID, "student_id": f.student.ID, "action": "approve",
	})
	reject := marshallObj(t, map[string]interface{}{
		"course_id": f.course.ID, "student_id": f.student.ID, "action": "reject",
	})

	runTable(t, f.app, []httpTest{
		{name: "Roster membership required", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: approve, token: f.outsiderTok, wantCode: http.StatusForbidden},
		{name: "Bad action", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: marshallObj(t, map[string]interface{}{
				"course_id": f.course.ID, "student_id": f.student.ID, "action": "maybe",
			}),
			token: f.instrTok, wantCode: http.StatusBadRequest},
		{name: "Approve", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: approve, token: f.instrTok, wantCode: http.StatusOK},
		{name: "Approve is idempotent", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: approve, token: f.instrTok, wantCode: http.StatusOK},
		{name: "Reject deletes", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: reject, token: f.instrTok, wantCode: http.StatusOK},
		{name: "Second reject finds nothing", method: http.MethodPut, path: "/v1/enrollments/decision",
			body: reject, token: f.instrTok, wantCode: http.StatusNotFound},
	})
}

func Test_enrollApi_evaluate(t *testing.T) {
	f := enrollSetup(t)
	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)

	grade := func(score int) []byte {
		return marshallObj(t, map[string]interface{}{
			"course_id": f.course.ID, "student_id": f.student.ID, "evaluation": score,
		})
	}

	runTable(t, f.app, []httpTest{
		{name: "Unapproved conflicts", method: http.MethodPut, path: "/v1/enrollments/evaluation",
			body: grade(85), token: f.instrTok, wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "enrollment has not been approved yet"})},
	})

	testutil.Approve(t, f.enrRepo, f.course.ID, f.student.ID)

	runTable(t, f.app, []httpTest{
		{name: "Out of range", method: http.MethodPut, path: "/v1/enrollments/evaluation",
			body: grade(101), token: f.instrTok, wantCode: http.StatusBadRequest},
		{name: "Roster membership required", method: http.MethodPut, path: "/v1/enrollments/evaluation",
			body: grade(85), token: f.outsiderTok, wantCode: http.StatusForbidden},
		{name: "Success", method: http.MethodPut, path: "/v1/enrollments/evaluation",
			body: grade(85), token: f.instrTok, wantCode: http.StatusOK},
	})

	enr, err := f.enrRepo.GetEnrollment(context.Background(), f.course.ID, f.student.ID)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	if !enr.Evaluation.Valid || enr.Evaluation.Int != 85 {
		t.Errorf("evaluation = %+v; want 85", enr.Evaluation)
	}
}

func Test_enrollApi_studentCourses(t *testing.T) {
	f := enrollSetup(t)
	path := fmt.Sprintf("/v1/students/%d/courses", f.student.ID)

	testutil.Enroll(t, f.enrRepo, f.course.ID, f.student.ID)
	want := []enroll.CourseRef{{ID: f.course.ID, Name: f.course.Name}}

	// a second student may not read another student's list
	otherUsr := testutil.CreateUser(t, f.usrRepo, "nosy", "secret1", user.RoleStudent)
	testutil.CreateStudent(t, f.catRepo, otherUsr.ID, "Nosy N")

	runTable(t, f.app, []httpTest{
		{name: "Own list", path: path, token: f.studentTok, wantData: marshallObj(t, want)},
		{name: "Other student refused", path: path, token: getToken(t, otherUsr), wantCode: http.StatusForbidden},
		{name: "Instructor allowed", path: path, token: f.instrTok, wantData: marshallObj(t, want)},
		{name: "Approved only", path: path + "?approved=true", token: f.studentTok,
			wantData: marshallList(t)},
	})
}

func Test_enrollApi_assignments(t *testing.T) {
	f := enrollSetup(t)

	body := marshallObj(t, map[string]int{"instructor_id": f.instructor.ID, "course_id": f.course.ID})
	unassignPath := fmt.Sprintf("/v1/instructor-courses?instructorId=%d&courseId=%d", f.instructor.ID, f.course.ID)

	runTable(t, f.app, []httpTest{
		{name: "Admin required", path: "/v1/instructor-courses", token: f.instrTok, wantCode: http.StatusForbidden},
		{name: "Query", path: "/v1/instructor-courses", token: f.adminTok,
			wantData: marshallList(t, enroll.Assignment{InstructorID: f.instructor.ID, CourseID: f.course.ID})},
		{name: "Assign again is a no-op", method: http.MethodPost, path: "/v1/instructor-courses",
			body: body, token: f.adminTok, wantCode: http.StatusCreated},
		{name: "Unknown instructor", method: http.MethodPost, path: "/v1/instructor-courses",
			body:  marshallObj(t, map[string]int{"instructor_id": 999, "course_id": f.course.ID}),
			token: f.adminTok, wantCode: http.StatusNotFound},
		{name: "Unassign", method: http.MethodDelete, path: unassignPath,
			token: f.adminTok, wantCode: http.StatusNoContent},
		{name: "Empty after unassign", path: "/v1/instructor-courses", token: f.adminTok,
			wantData: marshallList(t)},
	})
}
