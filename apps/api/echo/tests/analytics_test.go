package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/quadbase/ocms/core/analytics"
	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/tests"
)

func Test_analyticsApi_report(t *testing.T) {
	f := setup(t)
	tok := getToken(t, testutil.CreateUser(t, f.usrRepo, "ana", "secret1", user.RoleAnalyst))

	course := testutil.CreateCourse(t, f.catRepo, "Databases", catalog.ProgramDegree)
	studentUsr := testutil.CreateUser(t, f.usrRepo, "kela", "secret1", user.RoleStudent)
	student := testutil.CreateStudent(t, f.catRepo, studentUsr.ID, "Kela M")
	testutil.Enroll(t, f.enrRepo, course.ID, student.ID)
	testutil.Grade(t, f.enrRepo, course.ID, student.ID, 92)

	runTable(t, f.app, []httpTest{
		{name: "Auth required", path: "/v1/analytics", wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken)},
		{name: "Bad courseId", path: "/v1/analytics?courseId=abc", token: tok, wantCode: http.StatusBadRequest},
		{name: "Bad date", path: "/v1/analytics?startDate=01-02-2026", token: tok, wantCode: http.StatusBadRequest},
		{name: "Bad view", path: "/v1/analytics?view=cohort", token: tok, wantCode: http.StatusBadRequest},
	})

	t.Run("Report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics?view=student", tok)
		f.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var rep analytics.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
			t.Fatalf("unmarshalling Report: %v", err)
		}
		if len(rep.EnrollmentStats) != 1 || rep.EnrollmentStats[0].EnrollmentCount != 1 {
			t.Errorf("enrollmentStats = %+v; want one course with one enrollment", rep.EnrollmentStats)
		}
		if len(rep.StudentStats) != 1 || rep.StudentStats[0].AvgGrade.Float64 != 92 {
			t.Errorf("studentStats = %+v; want one student with avg 92", rep.StudentStats)
		}
		if len(rep.PerformanceDistribution) != 1 || rep.PerformanceDistribution[0].GradeRange != "A (90-100)" {
			t.Errorf("performanceDistribution = %+v; want a single A bucket", rep.PerformanceDistribution)
		}
		if rep.Summary.TotalEnrollments != 1 {
			t.Errorf("summary = %+v; want one enrollment", rep.Summary)
		}
	})

	t.Run("Filtered report", func(t *testing.T) {
		path := fmt.Sprintf("/v1/analytics?programType=Certificate&courseId=%d", course.ID)
		req, rec := newAuthRequest(http.MethodGet, path, tok)
		f.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var rep analytics.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
			t.Fatalf("unmarshalling Report: %v", err)
		}
		// the degree course does not match the Certificate predicate
		if len(rep.EnrollmentStats) != 0 {
			t.Errorf("enrollmentStats = %+v; want none", rep.EnrollmentStats)
		}
		// the summary ignores filters
		if rep.Summary.TotalEnrollments != 1 {
			t.Errorf("summary = %+v; want one enrollment", rep.Summary)
		}
	})
}

func Test_analyticsApi_matrix(t *testing.T) {
	f := setup(t)
	tok := getToken(t, testutil.CreateUser(t, f.usrRepo, "ana", "secret1", user.RoleAnalyst))

	course := testutil.CreateCourse(t, f.catRepo, "Databases", catalog.ProgramDegree)
	studentUsr := testutil.CreateUser(t, f.usrRepo, "kela", "secret1", user.RoleStudent)
	student := testutil.CreateStudent(t, f.catRepo, studentUsr.ID, "Kela M")
	testutil.Enroll(t, f.enrRepo, course.ID, student.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/matrix", tok)
	f.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}

	var m analytics.Matrix
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshalling Matrix: %v", err)
	}
	if len(m.Courses) != 1 || len(m.Students) != 1 {
		t.Fatalf("matrix = %+v; want one course and one student", m)
	}
	cell, ok := m.Students[0].Grades[course.ID]
	if !ok {
		t.Fatal("expected a cell for the enrollment")
	}
	if cell.Evaluation.Valid {
		t.Errorf("evaluation = %+v; want null for ungraded", cell.Evaluation)
	}
}
