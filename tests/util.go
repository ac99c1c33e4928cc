package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo catalog.Repository, userID int, name string) catalog.Student {
	t.Helper()

	student, err := repo.UpsertStudentProfile(context.Background(), userID, catalog.StudentProfile{Name: name})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

func CreateInstructor(t *testing.T, repo catalog.Repository, userID int, name string) catalog.Instructor {
	t.Helper()

	instructor, err := repo.UpsertInstructorProfile(context.Background(), userID, catalog.InstructorProfile{Name: name})
	if err != nil {
		t.Fatalf("CreateInstructor() failed: %v", err)
	}
	return instructor
}

func CreateCourse(t *testing.T, repo catalog.Repository, name string, programType catalog.ProgramType) catalog.Course {
	t.Helper()

	course, err := repo.CreateCourse(context.Background(), catalog.NewCourse{
		Name:        name,
		ProgramType: programType,
		Duration:    "8 weeks",
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func Enroll(t *testing.T, repo enroll.Repository, courseID, studentID int, enrollDate ...time.Time) enroll.Enrollment {
	t.Helper()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if len(enrollDate) > 0 {
		date = enrollDate[0]
	}
	enr, err := repo.CreateEnrollment(context.Background(), courseID, studentID, date)
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func Approve(t *testing.T, repo enroll.Repository, courseID, studentID int) {
	t.Helper()

	if err := repo.SetApproved(context.Background(), courseID, studentID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
}

func Grade(t *testing.T, repo enroll.Repository, courseID, studentID, score int) {
	t.Helper()

	if err := repo.SetApproved(context.Background(), courseID, studentID); err != nil {
		t.Fatalf("Grade() failed: %v", err)
	}
	if err := repo.SetEvaluation(context.Background(), courseID, studentID, score); err != nil {
		t.Fatalf("Grade() failed: %v", err)
	}
}

func Assign(t *testing.T, repo enroll.ACLRepository, instructorID, courseID int) {
	t.Helper()

	if err := repo.AssignCourse(context.Background(), instructorID, courseID); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
}
