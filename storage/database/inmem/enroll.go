package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/quadbase/ocms/core/enroll"
)

type enrollRepository struct {
	db *DB
}

var _ enroll.Repository = (*enrollRepository)(nil)

func NewEnrollRepository(db *DB) *enrollRepository {
	return &enrollRepository{db: db}
}

func (repo *enrollRepository) CreateEnrollment(_ context.Context, courseID, studentID int, enrollDate time.Time) (enroll.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	if _, ok := repo.db.students[studentID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	key := pair{courseID, studentID}
	if _, ok := repo.db.enrollments[key]; ok {
		return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
	}
	enr := enroll.Enrollment{
		ID:         repo.db.nextID(),
		CourseID:   courseID,
		StudentID:  studentID,
		EnrollDate: enrollDate,
		Approved:   false,
	}
	repo.db.enrollments[key] = &enr
	return enr, nil
}

func (repo *enrollRepository) GetEnrollment(_ context.Context, courseID, studentID int) (enroll.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if enr, ok := repo.db.enrollments[pair{courseID, studentID}]; ok {
		return *enr, nil
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollRepository) QueryCourseEnrollments(_ context.Context, courseID int) ([]enroll.CourseEnrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrs := make([]enroll.CourseEnrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != courseID {
			continue
		}
		ce := enroll.CourseEnrollment{
			EnrollID:   enr.ID,
			StudentID:  enr.StudentID,
			EnrollDate: enr.EnrollDate,
			Approved:   enr.Approved,
			Evaluation: enr.Evaluation,
		}
		if s, ok := repo.db.students[enr.StudentID]; ok {
			ce.StudentName = s.Name
		}
		enrs = append(enrs, ce)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].StudentName < enrs[j].StudentName })
	return enrs, nil
}

func (repo *enrollRepository) QueryStudentCourses(_ context.Context, studentID int, approvedOnly bool) ([]enroll.CourseRef, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]enroll.CourseRef, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID {
			continue
		}
		if approvedOnly && !enr.Approved {
			continue
		}
		if c, ok := repo.db.courses[enr.CourseID]; ok {
			courses = append(courses, enroll.CourseRef{ID: c.ID, Name: c.Name})
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *enrollRepository) SetApproved(_ context.Context, courseID, studentID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	enr, ok := repo.db.enrollments[pair{courseID, studentID}]
	if !ok {
		return enroll.ErrNotFound
	}
	enr.Approved = true
	return nil
}

func (repo *enrollRepository) SetEvaluation(_ context.Context, courseID, studentID, score int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	enr, ok := repo.db.enrollments[pair{courseID, studentID}]
	if !ok {
		return enroll.ErrNotFound
	}
	enr.Evaluation = null.IntFrom(score)
	return nil
}

func (repo *enrollRepository) DeleteEnrollment(_ context.Context, courseID, studentID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pair{courseID, studentID}
	if _, ok := repo.db.enrollments[key]; !ok {
		return enroll.ErrNotFound
	}
	delete(repo.db.enrollments, key)
	return nil
}

type aclRepository struct {
	db *DB
}

var _ enroll.ACLRepository = (*aclRepository)(nil)

func NewACLRepository(db *DB) *aclRepository {
	return &aclRepository{db: db}
}

func (repo *aclRepository) AssignCourse(_ context.Context, instructorID, courseID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.instructors[instructorID]; !ok {
		return enroll.ErrNotFound
	}
	if _, ok := repo.db.courses[courseID]; !ok {
		return enroll.ErrNotFound
	}
	repo.db.acl[pair{instructorID, courseID}] = true
	return nil
}

func (repo *aclRepository) UnassignCourse(_ context.Context, instructorID, courseID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.acl, pair{instructorID, courseID})
	return nil
}

func (repo *aclRepository) HasCourse(_ context.Context, instructorID, courseID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	return repo.db.acl[pair{instructorID, courseID}], nil
}

func (repo *aclRepository) QueryAssignments(_ context.Context) ([]enroll.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	asgs := make([]enroll.Assignment, 0, len(repo.db.acl))
	for key := range repo.db.acl {
		asgs = append(asgs, enroll.Assignment{InstructorID: key.a, CourseID: key.b})
	}
	sort.Slice(asgs, func(i, j int) bool {
		if asgs[i].InstructorID != asgs[j].InstructorID {
			return asgs[i].InstructorID < asgs[j].InstructorID
		}
		return asgs[i].CourseID < asgs[j].CourseID
	})
	return asgs, nil
}

func (repo *aclRepository) QueryInstructorCourseIDs(_ context.Context, instructorID int) ([]int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]int, 0)
	for key := range repo.db.acl {
		if key.a == instructorID {
			ids = append(ids, key.b)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
