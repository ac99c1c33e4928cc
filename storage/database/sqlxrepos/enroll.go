package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/enroll"
)

type enrollRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollRepository)(nil) // interface compliance check

func NewEnrollRepository(db *sqlx.DB) *enrollRepository {
	return &enrollRepository{db: db}
}

// CreateEnrollment inserts the Requested record. The (course_id, student_id)
// uniqueness constraint is what makes concurrent duplicate requests safe: the
// insert either wins or comes back as a unique violation, which is translated
// to enroll.ErrAlreadyEnrolled rather than leaking as an opaque failure.
func (repo enrollRepository) CreateEnrollment(ctx context.Context, courseID, studentID int, enrollDate time.Time) (enroll.Enrollment, error) {
	enr := enroll.Enrollment{
		CourseID:   courseID,
		StudentID:  studentID,
		EnrollDate: enrollDate,
		Approved:   false,
	}
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO enroll (course_id, student_id, enroll_date, approved)
		VALUES ($1, $2, $3, false)
		RETURNING enroll_id`,
		courseID, studentID, enrollDate).Scan(&enr.ID)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
		case pqForeignKeyViolation:
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollRepository) GetEnrollment(ctx context.Context, courseID, studentID int) (enroll.Enrollment, error) {
	var enr enroll.Enrollment
	err := repo.db.QueryRowContext(ctx, `
		SELECT enroll_id, course_id, student_id, enroll_date, approved, evaluation
		FROM enroll WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID).Scan(&enr.ID, &enr.CourseID, &enr.StudentID, &enr.EnrollDate, &enr.Approved, &enr.Evaluation)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo enrollRepository) QueryCourseEnrollments(ctx context.Context, courseID int) ([]enroll.CourseEnrollment, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT e.enroll_id, s.student_id, s.name, e.enroll_date, e.approved, e.evaluation
		FROM enroll e
		JOIN student s ON e.student_id = s.student_id
		WHERE e.course_id = $1
		ORDER BY s.name`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course enrollments")
	}
	defer func() { _ = rows.Close() }()

	enrs := make([]enroll.CourseEnrollment, 0)
	for rows.Next() {
		var ce enroll.CourseEnrollment
		if err := rows.Scan(&ce.EnrollID, &ce.StudentID, &ce.StudentName, &ce.EnrollDate, &ce.Approved, &ce.Evaluation); err != nil {
			return nil, errors.Wrap(err, "scanning course enrollment")
		}
		enrs = append(enrs, ce)
	}
	return enrs, rows.Err()
}

func (repo enrollRepository) QueryStudentCourses(ctx context.Context, studentID int, approvedOnly bool) ([]enroll.CourseRef, error) {
	query := `
		SELECT c.course_id, c.course_name
		FROM enroll e
		JOIN course c ON e.course_id = c.course_id
		WHERE e.student_id = $1`
	if approvedOnly {
		query += ` AND e.approved = true`
	}
	query += ` ORDER BY c.course_name`

	rows, err := repo.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	defer func() { _ = rows.Close() }()

	courses := make([]enroll.CourseRef, 0)
	for rows.Next() {
		var c enroll.CourseRef
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, errors.Wrap(err, "scanning student course")
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (repo enrollRepository) SetApproved(ctx context.Context, courseID, studentID int) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE enroll SET approved = true WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "approving enrollment")
	}
	return repo.trapMissingRow(res)
}

func (repo enrollRepository) SetEvaluation(ctx context.Context, courseID, studentID, score int) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE enroll SET evaluation = $1 WHERE course_id = $2 AND student_id = $3`, score, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "setting evaluation")
	}
	return repo.trapMissingRow(res)
}

func (repo enrollRepository) DeleteEnrollment(ctx context.Context, courseID, studentID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM enroll WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return repo.trapMissingRow(res)
}

func (repo enrollRepository) trapMissingRow(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return enroll.ErrNotFound
	}
	return nil
}

type aclRepository struct {
	db *sqlx.DB
}

var _ enroll.ACLRepository = (*aclRepository)(nil) // interface compliance check

func NewACLRepository(db *sqlx.DB) *aclRepository {
	return &aclRepository{db: db}
}

// AssignCourse is an idempotent upsert: re-assigning an existing membership
// is a no-op.
func (repo aclRepository) AssignCourse(ctx context.Context, instructorID, courseID int) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO instructor_course (instructor_id, course_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		instructorID, courseID)
	if err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			return enroll.ErrNotFound
		}
		return errors.Wrap(err, "assigning course")
	}
	return nil
}

func (repo aclRepository) UnassignCourse(ctx context.Context, instructorID, courseID int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM instructor_course WHERE instructor_id = $1 AND course_id = $2`, instructorID, courseID)
	return errors.Wrap(err, "unassigning course")
}

func (repo aclRepository) HasCourse(ctx context.Context, instructorID, courseID int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM instructor_course WHERE instructor_id = $1 AND course_id = $2)`,
		instructorID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "checking course ACL")
	}
	return exists, nil
}

func (repo aclRepository) QueryAssignments(ctx context.Context) ([]enroll.Assignment, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT instructor_id, course_id FROM instructor_course ORDER BY instructor_id, course_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	defer func() { _ = rows.Close() }()

	asgs := make([]enroll.Assignment, 0)
	for rows.Next() {
		var a enroll.Assignment
		if err := rows.Scan(&a.InstructorID, &a.CourseID); err != nil {
			return nil, errors.Wrap(err, "scanning assignment")
		}
		asgs = append(asgs, a)
	}
	return asgs, rows.Err()
}

func (repo aclRepository) QueryInstructorCourseIDs(ctx context.Context, instructorID int) ([]int, error) {
	var ids []int
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT course_id FROM instructor_course WHERE instructor_id = $1 ORDER BY course_id`, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructor courses")
	}
	return ids, nil
}
