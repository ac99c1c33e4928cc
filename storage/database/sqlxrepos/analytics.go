package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/analytics"
)

type analyticsRepository struct {
	db *sqlx.DB
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(db *sqlx.DB) *analyticsRepository {
	return &analyticsRepository{db: db}
}

func (repo analyticsRepository) QueryEnrollmentFacts(ctx context.Context) ([]analytics.Fact, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT
			c.course_id, c.course_name, COALESCE(c.program_type, ''), COALESCE(c.duration, ''),
			s.student_id, s.name, COALESCE(s.skill_level, ''), COALESCE(s.city, ''), COALESCE(s.country, ''),
			e.evaluation, e.enroll_date
		FROM enroll e
		JOIN course c ON e.course_id = c.course_id
		JOIN student s ON e.student_id = s.student_id
		ORDER BY s.student_id, c.course_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollment facts")
	}
	defer func() { _ = rows.Close() }()

	facts := make([]analytics.Fact, 0)
	for rows.Next() {
		var f analytics.Fact
		if err := rows.Scan(
			&f.CourseID, &f.CourseName, &f.ProgramType, &f.Duration,
			&f.StudentID, &f.StudentName, &f.SkillLevel, &f.City, &f.Country,
			&f.Evaluation, &f.EnrollDate,
		); err != nil {
			return nil, errors.Wrap(err, "scanning enrollment fact")
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (repo analyticsRepository) QueryCourseDims(ctx context.Context) ([]analytics.CourseDim, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT course_id, course_name, COALESCE(program_type, ''), COALESCE(duration, '')
		FROM course ORDER BY course_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying course dims")
	}
	defer func() { _ = rows.Close() }()

	dims := make([]analytics.CourseDim, 0)
	for rows.Next() {
		var d analytics.CourseDim
		if err := rows.Scan(&d.ID, &d.Name, &d.ProgramType, &d.Duration); err != nil {
			return nil, errors.Wrap(err, "scanning course dim")
		}
		dims = append(dims, d)
	}
	return dims, rows.Err()
}

func (repo analyticsRepository) QueryStudentDims(ctx context.Context) ([]analytics.StudentDim, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT student_id, name, COALESCE(skill_level, ''), COALESCE(city, ''), COALESCE(country, '')
		FROM student ORDER BY student_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying student dims")
	}
	defer func() { _ = rows.Close() }()

	dims := make([]analytics.StudentDim, 0)
	for rows.Next() {
		var d analytics.StudentDim
		if err := rows.Scan(&d.ID, &d.Name, &d.SkillLevel, &d.City, &d.Country); err != nil {
			return nil, errors.Wrap(err, "scanning student dim")
		}
		dims = append(dims, d)
	}
	return dims, rows.Err()
}
