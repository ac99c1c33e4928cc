package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

type dbCourse struct {
	ID           int         `db:"course_id"`
	Name         string      `db:"course_name"`
	ProgramType  null.String `db:"program_type"`
	Duration     null.String `db:"duration"`
	UniversityID null.Int    `db:"university_id"`
	Notes        null.String `db:"notes"`
	Video        null.String `db:"video"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (c dbCourse) toCourse() catalog.Course {
	return catalog.Course{
		ID:           c.ID,
		Name:         c.Name,
		ProgramType:  catalog.ProgramType(c.ProgramType.String),
		Duration:     c.Duration.String,
		UniversityID: c.UniversityID,
		Notes:        c.Notes.String,
		Video:        c.Video.String,
		CreatedAt:    c.CreatedAt,
	}
}

type dbStudent struct {
	ID         int         `db:"student_id"`
	UserID     null.Int    `db:"user_id"`
	Name       string      `db:"name"`
	DOB        null.Time   `db:"dob"`
	SkillLevel null.String `db:"skill_level"`
	City       null.String `db:"city"`
	State      null.String `db:"state"`
	Country    null.String `db:"country"`
}

func (s dbStudent) toStudent() catalog.Student {
	return catalog.Student{
		ID:         s.ID,
		UserID:     s.UserID.Int,
		Name:       s.Name,
		DOB:        s.DOB,
		SkillLevel: s.SkillLevel.String,
		City:       s.City.String,
		State:      s.State.String,
		Country:    s.Country.String,
	}
}

type dbInstructor struct {
	ID           int         `db:"instructor_id"`
	UserID       null.Int    `db:"user_id"`
	Name         string      `db:"name"`
	Contacts     null.String `db:"contacts"`
	UniversityID null.Int    `db:"university_id"`
}

func (i dbInstructor) toInstructor() catalog.Instructor {
	return catalog.Instructor{
		ID:           i.ID,
		UserID:       i.UserID.Int,
		Name:         i.Name,
		Contacts:     i.Contacts.String,
		UniversityID: i.UniversityID,
	}
}

// courses

func (repo catalogRepository) CreateCourse(ctx context.Context, nc catalog.NewCourse) (catalog.Course, error) {
	var c dbCourse
	err := repo.db.GetContext(ctx, &c, `
		INSERT INTO course (course_name, program_type, duration, university_id, notes, video)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING course_id, course_name, program_type, duration, university_id, notes, video, created_at`,
		nc.Name, nc.ProgramType, null.NewString(nc.Duration, nc.Duration != ""), nc.UniversityID,
		null.NewString(nc.Notes, nc.Notes != ""), null.NewString(nc.Video, nc.Video != ""))
	if err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			return catalog.Course{}, catalog.ErrNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return c.toCourse(), nil
}

func (repo catalogRepository) QueryAllCourses(ctx context.Context) ([]catalog.Course, error) {
	var rows []dbCourse
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT course_id, course_name, program_type, duration, university_id, notes, video, created_at
		FROM course ORDER BY course_name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]catalog.Course, 0, len(rows))
	for _, c := range rows {
		courses = append(courses, c.toCourse())
	}
	return courses, nil
}

func (repo catalogRepository) GetCourseByID(ctx context.Context, id int) (catalog.Course, error) {
	var c dbCourse
	err := repo.db.GetContext(ctx, &c, `
		SELECT course_id, course_name, program_type, duration, university_id, notes, video, created_at
		FROM course WHERE course_id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "getting course")
	}
	return c.toCourse(), nil
}

func (repo catalogRepository) UpdateCourse(ctx context.Context, id int, uc catalog.UpdateCourse) (catalog.Course, error) {
	var c dbCourse
	err := repo.db.GetContext(ctx, &c, `
		UPDATE course
		SET course_name = $1, program_type = $2, duration = $3, university_id = $4, notes = $5, video = $6
		WHERE course_id = $7
		RETURNING course_id, course_name, program_type, duration, university_id, notes, video, created_at`,
		uc.Name, uc.ProgramType, null.NewString(uc.Duration, uc.Duration != ""), uc.UniversityID,
		null.NewString(uc.Notes, uc.Notes != ""), null.NewString(uc.Video, uc.Video != ""), id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	return c.toCourse(), nil
}

func (repo catalogRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE course_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}

// universities

func (repo catalogRepository) CreateUniversity(ctx context.Context, nu catalog.NewUniversity) (catalog.University, error) {
	var u catalog.University
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO university (name, location) VALUES ($1, $2) RETURNING university_id, created_at`,
		nu.Name, null.NewString(nu.Location, nu.Location != "")).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return catalog.University{}, errors.Wrap(err, "inserting university")
	}
	u.Name = nu.Name
	u.Location = nu.Location
	return u, nil
}

func (repo catalogRepository) QueryAllUniversities(ctx context.Context) ([]catalog.University, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT university_id, name, COALESCE(location, ''), created_at FROM university ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying universities")
	}
	defer func() { _ = rows.Close() }()

	unis := make([]catalog.University, 0)
	for rows.Next() {
		var u catalog.University
		if err := rows.Scan(&u.ID, &u.Name, &u.Location, &u.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning university")
		}
		unis = append(unis, u)
	}
	return unis, rows.Err()
}

func (repo catalogRepository) DeleteUniversity(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM university WHERE university_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting university")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// textbooks

func (repo catalogRepository) QueryAllTextbooks(ctx context.Context) ([]catalog.Textbook, error) {
	return repo.queryTextbooks(ctx, `
		SELECT book_id, name, COALESCE(author, ''), COALESCE(publication, '') FROM textbook ORDER BY name`)
}

func (repo catalogRepository) QueryCourseTextbooks(ctx context.Context, courseID int) ([]catalog.Textbook, error) {
	return repo.queryTextbooks(ctx, `
		SELECT t.book_id, t.name, COALESCE(t.author, ''), COALESCE(t.publication, '')
		FROM textbook t
		JOIN course_textbook ct ON ct.book_id = t.book_id
		WHERE ct.course_id = $1
		ORDER BY t.name`, courseID)
}

func (repo catalogRepository) queryTextbooks(ctx context.Context, query string, args ...interface{}) ([]catalog.Textbook, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying textbooks")
	}
	defer func() { _ = rows.Close() }()

	books := make([]catalog.Textbook, 0)
	for rows.Next() {
		var b catalog.Textbook
		if err := rows.Scan(&b.ID, &b.Name, &b.Author, &b.Publication); err != nil {
			return nil, errors.Wrap(err, "scanning textbook")
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// LinkCourseTextbook finds or creates the book, then links it to the course;
// both steps run in one transaction so a partial failure leaves no orphan link.
func (repo catalogRepository) LinkCourseTextbook(ctx context.Context, courseID int, nt catalog.NewTextbook) (catalog.Textbook, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return catalog.Textbook{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	book := catalog.Textbook{Name: nt.Name, Author: nt.Author, Publication: nt.Publication}
	err = tx.QueryRowContext(ctx,
		`SELECT book_id FROM textbook WHERE name = $1 AND COALESCE(author, '') = $2`,
		nt.Name, nt.Author).Scan(&book.ID)
	if errors.Cause(err) == sql.ErrNoRows {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO textbook (name, author, publication) VALUES ($1, $2, $3) RETURNING book_id`,
			nt.Name, null.NewString(nt.Author, nt.Author != ""), null.NewString(nt.Publication, nt.Publication != "")).Scan(&book.ID)
	}
	if err != nil {
		return catalog.Textbook{}, errors.Wrap(err, "finding or creating textbook")
	}

	if err = repo.link(ctx, tx,
		`INSERT INTO course_textbook (course_id, book_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		courseID, book.ID); err != nil {
		return catalog.Textbook{}, errors.Wrap(err, "linking textbook to course")
	}
	if err = tx.Commit(); err != nil {
		return catalog.Textbook{}, errors.Wrap(err, "committing transaction")
	}
	return book, nil
}

func (repo catalogRepository) UnlinkCourseTextbook(ctx context.Context, courseID, bookID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM course_textbook WHERE course_id = $1 AND book_id = $2`, courseID, bookID)
	if err != nil {
		return errors.Wrap(err, "unlinking textbook")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// topics

func (repo catalogRepository) QueryCourseTopics(ctx context.Context, courseID int) ([]catalog.Topic, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT t.topic_id, t.topic_name
		FROM course_topic t
		JOIN course_topic_link l ON l.topic_id = t.topic_id
		WHERE l.course_id = $1
		ORDER BY t.topic_name`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course topics")
	}
	defer func() { _ = rows.Close() }()

	topics := make([]catalog.Topic, 0)
	for rows.Next() {
		var t catalog.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, errors.Wrap(err, "scanning topic")
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// LinkCourseTopic finds or creates the topic, then links it to the course,
// in one transaction.
func (repo catalogRepository) LinkCourseTopic(ctx context.Context, courseID int, nt catalog.NewTopic) (catalog.Topic, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return catalog.Topic{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	topic := catalog.Topic{Name: nt.Name}
	err = tx.QueryRowContext(ctx, `SELECT topic_id FROM course_topic WHERE topic_name = $1`, nt.Name).Scan(&topic.ID)
	if errors.Cause(err) == sql.ErrNoRows {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO course_topic (topic_name) VALUES ($1) RETURNING topic_id`, nt.Name).Scan(&topic.ID)
	}
	if err != nil {
		return catalog.Topic{}, errors.Wrap(err, "finding or creating topic")
	}

	if err = repo.link(ctx, tx,
		`INSERT INTO course_topic_link (course_id, topic_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		courseID, topic.ID); err != nil {
		return catalog.Topic{}, errors.Wrap(err, "linking topic to course")
	}
	if err = tx.Commit(); err != nil {
		return catalog.Topic{}, errors.Wrap(err, "committing transaction")
	}
	return topic, nil
}

func (repo catalogRepository) UnlinkCourseTopic(ctx context.Context, courseID, topicID int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM course_topic_link WHERE course_id = $1 AND topic_id = $2`, courseID, topicID)
	if err != nil {
		return errors.Wrap(err, "unlinking topic")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (repo catalogRepository) link(ctx context.Context, ex core.DBExecutor, query string, args ...interface{}) error {
	_, err := ex.ExecContext(ctx, query, args...)
	if pqErrorCode(err) == pqForeignKeyViolation {
		return catalog.ErrCourseNotFound
	}
	return err
}

// people

func (repo catalogRepository) QueryAllStudents(ctx context.Context) ([]catalog.Student, error) {
	var rows []dbStudent
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT student_id, user_id, name, dob, skill_level, city, state, country FROM student ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]catalog.Student, 0, len(rows))
	for _, s := range rows {
		students = append(students, s.toStudent())
	}
	return students, nil
}

func (repo catalogRepository) GetStudentByUserID(ctx context.Context, userID int) (catalog.Student, error) {
	var s dbStudent
	err := repo.db.GetContext(ctx, &s, `
		SELECT student_id, user_id, name, dob, skill_level, city, state, country FROM student WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return catalog.Student{}, catalog.ErrStudentNotFound
		}
		return catalog.Student{}, errors.Wrap(err, "getting student")
	}
	return s.toStudent(), nil
}

// UpsertStudentProfile creates the student row on first save; user_id has no
// unique constraint, so the check-then-write pair runs in a transaction.
func (repo catalogRepository) UpsertStudentProfile(ctx context.Context, userID int, sp catalog.StudentProfile) (catalog.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return catalog.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRowContext(ctx, `SELECT student_id FROM student WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id)
	switch {
	case errors.Cause(err) == sql.ErrNoRows:
		err = tx.QueryRowContext(ctx, `
			INSERT INTO student (user_id, name, dob, skill_level, city, state, country)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING student_id`,
			userID, sp.Name, sp.DOB, null.NewString(sp.SkillLevel, sp.SkillLevel != ""),
			null.NewString(sp.City, sp.City != ""), null.NewString(sp.State, sp.State != ""),
			null.NewString(sp.Country, sp.Country != "")).Scan(&id)
		if err != nil {
			return catalog.Student{}, errors.Wrap(err, "inserting student profile")
		}
	case err != nil:
		return catalog.Student{}, errors.Wrap(err, "checking student profile")
	default:
		if _, err = tx.ExecContext(ctx, `
			UPDATE student SET name = $1, dob = $2, skill_level = $3, city = $4, state = $5, country = $6
			WHERE student_id = $7`,
			sp.Name, sp.DOB, null.NewString(sp.SkillLevel, sp.SkillLevel != ""),
			null.NewString(sp.City, sp.City != ""), null.NewString(sp.State, sp.State != ""),
			null.NewString(sp.Country, sp.Country != ""), id); err != nil {
			return catalog.Student{}, errors.Wrap(err, "updating student profile")
		}
	}
	if err = tx.Commit(); err != nil {
		return catalog.Student{}, errors.Wrap(err, "committing transaction")
	}

	return catalog.Student{
		ID: id, UserID: userID, Name: sp.Name, DOB: sp.DOB,
		SkillLevel: sp.SkillLevel, City: sp.City, State: sp.State, Country: sp.Country,
	}, nil
}

func (repo catalogRepository) GetInstructorByUserID(ctx context.Context, userID int) (catalog.Instructor, error) {
	var i dbInstructor
	err := repo.db.GetContext(ctx, &i, `
		SELECT instructor_id, user_id, name, contacts, university_id FROM instructor WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return catalog.Instructor{}, catalog.ErrInstructorNotFound
		}
		return catalog.Instructor{}, errors.Wrap(err, "getting instructor")
	}
	return i.toInstructor(), nil
}

func (repo catalogRepository) UpsertInstructorProfile(ctx context.Context, userID int, ip catalog.InstructorProfile) (catalog.Instructor, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return catalog.Instructor{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRowContext(ctx, `SELECT instructor_id FROM instructor WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id)
	switch {
	case errors.Cause(err) == sql.ErrNoRows:
		err = tx.QueryRowContext(ctx, `
			INSERT INTO instructor (user_id, name, contacts, university_id)
			VALUES ($1, $2, $3, $4) RETURNING instructor_id`,
			userID, ip.Name, null.NewString(ip.Contacts, ip.Contacts != ""), ip.UniversityID).Scan(&id)
		if err != nil {
			return catalog.Instructor{}, errors.Wrap(err, "inserting instructor profile")
		}
	case err != nil:
		return catalog.Instructor{}, errors.Wrap(err, "checking instructor profile")
	default:
		if _, err = tx.ExecContext(ctx, `
			UPDATE instructor SET name = $1, contacts = $2, university_id = $3 WHERE instructor_id = $4`,
			ip.Name, null.NewString(ip.Contacts, ip.Contacts != ""), ip.UniversityID, id); err != nil {
			return catalog.Instructor{}, errors.Wrap(err, "updating instructor profile")
		}
	}
	if err = tx.Commit(); err != nil {
		return catalog.Instructor{}, errors.Wrap(err, "committing transaction")
	}

	return catalog.Instructor{
		ID: id, UserID: userID, Name: ip.Name, Contacts: ip.Contacts, UniversityID: ip.UniversityID,
	}, nil
}
