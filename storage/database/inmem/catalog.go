package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/quadbase/ocms/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// courses

func (repo *catalogRepository) CreateCourse(_ context.Context, nc catalog.NewCourse) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c := catalog.Course{
		ID:           repo.db.nextID(),
		Name:         nc.Name,
		ProgramType:  nc.ProgramType,
		Duration:     nc.Duration,
		UniversityID: nc.UniversityID,
		Notes:        nc.Notes,
		Video:        nc.Video,
		CreatedAt:    time.Now().UTC(),
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) QueryAllCourses(_ context.Context) ([]catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *catalogRepository) GetCourseByID(_ context.Context, id int) (catalog.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) UpdateCourse(_ context.Context, id int, uc catalog.UpdateCourse) (catalog.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return catalog.Course{}, catalog.ErrCourseNotFound
	}
	c.Name = uc.Name
	c.ProgramType = uc.ProgramType
	c.Duration = uc.Duration
	c.UniversityID = uc.UniversityID
	c.Notes = uc.Notes
	c.Video = uc.Video
	return *c, nil
}

func (repo *catalogRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return catalog.ErrCourseNotFound
	}
	delete(repo.db.courses, id)
	for key := range repo.db.enrollments {
		if key.a == id {
			delete(repo.db.enrollments, key)
		}
	}
	for key := range repo.db.acl {
		if key.b == id {
			delete(repo.db.acl, key)
		}
	}
	for key := range repo.db.courseTextbooks {
		if key.a == id {
			delete(repo.db.courseTextbooks, key)
		}
	}
	for key := range repo.db.courseTopics {
		if key.a == id {
			delete(repo.db.courseTopics, key)
		}
	}
	return nil
}

// universities

func (repo *catalogRepository) CreateUniversity(_ context.Context, nu catalog.NewUniversity) (catalog.University, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	u := catalog.University{
		ID:        repo.db.nextID(),
		Name:      nu.Name,
		Location:  nu.Location,
		CreatedAt: time.Now().UTC(),
	}
	repo.db.universities[u.ID] = &u
	return u, nil
}

func (repo *catalogRepository) QueryAllUniversities(_ context.Context) ([]catalog.University, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	unis := make([]catalog.University, 0, len(repo.db.universities))
	for _, u := range repo.db.universities {
		unis = append(unis, *u)
	}
	sort.Slice(unis, func(i, j int) bool { return unis[i].Name < unis[j].Name })
	return unis, nil
}

func (repo *catalogRepository) DeleteUniversity(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.universities[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(repo.db.universities, id)
	return nil
}

// textbooks

func (repo *catalogRepository) QueryAllTextbooks(_ context.Context) ([]catalog.Textbook, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	books := make([]catalog.Textbook, 0, len(repo.db.textbooks))
	for _, b := range repo.db.textbooks {
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Name < books[j].Name })
	return books, nil
}

func (repo *catalogRepository) QueryCourseTextbooks(_ context.Context, courseID int) ([]catalog.Textbook, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	books := make([]catalog.Textbook, 0)
	for key := range repo.db.courseTextbooks {
		if key.a == courseID {
			if b, ok := repo.db.textbooks[key.b]; ok {
				books = append(books, *b)
			}
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Name < books[j].Name })
	return books, nil
}

func (repo *catalogRepository) LinkCourseTextbook(_ context.Context, courseID int, nt catalog.NewTextbook) (catalog.Textbook, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return catalog.Textbook{}, catalog.ErrCourseNotFound
	}

	var book *catalog.Textbook
	for _, b := range repo.db.textbooks {
		if b.Name == nt.Name && b.Author == nt.Author {
			book = b
			break
		}
	}
	if book == nil {
		book = &catalog.Textbook{
			ID:          repo.db.nextID(),
			Name:        nt.Name,
			Author:      nt.Author,
			Publication: nt.Publication,
		}
		repo.db.textbooks[book.ID] = book
	}
	repo.db.courseTextbooks[pair{courseID, book.ID}] = true
	return *book, nil
}

func (repo *catalogRepository) UnlinkCourseTextbook(_ context.Context, courseID, bookID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pair{courseID, bookID}
	if !repo.db.courseTextbooks[key] {
		return catalog.ErrNotFound
	}
	delete(repo.db.courseTextbooks, key)
	return nil
}

// topics

func (repo *catalogRepository) QueryCourseTopics(_ context.Context, courseID int) ([]catalog.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	topics := make([]catalog.Topic, 0)
	for key := range repo.db.courseTopics {
		if key.a == courseID {
			if t, ok := repo.db.topics[key.b]; ok {
				topics = append(topics, *t)
			}
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (repo *catalogRepository) LinkCourseTopic(_ context.Context, courseID int, nt catalog.NewTopic) (catalog.Topic, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return catalog.Topic{}, catalog.ErrCourseNotFound
	}

	var topic *catalog.Topic
	for _, t := range repo.db.topics {
		if t.Name == nt.Name {
			topic = t
			break
		}
	}
	if topic == nil {
		topic = &catalog.Topic{ID: repo.db.nextID(), Name: nt.Name}
		repo.db.topics[topic.ID] = topic
	}
	repo.db.courseTopics[pair{courseID, topic.ID}] = true
	return *topic, nil
}

func (repo *catalogRepository) UnlinkCourseTopic(_ context.Context, courseID, topicID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pair{courseID, topicID}
	if !repo.db.courseTopics[key] {
		return catalog.ErrNotFound
	}
	delete(repo.db.courseTopics, key)
	return nil
}

// people

func (repo *catalogRepository) QueryAllStudents(_ context.Context) ([]catalog.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]catalog.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *catalogRepository) GetStudentByUserID(_ context.Context, userID int) (catalog.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.students {
		if s.UserID == userID {
			return *s, nil
		}
	}
	return catalog.Student{}, catalog.ErrStudentNotFound
}

func (repo *catalogRepository) UpsertStudentProfile(_ context.Context, userID int, sp catalog.StudentProfile) (catalog.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.students {
		if s.UserID == userID {
			s.Name = sp.Name
			s.DOB = sp.DOB
			s.SkillLevel = sp.SkillLevel
			s.City = sp.City
			s.State = sp.State
			s.Country = sp.Country
			return *s, nil
		}
	}
	s := catalog.Student{
		ID:         repo.db.nextID(),
		UserID:     userID,
		Name:       sp.Name,
		DOB:        sp.DOB,
		SkillLevel: sp.SkillLevel,
		City:       sp.City,
		State:      sp.State,
		Country:    sp.Country,
	}
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *catalogRepository) GetInstructorByUserID(_ context.Context, userID int) (catalog.Instructor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, inst := range repo.db.instructors {
		if inst.UserID == userID {
			return *inst, nil
		}
	}
	return catalog.Instructor{}, catalog.ErrInstructorNotFound
}

func (repo *catalogRepository) UpsertInstructorProfile(_ context.Context, userID int, ip catalog.InstructorProfile) (catalog.Instructor, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, inst := range repo.db.instructors {
		if inst.UserID == userID {
			inst.Name = ip.Name
			inst.Contacts = ip.Contacts
			inst.UniversityID = ip.UniversityID
			return *inst, nil
		}
	}
	inst := catalog.Instructor{
		ID:           repo.db.nextID(),
		UserID:       userID,
		Name:         ip.Name,
		Contacts:     ip.Contacts,
		UniversityID: ip.UniversityID,
	}
	repo.db.instructors[inst.ID] = &inst
	return inst, nil
}
