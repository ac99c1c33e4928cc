// Package inmemdb provides in-memory repository implementations backed by
// plain maps, used by service and API tests in place of a live Postgres.
package inmemdb

import (
	"sync"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
)

// pair is a composite (a, b) key for join tables.
type pair struct{ a, b int }

type DB struct {
	mu  sync.RWMutex
	seq int

	users        map[int]*user.User
	universities map[int]*catalog.University
	courses      map[int]*catalog.Course
	textbooks    map[int]*catalog.Textbook
	topics       map[int]*catalog.Topic
	students     map[int]*catalog.Student
	instructors  map[int]*catalog.Instructor

	courseTextbooks map[pair]bool // (courseID, bookID)
	courseTopics    map[pair]bool // (courseID, topicID)
	acl             map[pair]bool // (instructorID, courseID)

	enrollments map[pair]*enroll.Enrollment // (courseID, studentID)
}

func New() *DB {
	return &DB{
		users:           make(map[int]*user.User),
		universities:    make(map[int]*catalog.University),
		courses:         make(map[int]*catalog.Course),
		textbooks:       make(map[int]*catalog.Textbook),
		topics:          make(map[int]*catalog.Topic),
		students:        make(map[int]*catalog.Student),
		instructors:     make(map[int]*catalog.Instructor),
		courseTextbooks: make(map[pair]bool),
		courseTopics:    make(map[pair]bool),
		acl:             make(map[pair]bool),
		enrollments:     make(map[pair]*enroll.Enrollment),
	}
}

// nextID must be called with db.mu held.
func (db *DB) nextID() int {
	db.seq++
	return db.seq
}
