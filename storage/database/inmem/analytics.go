package inmemdb

import (
	"context"
	"sort"

	"github.com/quadbase/ocms/core/analytics"
)

type analyticsRepository struct {
	db *DB
}

var _ analytics.Repository = (*analyticsRepository)(nil)

func NewAnalyticsRepository(db *DB) *analyticsRepository {
	return &analyticsRepository{db: db}
}

func (repo *analyticsRepository) QueryEnrollmentFacts(_ context.Context) ([]analytics.Fact, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	facts := make([]analytics.Fact, 0, len(repo.db.enrollments))
	for _, enr := range repo.db.enrollments {
		fact := analytics.Fact{
			CourseID:   enr.CourseID,
			StudentID:  enr.StudentID,
			Evaluation: enr.Evaluation,
			EnrollDate: enr.EnrollDate,
		}
		if c, ok := repo.db.courses[enr.CourseID]; ok {
			fact.CourseName = c.Name
			fact.ProgramType = string(c.ProgramType)
			fact.Duration = c.Duration
		}
		if s, ok := repo.db.students[enr.StudentID]; ok {
			fact.StudentName = s.Name
			fact.SkillLevel = s.SkillLevel
			fact.City = s.City
			fact.Country = s.Country
		}
		facts = append(facts, fact)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].CourseID != facts[j].CourseID {
			return facts[i].CourseID < facts[j].CourseID
		}
		return facts[i].StudentID < facts[j].StudentID
	})
	return facts, nil
}

func (repo *analyticsRepository) QueryCourseDims(_ context.Context) ([]analytics.CourseDim, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	dims := make([]analytics.CourseDim, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		dims = append(dims, analytics.CourseDim{
			ID:          c.ID,
			Name:        c.Name,
			ProgramType: string(c.ProgramType),
			Duration:    c.Duration,
		})
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].ID < dims[j].ID })
	return dims, nil
}

func (repo *analyticsRepository) QueryStudentDims(_ context.Context) ([]analytics.StudentDim, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	dims := make([]analytics.StudentDim, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		dims = append(dims, analytics.StudentDim{
			ID:         s.ID,
			Name:       s.Name,
			SkillLevel: s.SkillLevel,
			City:       s.City,
			Country:    s.Country,
		})
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].ID < dims[j].ID })
	return dims, nil
}
