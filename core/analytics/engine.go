package analytics

import (
	"context"
	"math"
	"sort"

	"github.com/volatiletech/null/v8"
)

type (
	// Repository provides the raw dimension and fact rows; all filtering and
	// aggregation happens in the engine, which keeps the pipeline side-effect
	// free and testable without a live store.
	Repository interface {
		QueryEnrollmentFacts(ctx context.Context) ([]Fact, error)
		QueryCourseDims(ctx context.Context) ([]CourseDim, error)
		QueryStudentDims(ctx context.Context) ([]StudentDim, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Report computes the multi-dimensional enrollment report. An empty store
// yields zeroed structures, never an error.
func (svc *Service) Report(ctx context.Context, f Filter) (Report, error) {
	if f.View == "" {
		f.View = ViewCourse
	}

	courses, err := svc.repo.QueryCourseDims(ctx)
	if err != nil {
		return Report{}, err
	}
	students, err := svc.repo.QueryStudentDims(ctx)
	if err != nil {
		return Report{}, err
	}
	allFacts, err := svc.repo.QueryEnrollmentFacts(ctx)
	if err != nil {
		return Report{}, err
	}
	facts := filterFacts(allFacts, f)

	rep := Report{
		EnrollmentStats:         courseStats(courses, facts, f),
		PerformanceDistribution: gradeDistribution(facts),
		StudentStats:            []StudentStats{},
		Summary:                 summarize(courses, students, allFacts),
		Filters:                 filterOptions(courses),
	}
	if f.View == ViewStudent {
		rep.StudentStats = studentStats(students, facts, f)
	}
	return rep, nil
}

// Matrix computes the student x course cross-tab: every student, with a sparse
// course->cell mapping covering all their enrollments, approved or not.
func (svc *Service) Matrix(ctx context.Context) (Matrix, error) {
	courses, err := svc.repo.QueryCourseDims(ctx)
	if err != nil {
		return Matrix{}, err
	}
	students, err := svc.repo.QueryStudentDims(ctx)
	if err != nil {
		return Matrix{}, err
	}
	facts, err := svc.repo.QueryEnrollmentFacts(ctx)
	if err != nil {
		return Matrix{}, err
	}

	cells := make(map[int]map[int]MatrixCell, len(students))
	for _, fc := range facts {
		byCourse, ok := cells[fc.StudentID]
		if !ok {
			byCourse = make(map[int]MatrixCell)
			cells[fc.StudentID] = byCourse
		}
		byCourse[fc.CourseID] = MatrixCell{Evaluation: fc.Evaluation, EnrollDate: fc.EnrollDate}
	}

	m := Matrix{
		Courses:  make([]CourseRef, 0, len(courses)),
		Students: make([]MatrixStudent, 0, len(students)),
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	for _, c := range courses {
		m.Courses = append(m.Courses, CourseRef{ID: c.ID, Name: c.Name})
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	for _, s := range students {
		ms := MatrixStudent{
			StudentID:   s.ID,
			StudentName: s.Name,
			SkillLevel:  s.SkillLevel,
			Grades:      cells[s.ID],
		}
		if ms.Grades == nil {
			ms.Grades = map[int]MatrixCell{}
		}
		m.Students = append(m.Students, ms)
	}
	return m, nil
}

func filterFacts(facts []Fact, f Filter) []Fact {
	out := make([]Fact, 0, len(facts))
	for _, fc := range facts {
		if matches(fc, f) {
			out = append(out, fc)
		}
	}
	return out
}

func matches(fc Fact, f Filter) bool {
	if f.ProgramType != "" && fc.ProgramType != f.ProgramType {
		return false
	}
	if f.CourseID != 0 && fc.CourseID != f.CourseID {
		return false
	}
	if !f.StartDate.IsZero() && fc.EnrollDate.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && fc.EnrollDate.After(f.EndDate) {
		return false
	}
	return true
}

// courseStats aggregates per course, sorted by enrollment count descending.
// Courses without matching enrollments still appear with zeroed aggregates
// unless a date bound is active, in which case they drop out.
func courseStats(courses []CourseDim, facts []Fact, f Filter) []CourseStats {
	byCourse := make(map[int][]Fact, len(courses))
	for _, fc := range facts {
		byCourse[fc.CourseID] = append(byCourse[fc.CourseID], fc)
	}

	dateBound := !f.StartDate.IsZero() || !f.EndDate.IsZero()
	stats := make([]CourseStats, 0, len(courses))
	for _, c := range courses {
		if f.ProgramType != "" && c.ProgramType != f.ProgramType {
			continue
		}
		if f.CourseID != 0 && c.ID != f.CourseID {
			continue
		}
		cf := byCourse[c.ID]
		if dateBound && len(cf) == 0 {
			continue
		}
		st := CourseStats{
			CourseID:        c.ID,
			CourseName:      c.Name,
			ProgramType:     c.ProgramType,
			Duration:        c.Duration,
			EnrollmentCount: len(cf),
		}
		st.AvgEvaluation, st.MinEvaluation, st.MaxEvaluation = evaluationAggregates(cf)
		stats = append(stats, st)
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].EnrollmentCount > stats[j].EnrollmentCount })
	return stats
}

// studentStats aggregates per student, sorted by average grade descending with
// ungraded students last. Students without matching enrollments appear only
// when no filter predicates are active.
func studentStats(students []StudentDim, facts []Fact, f Filter) []StudentStats {
	byStudent := make(map[int][]Fact, len(students))
	for _, fc := range facts {
		byStudent[fc.StudentID] = append(byStudent[fc.StudentID], fc)
	}

	stats := make([]StudentStats, 0, len(students))
	for _, s := range students {
		sf := byStudent[s.ID]
		if f.hasPredicates() && len(sf) == 0 {
			continue
		}
		st := StudentStats{
			StudentID:       s.ID,
			StudentName:     s.Name,
			SkillLevel:      s.SkillLevel,
			City:            s.City,
			Country:         s.Country,
			CoursesEnrolled: len(sf),
		}
		st.AvgGrade, st.MinGrade, st.MaxGrade = evaluationAggregates(sf)
		stats = append(stats, st)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i].AvgGrade, stats[j].AvgGrade
		if a.Valid != b.Valid {
			return a.Valid // nulls last
		}
		return a.Float64 > b.Float64
	})
	return stats
}

// gradeDistribution buckets all non-null evaluations; empty buckets are omitted.
func gradeDistribution(facts []Fact) []GradeBucket {
	counts := make(map[string]int, 5)
	for _, fc := range facts {
		if fc.Evaluation.Valid {
			counts[gradeRange(fc.Evaluation.Int)]++
		}
	}
	buckets := make([]GradeBucket, 0, len(counts))
	for rng, n := range counts {
		buckets = append(buckets, GradeBucket{GradeRange: rng, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].GradeRange < buckets[j].GradeRange })
	return buckets
}

func gradeRange(score int) string {
	switch {
	case score >= 90:
		return "A (90-100)"
	case score >= 80:
		return "B (80-89)"
	case score >= 70:
		return "C (70-79)"
	case score >= 60:
		return "D (60-69)"
	default:
		return "F (<60)"
	}
}

// summarize computes the filter-independent global totals.
func summarize(courses []CourseDim, students []StudentDim, allFacts []Fact) Summary {
	sum := Summary{
		TotalCourses:     len(courses),
		TotalStudents:    len(students),
		TotalEnrollments: len(allFacts),
	}
	sum.AvgEvaluation, _, _ = evaluationAggregates(allFacts)
	return sum
}

func filterOptions(courses []CourseDim) FilterOptions {
	seen := make(map[string]bool)
	opts := FilterOptions{
		ProgramTypes: make([]string, 0),
		Courses:      make([]CourseRef, 0, len(courses)),
	}
	for _, c := range courses {
		if c.ProgramType != "" && !seen[c.ProgramType] {
			seen[c.ProgramType] = true
			opts.ProgramTypes = append(opts.ProgramTypes, c.ProgramType)
		}
	}
	sort.Strings(opts.ProgramTypes)

	sorted := make([]CourseDim, len(courses))
	copy(sorted, courses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, c := range sorted {
		opts.Courses = append(opts.Courses, CourseRef{ID: c.ID, Name: c.Name})
	}
	return opts
}

// evaluationAggregates returns avg (rounded to 2 decimals), min and max over
// the non-null evaluations of the given facts; all null when none are graded.
func evaluationAggregates(facts []Fact) (avg null.Float64, min, max null.Int) {
	var sum, n int
	for _, fc := range facts {
		if !fc.Evaluation.Valid {
			continue
		}
		score := fc.Evaluation.Int
		if n == 0 || score < min.Int {
			min = null.IntFrom(score)
		}
		if n == 0 || score > max.Int {
			max = null.IntFrom(score)
		}
		sum += score
		n++
	}
	if n > 0 {
		avg = null.Float64From(math.Round(float64(sum)/float64(n)*100) / 100)
	}
	return avg, min, max
}
