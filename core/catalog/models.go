package catalog

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/quadbase/ocms/core"
)

// ProgramType is the closed set of course program categories.
type ProgramType string

const (
	ProgramCertificate  ProgramType = "Certificate"
	ProgramProfessional ProgramType = "Professional"
	ProgramDegree       ProgramType = "Degree"
)

func (p ProgramType) Valid() bool {
	switch p {
	case ProgramCertificate, ProgramProfessional, ProgramDegree:
		return true
	}
	return false
}

func (p ProgramType) String() string { return string(p) }

type University struct {
	ID        int       `json:"university_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Course struct {
	ID           int         `json:"course_id"`
	Name         string      `json:"course_name"`
	ProgramType  ProgramType `json:"program_type"`
	Duration     string      `json:"duration,omitempty"`
	UniversityID null.Int    `json:"university_id,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	Video        string      `json:"video,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Textbook struct {
	ID          int    `json:"book_id"`
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Publication string `json:"publication,omitempty"`
}

type Topic struct {
	ID   int    `json:"topic_id"`
	Name string `json:"topic_name"`
}

type Student struct {
	ID         int       `json:"student_id"`
	UserID     int       `json:"user_id"`
	Name       string    `json:"name"`
	DOB        null.Time `json:"dob,omitempty"`
	SkillLevel string    `json:"skill_level,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Country    string    `json:"country,omitempty"`
}

type Instructor struct {
	ID           int      `json:"instructor_id"`
	UserID       int      `json:"user_id"`
	Name         string   `json:"name"`
	Contacts     string   `json:"contacts,omitempty"`
	UniversityID null.Int `json:"university_id,omitempty"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name         string      `json:"course_name" validate:"required"`
	ProgramType  ProgramType `json:"program_type" validate:"required,program_type"`
	Duration     string      `json:"duration"`
	UniversityID null.Int    `json:"university_id"`
	Notes        string      `json:"notes"`
	Video        string      `json:"video"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Duration = core.CleanString(nc.Duration)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Zero-valued fields keep their stored values.
type UpdateCourse struct {
	Name         string      `json:"course_name"`
	ProgramType  ProgramType `json:"program_type" validate:"omitempty,program_type"`
	Duration     string      `json:"duration"`
	UniversityID null.Int    `json:"university_id"`
	Notes        string      `json:"notes"`
	Video        string      `json:"video"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.ProgramType == "" {
		uc.ProgramType = orig.ProgramType
	}
	if uc.Duration == "" {
		uc.Duration = orig.Duration
	}
	if !uc.UniversityID.Valid {
		uc.UniversityID = orig.UniversityID
	}
	if uc.Notes == "" {
		uc.Notes = orig.Notes
	}
	if uc.Video == "" {
		uc.Video = orig.Video
	}
	return core.Validate.Struct(uc)
}

type NewUniversity struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

func (nu *NewUniversity) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Location = core.CleanString(nu.Location)
	return core.Validate.Struct(nu)
}

// NewTextbook links a textbook to a course, creating the book if it is unknown.
type NewTextbook struct {
	Name        string `json:"name" validate:"required"`
	Author      string `json:"author"`
	Publication string `json:"publication"`
}

func (nt *NewTextbook) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Author = core.CleanString(nt.Author)
	nt.Publication = core.CleanString(nt.Publication)
	return core.Validate.Struct(nt)
}

// NewTopic links a topic to a course, creating the topic if it is unknown.
type NewTopic struct {
	Name string `json:"topic_name" validate:"required"`
}

func (nt *NewTopic) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

// StudentProfile is the payload of a student profile save; the row is created
// on first save (a fresh student account has no Student record yet).
type StudentProfile struct {
	Name       string    `json:"name" validate:"required"`
	DOB        null.Time `json:"dob"`
	SkillLevel string    `json:"skill_level"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Country    string    `json:"country"`
}

func (sp *StudentProfile) Validate() error {
	sp.Name = core.CleanString(sp.Name)
	return core.Validate.Struct(sp)
}

type InstructorProfile struct {
	Name         string   `json:"name" validate:"required"`
	Contacts     string   `json:"contacts"`
	UniversityID null.Int `json:"university_id"`
}

func (ip *InstructorProfile) Validate() error {
	ip.Name = core.CleanString(ip.Name)
	ip.Contacts = core.CleanString(ip.Contacts)
	return core.Validate.Struct(ip)
}
