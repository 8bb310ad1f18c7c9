// Package inmem backs the mock API server with mutex-guarded in-memory tables.
package inmem

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/core/reference"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New(`duplicate key value violates unique constraint "students_email_key"`)
)

type (
	Account struct {
		ID           string
		Username     string
		Email        string
		PasswordHash []byte
	}

	DB struct {
		mu sync.RWMutex

		accounts      map[string]*Account // by username
		students      []reference.Student
		academicYears []reference.AcademicYear
		grades        []reference.Grade
		sections      []reference.Section
		enrollments   []enroll.Enrollment
	}
)

func Open() *DB {
	return &DB{accounts: make(map[string]*Account)}
}

// Accounts

func (db *DB) CreateAccount(acc Account) Account {
	db.mu.Lock()
	defer db.mu.Unlock()
	acc.ID = uuid.New().String()
	db.accounts[acc.Username] = &acc
	return acc
}

func (db *DB) GetAccount(username string) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if acc, ok := db.accounts[core.CleanString(username, true /* lower */)]; ok {
		return *acc, nil
	}
	return Account{}, ErrNotFound
}

// Students

func (db *DB) Students() []reference.Student {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]reference.Student{}, db.students...)
}

func (db *DB) SeedStudent(s reference.Student) reference.Student {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	db.students = append(db.students, s)
	return s
}

// CreateStudent enforces email uniqueness the way a SQL backend would report it.
func (db *DB) CreateStudent(ns enroll.NewStudent) (reference.Student, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	email := core.CleanString(ns.Email, true /* lower */)
	for _, s := range db.students {
		if strings.ToLower(s.Email) == email {
			return reference.Student{}, ErrEmailExists
		}
	}
	s := reference.Student{
		ID:        uuid.New().String(),
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Email:     email,
	}
	db.students = append(db.students, s)
	return s, nil
}

// Reference lists

func (db *DB) AcademicYears() []reference.AcademicYear {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]reference.AcademicYear{}, db.academicYears...)
}

func (db *DB) SeedAcademicYear(y reference.AcademicYear) reference.AcademicYear {
	db.mu.Lock()
	defer db.mu.Unlock()
	if y.ID == "" {
		y.ID = uuid.New().String()
	}
	db.academicYears = append(db.academicYears, y)
	return y
}

func (db *DB) Grades() []reference.Grade {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]reference.Grade{}, db.grades...)
}

func (db *DB) SeedGrade(g reference.Grade) reference.Grade {
	db.mu.Lock()
	defer db.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	db.grades = append(db.grades, g)
	return g
}

func (db *DB) Sections() []reference.Section {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]reference.Section{}, db.sections...)
}

func (db *DB) SeedSection(s reference.Section) reference.Section {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	db.sections = append(db.sections, s)
	return s
}

// Enrollments

func (db *DB) Enrollments() []enroll.Enrollment {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]enroll.Enrollment{}, db.enrollments...)
}

// CreateEnrollment denormalizes the reference names onto the stored record.
func (db *DB) CreateEnrollment(studentID, yearID, gradeID, sectionID, semester, date string) (enroll.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var student *reference.Student
	for i := range db.students {
		if db.students[i].ID == studentID {
			student = &db.students[i]
			break
		}
	}
	if student == nil {
		return enroll.Enrollment{}, ErrNotFound
	}

	e := enroll.Enrollment{
		ID:              uuid.New().String(),
		StudentID:       student.ID,
		StudentName:     student.FullName(),
		AdmissionNumber: student.AdmissionNumber,
		Semester:        semester,
		EnrollmentDate:  date,
		Status:          "enrolled",
		IsActive:        true,
	}
	for _, y := range db.academicYears {
		if y.ID == yearID {
			e.AcademicYear = y.Name
		}
	}
	for _, g := range db.grades {
		if g.ID == gradeID {
			e.Grade = g.Name
		}
	}
	for _, s := range db.sections {
		if s.ID == sectionID {
			e.Section = s.Name
		}
	}
	db.enrollments = append(db.enrollments, e)
	return e, nil
}
