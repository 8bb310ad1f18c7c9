package reference

import (
	"strings"
	"time"

	"github.com/trezcool/shule/core"
)

// Reference collections are read-only snapshots fetched from the backend.
// IDs are opaque stable identifiers; name fields are the only fuzzy-matchable surface.
type (
	Student struct {
		ID              string `json:"id"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email"`
		AdmissionNumber string `json:"admission_number"`
	}

	AcademicYear struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		IsCurrent bool      `json:"is_current"`
		StartDate time.Time `json:"start_date"`
	}

	Grade struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Level int    `json:"level"`
	}

	Section struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		GradeID string `json:"grade_id"`
	}

	// Collections groups one snapshot of every reference list an import needs.
	Collections struct {
		Students      []Student
		AcademicYears []AcademicYear
		Grades        []Grade
		Sections      []Section
	}
)

func (s Student) FullName() string {
	return core.CleanString(s.FirstName + " " + s.LastName)
}

type nameEntry struct {
	id        string
	ambiguous bool
}

// StudentIndex provides identity lookups over a student snapshot.
// The name index tracks ambiguity: two students normalizing to the same
// name key make that key resolve to "ambiguous" rather than an arbitrary pick.
type StudentIndex struct {
	byAdmission map[string]string
	byEmail     map[string]string
	byName      map[string]nameEntry
}

func NewStudentIndex(students []Student) *StudentIndex {
	ix := &StudentIndex{
		byAdmission: make(map[string]string, len(students)),
		byEmail:     make(map[string]string, len(students)),
		byName:      make(map[string]nameEntry, len(students)),
	}
	for _, s := range students {
		if no := strings.TrimSpace(s.AdmissionNumber); no != "" {
			ix.byAdmission[no] = s.ID
		}
		if email := core.NormalizeKey(s.Email); email != "" {
			ix.byEmail[email] = s.ID
		}
		if name := core.NormalizeKey(s.FullName()); name != "" {
			if entry, ok := ix.byName[name]; ok && entry.id != s.ID {
				ix.byName[name] = nameEntry{ambiguous: true}
			} else if !ok {
				ix.byName[name] = nameEntry{id: s.ID}
			}
		}
	}
	return ix
}

func (ix *StudentIndex) ByAdmission(no string) (string, bool) {
	id, ok := ix.byAdmission[strings.TrimSpace(no)]
	return id, ok
}

func (ix *StudentIndex) ByEmail(email string) (string, bool) {
	id, ok := ix.byEmail[core.NormalizeKey(email)]
	return id, ok
}

// ByName resolves a normalized full name. ambiguous is true when two or more
// students share the name key; id is then empty.
func (ix *StudentIndex) ByName(name string) (id string, ambiguous, ok bool) {
	entry, ok := ix.byName[core.NormalizeKey(name)]
	if !ok {
		return "", false, false
	}
	return entry.id, entry.ambiguous, true
}
