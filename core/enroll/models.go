package enroll

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

type (
	// Row is one parsed line of an import file plus its derived fields.
	// Rows are ephemeral: created during parse, discarded after submission.
	Row struct {
		Num int // 1-based data row number

		StudentID       string // resolved reference id, empty when unresolved
		AdmissionNumber string
		FirstName       string
		LastName        string
		FullName        string
		Email           string

		YearText    string
		GradeText   string
		SectionText string
		DateText    string
	}

	// Defaults holds form-level values inferred from single-valued import columns.
	Defaults struct {
		AcademicYearID string
		GradeID        string
		SectionID      string
		EnrollmentDate string
	}

	// Result is the resolver output for one import file.
	Result struct {
		ImportedIDs        []string // resolved, deduplicated, insertion order
		NotMatched         []string // human-readable labels, insertion order
		Defaults           Defaults
		MultiValueWarnings []string
		UnmatchedWarnings  []string
		Rows               []Row // every row, matched or not
	}

	// Summary is the compact state surfaced after a parse.
	Summary struct {
		Matched        int
		NotMatched     []string
		CreatableCount int
	}

	// NewStudent contains information needed to create a missing student.
	NewStudent struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
	}

	// CreateStudentResult is one per-candidate outcome of a batched creation call,
	// positionally aligned with the submitted candidates.
	CreateStudentResult struct {
		Success bool   `json:"success"`
		ID      string `json:"id,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	// BulkEnrollment is the bulk-enroll request payload.
	BulkEnrollment struct {
		AcademicYearID string   `json:"academic_year_id" validate:"required"`
		GradeID        string   `json:"grade_id" validate:"required"`
		SectionID      string   `json:"section_id" validate:"required"`
		Semester       string   `json:"semester" validate:"required"`
		EnrollmentDate string   `json:"enrollment_date"`
		StudentIDs     []string `json:"student_ids"`
	}

	Failure struct {
		StudentID string `json:"student_id"`
		Reason    string `json:"reason"`
	}

	// SubmissionResult partitions one submission into created and failed ids.
	// Immutable after creation.
	SubmissionResult struct {
		Created []string  `json:"created"`
		Failed  []Failure `json:"failed"`
	}

	// Enrollment is the join record binding a student to a year, grade and
	// section for a semester, as returned by the backend.
	Enrollment struct {
		ID              string `json:"id"`
		StudentID       string `json:"student_id"`
		StudentName     string `json:"student_name"`
		AdmissionNumber string `json:"admission_number"`
		AcademicYear    string `json:"academic_year"`
		Grade           string `json:"grade"`
		Section         string `json:"section"`
		Semester        string `json:"semester"`
		EnrollmentDate  string `json:"enrollment_date"`
		Status          string `json:"status"`
		IsActive        bool   `json:"is_active"`
	}
)

// CreationCandidate reports whether an unresolved row carries enough data
// (first name, last name and email) to create the student.
func (r Row) CreationCandidate() bool {
	return r.StudentID == "" && r.FirstName != "" && r.LastName != "" && r.Email != ""
}

// Label returns a human-readable identifier for reporting: name, else email,
// else admission number, else the row number.
func (r Row) Label() string {
	switch {
	case r.FullName != "":
		return r.FullName
	case r.FirstName != "" || r.LastName != "":
		return core.CleanString(r.FirstName + " " + r.LastName)
	case r.Email != "":
		return r.Email
	case r.AdmissionNumber != "":
		return r.AdmissionNumber
	}
	return fmt.Sprintf("row %d", r.Num)
}

func (r Row) newStudent() NewStudent {
	return NewStudent{
		FirstName: core.CleanString(r.FirstName),
		LastName:  core.CleanString(r.LastName),
		Email:     core.CleanString(r.Email, true /* lower */),
	}
}

// Summary derives the post-parse import summary.
func (res *Result) Summary() Summary {
	var creatable int
	for _, r := range res.Rows {
		if r.CreationCandidate() {
			creatable++
		}
	}
	return Summary{
		Matched:        len(res.ImportedIDs),
		NotMatched:     res.NotMatched,
		CreatableCount: creatable,
	}
}

// Validate enforces the fast-fail precondition: year, grade, section and
// semester must all be set before any network call.
func (be *BulkEnrollment) Validate(validate *validator.Validate) error {
	be.AcademicYearID = core.CleanString(be.AcademicYearID)
	be.GradeID = core.CleanString(be.GradeID)
	be.SectionID = core.CleanString(be.SectionID)
	be.Semester = core.CleanString(be.Semester)
	be.EnrollmentDate = core.CleanString(be.EnrollmentDate)
	return validate.Struct(be)
}
