package enroll

import (
	"strings"
	"testing"

	"github.com/trezcool/shule/core/reference"
)

func TestTemplate(t *testing.T) {
	students := []reference.Student{
		{FirstName: "Amani", LastName: "Mwangi", Email: "amani@test.test"},
		{FirstName: "Neema", LastName: "Otieno", Email: "neema@test.test"},
		{FirstName: "A", LastName: "B", Email: "ab@test.test"},
		{FirstName: "C", LastName: "D", Email: "cd@test.test"},
		{FirstName: "E", LastName: "F", Email: "ef@test.test"},
		{FirstName: "G", LastName: "H", Email: "gh@test.test"}, // beyond the example cap
	}

	out := Template(students)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != TemplateHeader {
		t.Errorf("header = %q, want %q", lines[0], TemplateHeader)
	}
	if len(lines) != 6 { // header + 5 example rows
		t.Fatalf("len(lines) = %d, want 6", len(lines))
	}
	if lines[1] != "Amani,Mwangi,amani@test.test,,,," {
		t.Errorf("first example row = %q", lines[1])
	}
}

func TestTemplate_quotesCommaNames(t *testing.T) {
	students := []reference.Student{
		{FirstName: "Poe, Jane", LastName: "Poe", Email: "jane@test.test"},
	}

	out := Template(students)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if want := `"Poe, Jane",Poe,jane@test.test,,,,`; lines[1] != want {
		t.Errorf("example row = %q, want %q", lines[1], want)
	}
}

func TestTemplate_noStudents(t *testing.T) {
	if out := Template(nil); out != TemplateHeader+"\n" {
		t.Errorf("Template(nil) = %q, want header only", out)
	}
}

func TestExportCSV(t *testing.T) {
	enrollments := []Enrollment{
		{
			StudentName:     `Amani "AJ" Mwangi`,
			AdmissionNumber: "ADM-001",
			AcademicYear:    "2025-2026",
			Grade:           "Grade 5",
			Section:         "Section A",
			Semester:        "1",
			EnrollmentDate:  "2025-09-01",
			Status:          "enrolled",
			IsActive:        true,
		},
		{
			StudentName:    "Otieno, Neema",
			AcademicYear:   "2025-2026",
			Grade:          "Grade 5",
			Section:        "Section A",
			Semester:       "1",
			EnrollmentDate: "2025-09-01",
			Status:         "withdrawn",
		},
	}

	out := ExportCSV(enrollments)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0] != "Student Name,Admission Number,Academic Year,Grade,Section,Semester,Enrollment Date,Status,Active" {
		t.Errorf("header = %q", lines[0])
	}
	// embedded quotes doubled, whole field quoted
	if want := `"Amani ""AJ"" Mwangi",ADM-001,2025-2026,Grade 5,Section A,1,2025-09-01,enrolled,Yes`; lines[1] != want {
		t.Errorf("row 1 = %q, want %q", lines[1], want)
	}
	// embedded comma quoted
	if want := `"Otieno, Neema",,2025-2026,Grade 5,Section A,1,2025-09-01,withdrawn,No`; lines[2] != want {
		t.Errorf("row 2 = %q, want %q", lines[2], want)
	}
}
