package enroll

import (
	"strings"

	"github.com/trezcool/shule/core/reference"
)

// TemplateHeader is the fixed header order of the downloadable import template.
const TemplateHeader = "first_name,last_name,email,academic_year,grade,section,enrollment_date"

// Template generates an import template pre-populated with up to 5 existing
// students as example rows.
func Template(students []reference.Student) string {
	var b strings.Builder
	b.WriteString(TemplateHeader + "\n")

	max := 5
	if len(students) < max {
		max = len(students)
	}
	for _, s := range students[:max] {
		writeRecord(&b, []string{s.FirstName, s.LastName, s.Email, "", "", "", ""})
	}
	return b.String()
}

var exportHeader = []string{
	"Student Name", "Admission Number", "Academic Year", "Grade",
	"Section", "Semester", "Enrollment Date", "Status", "Active",
}

// ExportCSV renders loaded enrollments as CSV, one row per enrollment,
// embedded quotes doubled RFC4180-style.
func ExportCSV(enrollments []Enrollment) string {
	var b strings.Builder
	writeRecord(&b, exportHeader)

	for _, e := range enrollments {
		active := "No"
		if e.IsActive {
			active = "Yes"
		}
		writeRecord(&b, []string{
			e.StudentName, e.AdmissionNumber, e.AcademicYear, e.Grade,
			e.Section, e.Semester, e.EnrollmentDate, e.Status, active,
		})
	}
	return b.String()
}

func writeRecord(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quoteField(c))
	}
	b.WriteString("\n")
}

func quoteField(s string) string {
	if strings.ContainsAny(s, `",`) || strings.Contains(s, "\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
