package enroll

import (
	"fmt"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/reference"
)

// Logical import columns. A column is "present" when any of its aliases
// appears in the header; absent columns yield no data in every row.
const (
	colStudentID = "student_id"
	colAdmission = "admission_number"
	colFirstName = "first_name"
	colLastName  = "last_name"
	colFullName  = "full_name"
	colEmail     = "email"
	colYear      = "academic_year"
	colGrade     = "grade"
	colSection   = "section"
	colDate      = "enrollment_date"
)

var columnAliases = map[string][]string{
	colStudentID: {"student_id", "studentid", "id"},
	colAdmission: {"admission_number", "admission_no", "admission", "adm_no", "adm"},
	colFirstName: {"first_name", "firstname", "fname"},
	colLastName:  {"last_name", "lastname", "lname", "surname"},
	colFullName:  {"full_name", "fullname", "student_name", "name"},
	colEmail:     {"email", "email_address", "e-mail"},
	colYear:      {"academic_year", "academicyear", "year", "session"},
	colGrade:     {"grade", "class", "standard"},
	colSection:   {"section", "sec", "stream"},
	colDate:      {"enrollment_date", "enrolment_date", "date", "enrolled_on", "admission_date"},
}

// splitLine splits a delimited line, honoring RFC4180-style quoted fields:
// a quoted cell may carry embedded commas, and a doubled quote unescapes to
// one. This matches the quoting quoteField/ReadXLSX produce, so generated
// input round-trips losslessly. An unterminated quote runs to end of line.
func splitLine(line string) []string {
	var cells []string
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				b.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	cells = append(cells, strings.TrimSpace(b.String()))
	return cells
}

// detectHeader maps logical columns to their index in the header line.
func detectHeader(header string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range splitLine(header) {
		cell = core.NormalizeKey(cell)
		for logical, aliases := range columnAliases {
			if _, taken := cols[logical]; taken {
				continue
			}
			for _, alias := range aliases {
				if cell == alias {
					cols[logical] = i
					break
				}
			}
		}
	}
	return cols
}

func cellAt(cells []string, cols map[string]int, logical string) string {
	i, ok := cols[logical]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// Resolve parses a delimited text blob and resolves each row against the
// reference snapshot. It performs no I/O and is deterministic for a fixed
// input + snapshot: calling it twice yields identical output.
func Resolve(content string, refs reference.Collections) *Result {
	res := &Result{}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var header string
	var dataStart int
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			header = line
			dataStart = i + 1
			break
		}
	}
	if header == "" {
		return res
	}
	cols := detectHeader(header)

	ix := reference.NewStudentIndex(refs.Students)

	// ordered resolver chain: first non-empty match wins
	type resolved struct {
		id        string
		ambiguous bool
	}
	resolvers := []func(Row) resolved{
		func(r Row) resolved { // explicit id column
			return resolved{id: r.StudentID}
		},
		func(r Row) resolved { // admission number lookup
			if r.AdmissionNumber == "" {
				return resolved{}
			}
			id, _ := ix.ByAdmission(r.AdmissionNumber)
			return resolved{id: id}
		},
		func(r Row) resolved { // email lookup
			if r.Email == "" {
				return resolved{}
			}
			id, _ := ix.ByEmail(r.Email)
			return resolved{id: id}
		},
		func(r Row) resolved { // name lookup, ambiguity reported
			name := r.FullName
			if name == "" && (r.FirstName != "" || r.LastName != "") {
				name = core.CleanString(r.FirstName + " " + r.LastName)
			}
			if name == "" {
				return resolved{}
			}
			id, ambiguous, ok := ix.ByName(name)
			if !ok {
				return resolved{}
			}
			return resolved{id: id, ambiguous: ambiguous}
		},
	}

	var ids []string
	num := 0
	for _, line := range lines[dataStart:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		num++
		cells := splitLine(line)
		row := Row{
			Num:             num,
			StudentID:       cellAt(cells, cols, colStudentID),
			AdmissionNumber: cellAt(cells, cols, colAdmission),
			FirstName:       cellAt(cells, cols, colFirstName),
			LastName:        cellAt(cells, cols, colLastName),
			FullName:        cellAt(cells, cols, colFullName),
			Email:           cellAt(cells, cols, colEmail),
			YearText:        cellAt(cells, cols, colYear),
			GradeText:       cellAt(cells, cols, colGrade),
			SectionText:     cellAt(cells, cols, colSection),
			DateText:        cellAt(cells, cols, colDate),
		}

		var ambiguous bool
		for _, resolve := range resolvers {
			r := resolve(row)
			if r.ambiguous {
				ambiguous = true
				break
			}
			if r.id != "" {
				row.StudentID = r.id
				break
			}
		}

		switch {
		case ambiguous:
			res.NotMatched = append(res.NotMatched, row.Label()+" (ambiguous)")
		case row.StudentID != "":
			ids = append(ids, row.StudentID)
		default:
			res.NotMatched = append(res.NotMatched, row.Label())
		}
		res.Rows = append(res.Rows, row)
	}
	res.ImportedIDs = core.OrderedUnique(ids)

	res.inferDefaults(refs)
	return res
}

// inferDefaults lifts single-valued metadata columns to form-level defaults.
// Multiple distinct values produce a warning instead; zero values produce neither.
func (res *Result) inferDefaults(refs reference.Collections) {
	year := distinctValues(res.Rows, func(r Row) string { return r.YearText })
	grade := distinctValues(res.Rows, func(r Row) string { return r.GradeText })
	section := distinctValues(res.Rows, func(r Row) string { return r.SectionText })
	date := distinctValues(res.Rows, func(r Row) string { return r.DateText })

	switch len(year) {
	case 0:
	case 1:
		if y, ok := reference.MatchAcademicYear(year[0], refs.AcademicYears); ok {
			res.Defaults.AcademicYearID = y.ID
		} else {
			res.UnmatchedWarnings = append(res.UnmatchedWarnings,
				fmt.Sprintf("academic year %q not found", year[0]))
		}
	default:
		res.MultiValueWarnings = append(res.MultiValueWarnings,
			"multiple academic years in file; set the academic year manually")
	}

	switch len(grade) {
	case 0:
	case 1:
		if g, ok := reference.MatchGrade(grade[0], refs.Grades); ok {
			res.Defaults.GradeID = g.ID
		} else {
			res.UnmatchedWarnings = append(res.UnmatchedWarnings,
				fmt.Sprintf("grade %q not found", grade[0]))
		}
	default:
		res.MultiValueWarnings = append(res.MultiValueWarnings,
			"multiple grades in file; set the grade manually")
	}

	switch len(section) {
	case 0:
	case 1:
		if s, ok := reference.MatchSection(section[0], refs.Sections); ok {
			res.Defaults.SectionID = s.ID
		} else {
			res.UnmatchedWarnings = append(res.UnmatchedWarnings,
				fmt.Sprintf("section %q not found", section[0]))
		}
	default:
		res.MultiValueWarnings = append(res.MultiValueWarnings,
			"multiple sections in file; set the section manually")
	}

	switch len(date) {
	case 0:
	case 1:
		res.Defaults.EnrollmentDate = reference.NormalizeDate(date[0])
	default:
		res.MultiValueWarnings = append(res.MultiValueWarnings,
			"multiple enrollment dates in file; set the date manually")
	}
}

func distinctValues(rows []Row, get func(Row) string) []string {
	var vals []string
	for _, r := range rows {
		if v := strings.TrimSpace(get(r)); v != "" {
			vals = append(vals, v)
		}
	}
	return core.OrderedUnique(vals)
}
