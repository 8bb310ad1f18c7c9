package reference

import "testing"

var testGrades = []Grade{
	{ID: "g1", Name: "Grade 5", Level: 5},
	{ID: "g2", Name: "Grade 10", Level: 10},
	{ID: "g3", Name: "Reception", Level: 0},
}

func TestMatchGrade(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantID string
		wantOK bool
	}{
		{name: "bare number", text: "5", wantID: "g1", wantOK: true},
		{name: "full name", text: "Grade 5", wantID: "g1", wantOK: true},
		{name: "lowered", text: "grade 5", wantID: "g1", wantOK: true},
		{name: "g prefix", text: "G 5", wantID: "g1", wantOK: true},
		{name: "two digit level", text: "10", wantID: "g2", wantOK: true},
		{name: "non numeric name", text: "reception", wantID: "g3", wantOK: true},
		{name: "non numeric substring", text: "recep", wantID: "g3", wantOK: true},
		{name: "unknown", text: "Grade 7", wantOK: false},
		{name: "empty", text: "  ", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := MatchGrade(tt.text, testGrades)
			if ok != tt.wantOK {
				t.Fatalf("MatchGrade(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && g.ID != tt.wantID {
				t.Errorf("MatchGrade(%q) = %s, want %s", tt.text, g.ID, tt.wantID)
			}
		})
	}
}

func TestMatchSection(t *testing.T) {
	sections := []Section{
		{ID: "s1", Name: "Section A", GradeID: "g1"},
		{ID: "s2", Name: "B", GradeID: "g1"},
	}

	tests := []struct {
		name   string
		text   string
		wantID string
		wantOK bool
	}{
		{name: "exact", text: "Section A", wantID: "s1", wantOK: true},
		{name: "suffix", text: "A", wantID: "s1", wantOK: true},
		{name: "sec prefix", text: "sec A", wantID: "s1", wantOK: true},
		{name: "s prefix", text: "S B", wantID: "s2", wantOK: true},
		{name: "substring", text: "Section B stream", wantID: "s2", wantOK: true},
		{name: "unknown", text: "C", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := MatchSection(tt.text, sections)
			if ok != tt.wantOK {
				t.Fatalf("MatchSection(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && s.ID != tt.wantID {
				t.Errorf("MatchSection(%q) = %s, want %s", tt.text, s.ID, tt.wantID)
			}
		})
	}
}

func TestMatchAcademicYear(t *testing.T) {
	years := []AcademicYear{
		{ID: "y1", Name: "2024-2025", IsCurrent: true},
		{ID: "y2", Name: "2023-2024"},
	}

	tests := []struct {
		name   string
		text   string
		wantID string
		wantOK bool
	}{
		{name: "exact", text: "2024-2025", wantID: "y1", wantOK: true},
		{name: "slash separator", text: "2024/2025", wantID: "y1", wantOK: true},
		{name: "previous year", text: "2023/2024", wantID: "y2", wantOK: true},
		{name: "unknown", text: "2025-2026", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, ok := MatchAcademicYear(tt.text, years)
			if ok != tt.wantOK {
				t.Fatalf("MatchAcademicYear(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && y.ID != tt.wantID {
				t.Errorf("MatchAcademicYear(%q) = %s, want %s", tt.text, y.ID, tt.wantID)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "05/03/2024", want: "2024-03-05"},
		{in: "2024-03-05", want: "2024-03-05"},
		{in: "03-05-2024", want: "03-05-2024"}, // only DD/MM/YYYY is rewritten
		{in: " 05/03/2024 ", want: "2024-03-05"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStudentIndexAmbiguity(t *testing.T) {
	students := []Student{
		{ID: "st1", FirstName: "John", LastName: "Doe", Email: "jd1@test.cd", AdmissionNumber: "ADM001"},
		{ID: "st2", FirstName: "john", LastName: "doe", Email: "jd2@test.cd", AdmissionNumber: "ADM002"},
		{ID: "st3", FirstName: "Jane", LastName: "Smith", Email: "js@test.cd", AdmissionNumber: "ADM003"},
	}
	ix := NewStudentIndex(students)

	if id, ok := ix.ByAdmission("ADM003"); !ok || id != "st3" {
		t.Errorf("ByAdmission(ADM003) = %q, %v", id, ok)
	}
	if id, ok := ix.ByEmail("  JD1@TEST.CD "); !ok || id != "st1" {
		t.Errorf("ByEmail = %q, %v", id, ok)
	}
	if id, ambiguous, ok := ix.ByName("John  Doe"); !ok || !ambiguous || id != "" {
		t.Errorf("ByName(John Doe) = %q, ambiguous=%v, ok=%v; want ambiguous", id, ambiguous, ok)
	}
	if id, ambiguous, ok := ix.ByName("jane smith"); !ok || ambiguous || id != "st3" {
		t.Errorf("ByName(jane smith) = %q, ambiguous=%v, ok=%v", id, ambiguous, ok)
	}
	if _, _, ok := ix.ByName("nobody here"); ok {
		t.Error("ByName(nobody here) should not resolve")
	}
}
