package enroll

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestReadXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"first_name", "last_name", "email"},
		{"Amani", "Mwangi", "amani@test.test"},
		{"Poe, Jane", "Poe", "jane@test.test"}, // embedded comma must be quoted
	})

	content, err := ReadXLSX(buf)
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}

	want := "first_name,last_name,email\n" +
		"Amani,Mwangi,amani@test.test\n" +
		"\"Poe, Jane\",Poe,jane@test.test\n"
	if content != want {
		t.Errorf("ReadXLSX() = %q, want %q", content, want)
	}
}

func TestReadXLSX_feedsResolver(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"first_name", "last_name", "email", "grade"},
		{"Amani", "Mwangi", "amani@test.test", "Grade 5"},
		{"Poe, Jane", "Poe", "jane@test.test", "Grade 5"}, // comma survives the round trip
	})

	content, err := ReadXLSX(buf)
	if err != nil {
		t.Fatal(err)
	}
	res := Resolve(content, testRefs())

	if len(res.ImportedIDs) != 1 || res.ImportedIDs[0] != "s1" {
		t.Errorf("ImportedIDs = %v, want [s1]", res.ImportedIDs)
	}
	if res.Defaults.GradeID != "g1" {
		t.Errorf("GradeID = %q, want g1", res.Defaults.GradeID)
	}

	if len(res.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(res.Rows))
	}
	row := res.Rows[1]
	if row.FirstName != "Poe, Jane" || row.Email != "jane@test.test" {
		t.Errorf("row = %+v, quoted cell split the columns", row)
	}
	if !row.CreationCandidate() {
		t.Errorf("row %+v should be a creation candidate", row)
	}
}

func TestReadXLSX_notAWorkbook(t *testing.T) {
	if _, err := ReadXLSX(bytes.NewReader([]byte("just,a,csv"))); err == nil {
		t.Error("ReadXLSX() error = nil, want open failure")
	}
}
