package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/core/reference"
)

type importOptions struct {
	file     string
	year     string
	grade    string
	section  string
	semester string
	date     string
	dryRun   bool
}

func (cli *commandLine) importFile(opts importOptions) error {
	ctx := context.Background()

	content, err := readImportFile(opts.file)
	if err != nil {
		return err
	}

	refs, err := cli.client.ReferenceCollections(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching reference collections")
	}

	res := enroll.Resolve(content, refs)
	printResolution(res)

	be := enroll.BulkEnrollment{
		AcademicYearID: res.Defaults.AcademicYearID,
		GradeID:        res.Defaults.GradeID,
		SectionID:      res.Defaults.SectionID,
		Semester:       opts.semester,
		EnrollmentDate: res.Defaults.EnrollmentDate,
	}
	if opts.year != "" {
		if y, ok := reference.MatchAcademicYear(opts.year, refs.AcademicYears); ok {
			be.AcademicYearID = y.ID
		} else {
			return errors.Errorf("academic year %q not found", opts.year)
		}
	}
	if opts.grade != "" {
		if g, ok := reference.MatchGrade(opts.grade, refs.Grades); ok {
			be.GradeID = g.ID
		} else {
			return errors.Errorf("grade %q not found", opts.grade)
		}
	}
	if opts.section != "" {
		if s, ok := reference.MatchSection(opts.section, refs.Sections); ok {
			be.SectionID = s.ID
		} else {
			return errors.Errorf("section %q not found", opts.section)
		}
	}
	if opts.date != "" {
		be.EnrollmentDate = reference.NormalizeDate(opts.date)
	}

	if opts.dryRun {
		fmt.Println("dry run; nothing submitted")
		return nil
	}

	result, err := cli.enrollSvc.Submit(ctx, res, be)
	if err != nil {
		return err
	}

	fmt.Printf("enrolled: %d\n", len(result.Created))
	if len(result.Failed) > 0 {
		fmt.Printf("failed: %d\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  %s: %s\n", f.StudentID, f.Reason)
		}
	}
	return nil
}

func readImportFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return "", errors.Wrap(err, "opening import file")
		}
		defer func() { _ = f.Close() }()
		return enroll.ReadXLSX(f)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "reading import file")
	}
	return string(content), nil
}

func printResolution(res *enroll.Result) {
	summary := res.Summary()
	fmt.Printf("matched: %d, creatable: %d, not matched: %d\n",
		summary.Matched, summary.CreatableCount, len(summary.NotMatched))
	for _, label := range summary.NotMatched {
		fmt.Printf("  not matched: %s\n", label)
	}
	for _, w := range res.MultiValueWarnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, w := range res.UnmatchedWarnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
