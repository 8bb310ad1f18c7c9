package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/enroll"
)

func (cli *commandLine) export(out string) error {
	enrollments, err := cli.client.Enrollments(context.Background())
	if err != nil {
		return errors.Wrap(err, "fetching enrollments")
	}
	return writeOutput(out, enroll.ExportCSV(enrollments))
}

func (cli *commandLine) template(out string) error {
	students, err := cli.client.Students(context.Background())
	if err != nil {
		return errors.Wrap(err, "fetching students")
	}
	return writeOutput(out, enroll.Template(students))
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	return errors.Wrap(os.WriteFile(path, []byte(content), 0644), "writing "+path)
}
