package main

import (
	"errors"
	"flag"
	"fmt"

	apiclient "github.com/trezcool/shule/client"
	"github.com/trezcool/shule/core/enroll"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	client    *apiclient.Client
	enrollSvc *enroll.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -username USERNAME|EMAIL            - authenticate and print a token")
	fmt.Println("  template [-out FILE]                      - generate an import template")
	fmt.Println("  import -file FILE [options]               - bulk-enroll students from a CSV/XLSX file")
	fmt.Println("  export [-out FILE]                        - export current enrollments as CSV")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The account's username or email. The password will be prompted next.")

	templateCmd := flag.NewFlagSet("template", flag.ExitOnError)
	templateOut := templateCmd.String("out", "", "Output file; stdout when omitted.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The CSV or XLSX file to import.")
	importYear := importCmd.String("year", "", "Academic year override (free text, fuzzy-matched).")
	importGrade := importCmd.String("grade", "", "Grade override (free text, fuzzy-matched).")
	importSection := importCmd.String("section", "", "Section override (free text, fuzzy-matched).")
	importSemester := importCmd.String("semester", "1", "Semester.")
	importDate := importCmd.String("date", "", "Enrollment date override (YYYY-MM-DD or DD/MM/YYYY).")
	importDryRun := importCmd.Bool("dry-run", false, "Resolve and report without submitting.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "Output file; stdout when omitted.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginUname)
	case "template":
		if err := templateCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.template(*templateOut)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importFile(importOptions{
			file:     *importFile,
			year:     *importYear,
			grade:    *importGrade,
			section:  *importSection,
			semester: *importSemester,
			date:     *importDate,
			dryRun:   *importDryRun,
		})
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.export(*exportOut)
	default:
		cli.printUsage()
		return errHelp
	}
}
