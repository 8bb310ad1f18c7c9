package main

import (
	"log"
	"os"
	"strconv"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/reference"
	echoapi "github.com/trezcool/shule/mockapi"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/inmem"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stderr, "mockapi: ", 0)

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db := inmem.Open()
	seed(db)
	_, err := echoapi.SeedAccount(db, "admin", "admin@shule.test", "LocalDevPwd!")
	errAndDie(err)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:   conf.Server.Addr,
			DB:     db,
			Conf:   conf,
			Logger: logger,
		},
	)
	app.Start()
}

// seed loads a small reference data set so the CLI has something to resolve against.
func seed(db *inmem.DB) {
	for _, name := range []string{"2025-2026", "2026-2027"} {
		db.SeedAcademicYear(reference.AcademicYear{Name: name, IsCurrent: name == "2025-2026"})
	}
	db.SeedGrade(reference.Grade{Name: "Reception", Level: 0})
	for level := 1; level <= 7; level++ {
		db.SeedGrade(reference.Grade{Name: "Grade " + strconv.Itoa(level), Level: level})
	}
	for _, name := range []string{"Section A", "Section B"} {
		db.SeedSection(reference.Section{Name: name})
	}
	db.SeedStudent(reference.Student{
		FirstName:       "Amani",
		LastName:        "Mwangi",
		Email:           "amani.mwangi@shule.test",
		AdmissionNumber: "ADM-001",
	})
	db.SeedStudent(reference.Student{
		FirstName:       "Neema",
		LastName:        "Otieno",
		Email:           "neema.otieno@shule.test",
		AdmissionNumber: "ADM-002",
	})
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
