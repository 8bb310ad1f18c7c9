package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apiclient "github.com/trezcool/shule/client"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// backendCounters tracks the write endpoints hit during a test.
type backendCounters struct {
	batches int32
	bulks   int32
}

func setup(t *testing.T) (*commandLine, *backendCounters) {
	t.Helper()
	counters := &backendCounters{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok123"}`))
	})
	mux.HandleFunc("/api/v1/students", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
			{"id":"s1","first_name":"Amani","last_name":"Mwangi","email":"amani@test.test","admission_number":"ADM-001"}
		],"total":1}`))
	})
	mux.HandleFunc("/api/v1/students/batch", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&counters.batches, 1)
		_, _ = w.Write([]byte(`[{"success":true,"id":"n1"}]`))
	})
	mux.HandleFunc("/api/v1/academic-years", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"y1","name":"2025-2026","is_current":true}]`))
	})
	mux.HandleFunc("/api/v1/grades", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"g1","name":"Grade 5","level":5}]}`))
	})
	mux.HandleFunc("/api/v1/sections", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"sec1","name":"Section A"}]`))
	})
	mux.HandleFunc("/api/v1/enrollments", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
			{"id":"e1","student_id":"s1","student_name":"Amani Mwangi","admission_number":"ADM-001",
			 "academic_year":"2025-2026","grade":"Grade 5","section":"Section A","semester":"1",
			 "enrollment_date":"2025-09-01","status":"enrolled","is_active":true}
		],"total":1}`))
	})
	mux.HandleFunc("/api/v1/enrollments/bulk", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&counters.bulks, 1)
		_, _ = w.Write([]byte(`{"created":["s1","n1"],"failed":[]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := apiclient.NewClient(&apiclient.Options{
		BaseURL:        srv.URL,
		Token:          "tok",
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	validate, _ := core.NewValidator()
	return &commandLine{
		client:    client,
		enrollSvc: enroll.NewService(client, validate, nopLogger{}, nil),
	}, counters
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	readPasswordFunc = func(int) ([]byte, error) { return []byte("s3cr3t"), nil }

	tests := []cliTest{
		{name: "no subcommand", wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no username", args: []string{"login"}, wantErr: errHelp},
		{name: "login", args: []string{"login", "-username", "admin"}},
		{name: "template", args: []string{"template"}},
		{name: "export", args: []string{"export"}},
		{name: "import: no file", args: []string{"import"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"shulectl"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if cli.client.Token() != "tok123" {
		t.Errorf("Token() = %q, want tok123 after login", cli.client.Token())
	}
}

func Test_commandLine_template(t *testing.T) {
	cli, _ := setup(t)
	out := filepath.Join(t.TempDir(), "template.csv")

	if err := cli.run([]string{"shulectl", "template", "-out", out}); err != nil {
		t.Fatalf("template error = %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if lines[0] != enroll.TemplateHeader {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "Amani,Mwangi,") {
		t.Errorf("example rows = %v", lines[1:])
	}
}

func Test_commandLine_export(t *testing.T) {
	cli, _ := setup(t)
	out := filepath.Join(t.TempDir(), "enrollments.csv")

	if err := cli.run([]string{"shulectl", "export", "-out", out}); err != nil {
		t.Fatalf("export error = %v", err)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Amani Mwangi,ADM-001,2025-2026,Grade 5,Section A,1,2025-09-01,enrolled,Yes") {
		t.Errorf("export content:\n%s", content)
	}
}

func Test_commandLine_import(t *testing.T) {
	file := filepath.Join(t.TempDir(), "import.csv")
	content := strings.Join([]string{
		"first_name,last_name,email,academic_year,grade,section,enrollment_date",
		"Amani,Mwangi,amani@test.test,2025-2026,Grade 5,Section A,01/09/2025",
		"Jane,Poe,jane@test.test,2025-2026,Grade 5,Section A,01/09/2025",
	}, "\n")
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("dry run submits nothing", func(t *testing.T) {
		cli, counters := setup(t)
		if err := cli.run([]string{"shulectl", "import", "-file", file, "-dry-run"}); err != nil {
			t.Fatalf("import error = %v", err)
		}
		if n := atomic.LoadInt32(&counters.batches) + atomic.LoadInt32(&counters.bulks); n != 0 {
			t.Errorf("write endpoints hit = %d, want 0 on dry run", n)
		}
	})

	t.Run("full import", func(t *testing.T) {
		cli, counters := setup(t)
		if err := cli.run([]string{"shulectl", "import", "-file", file}); err != nil {
			t.Fatalf("import error = %v", err)
		}
		if n := atomic.LoadInt32(&counters.batches); n != 1 {
			t.Errorf("batch creations = %d, want 1", n)
		}
		if n := atomic.LoadInt32(&counters.bulks); n != 1 {
			t.Errorf("bulk enrollments = %d, want 1", n)
		}
	})

	t.Run("unknown override rejected before submission", func(t *testing.T) {
		cli, counters := setup(t)
		err := cli.run([]string{"shulectl", "import", "-file", file, "-grade", "Grade 99"})
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Fatalf("import error = %v, want grade not found", err)
		}
		if n := atomic.LoadInt32(&counters.bulks); n != 0 {
			t.Errorf("bulk enrollments = %d, want 0", n)
		}
	})
}
