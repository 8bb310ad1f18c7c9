package apiclient

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/core/reference"
)

// Thin wrappers over the backend resources. The backend's response envelopes
// vary (bare array vs {items,total} vs {data}); unwrapList normalizes them at
// this boundary so nothing deeper ever sees the raw unions.

type listEnvelope struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`
}

func unwrapList(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Items != nil {
			return errors.Wrap(json.Unmarshal(env.Items, out), "decoding items")
		}
		if env.Data != nil {
			return errors.Wrap(json.Unmarshal(env.Data, out), "decoding data")
		}
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decoding list")
}

func (c *Client) list(ctx context.Context, path string, out interface{}) error {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return err
	}
	return unwrapList(raw, out)
}

// Auth

type Account struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Login authenticates and stores the bearer token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/login", payload, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

func (c *Client) Me(ctx context.Context) (Account, error) {
	var acc Account
	err := c.get(ctx, "/auth/me", &acc)
	return acc, err
}

// Reference collections

func (c *Client) Students(ctx context.Context) ([]reference.Student, error) {
	var students []reference.Student
	err := c.list(ctx, "/students", &students)
	return students, err
}

func (c *Client) AcademicYears(ctx context.Context) ([]reference.AcademicYear, error) {
	var years []reference.AcademicYear
	err := c.list(ctx, "/academic-years", &years)
	return years, err
}

func (c *Client) Grades(ctx context.Context) ([]reference.Grade, error) {
	var grades []reference.Grade
	err := c.list(ctx, "/grades", &grades)
	return grades, err
}

func (c *Client) Sections(ctx context.Context) ([]reference.Section, error) {
	var sections []reference.Section
	err := c.list(ctx, "/sections", &sections)
	return sections, err
}

// ReferenceCollections fetches one consistent-enough snapshot of every list an
// import needs.
func (c *Client) ReferenceCollections(ctx context.Context) (reference.Collections, error) {
	var refs reference.Collections
	var err error
	if refs.Students, err = c.Students(ctx); err != nil {
		return refs, err
	}
	if refs.AcademicYears, err = c.AcademicYears(ctx); err != nil {
		return refs, err
	}
	if refs.Grades, err = c.Grades(ctx); err != nil {
		return refs, err
	}
	if refs.Sections, err = c.Sections(ctx); err != nil {
		return refs, err
	}
	return refs, nil
}

// Students

func (c *Client) CreateStudent(ctx context.Context, ns enroll.NewStudent) (reference.Student, error) {
	var s reference.Student
	err := c.post(ctx, "/students", ns, &s)
	return s, err
}

// CreateStudents submits a single batched creation request. The response is an
// ordered list of per-candidate outcomes, positionally aligned with candidates.
func (c *Client) CreateStudents(ctx context.Context, candidates []enroll.NewStudent) ([]enroll.CreateStudentResult, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/students/batch", candidates, &raw); err != nil {
		return nil, err
	}
	var results []enroll.CreateStudentResult
	if err := unwrapList(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Enrollments

func (c *Client) Enrollments(ctx context.Context) ([]enroll.Enrollment, error) {
	var es []enroll.Enrollment
	err := c.list(ctx, "/enrollments", &es)
	return es, err
}

type NewEnrollment struct {
	StudentID      string `json:"student_id" validate:"required"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
	GradeID        string `json:"grade_id" validate:"required"`
	SectionID      string `json:"section_id" validate:"required"`
	Semester       string `json:"semester" validate:"required"`
	EnrollmentDate string `json:"enrollment_date"`
}

func (c *Client) Enroll(ctx context.Context, ne NewEnrollment) (enroll.Enrollment, error) {
	var e enroll.Enrollment
	err := c.post(ctx, "/enrollments", ne, &e)
	return e, err
}

// BulkEnroll sends one bulk-enroll request and normalizes both response
// shapes: a bare array (all succeeded) or a {created,failed} object.
func (c *Client) BulkEnroll(ctx context.Context, be enroll.BulkEnrollment) (enroll.SubmissionResult, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/enrollments/bulk", be, &raw); err != nil {
		return enroll.SubmissionResult{}, err
	}
	return normalizeBulkResponse(raw)
}

func normalizeBulkResponse(raw json.RawMessage) (enroll.SubmissionResult, error) {
	var result enroll.SubmissionResult

	// bare array: every element is a created enrollment
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err == nil {
		for _, elem := range elems {
			var id string
			if err := json.Unmarshal(elem, &id); err == nil {
				result.Created = append(result.Created, id)
				continue
			}
			var rec struct {
				StudentID string `json:"student_id"`
				ID        string `json:"id"`
			}
			if err := json.Unmarshal(elem, &rec); err != nil {
				return result, errors.Wrap(err, "decoding bulk enroll element")
			}
			if rec.StudentID != "" {
				result.Created = append(result.Created, rec.StudentID)
			} else {
				result.Created = append(result.Created, rec.ID)
			}
		}
		return result, nil
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, errors.Wrap(err, "decoding bulk enroll response")
	}
	return result, nil
}

// Academic operations (read-only consumers)

type (
	Class struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		GradeID string `json:"grade_id"`
	}

	Assignment struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		ClassID string `json:"class_id"`
		DueDate string `json:"due_date"`
	}

	Assessment struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		ClassID  string  `json:"class_id"`
		MaxScore float64 `json:"max_score"`
	}

	AttendanceRecord struct {
		ID        string `json:"id"`
		StudentID string `json:"student_id"`
		Date      string `json:"date"`
		Status    string `json:"status"`
	}

	TimetableSlot struct {
		ID        string `json:"id"`
		ClassID   string `json:"class_id"`
		Day       string `json:"day"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
)

func (c *Client) Classes(ctx context.Context) ([]Class, error) {
	var cs []Class
	err := c.list(ctx, "/classes", &cs)
	return cs, err
}

func (c *Client) Assignments(ctx context.Context) ([]Assignment, error) {
	var as []Assignment
	err := c.list(ctx, "/assignments", &as)
	return as, err
}

func (c *Client) Assessments(ctx context.Context) ([]Assessment, error) {
	var as []Assessment
	err := c.list(ctx, "/assessments", &as)
	return as, err
}

func (c *Client) Attendance(ctx context.Context) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	err := c.list(ctx, "/attendance", &recs)
	return recs, err
}

func (c *Client) Timetables(ctx context.Context) ([]TimetableSlot, error) {
	var slots []TimetableSlot
	err := c.list(ctx, "/timetables", &slots)
	return slots, err
}
