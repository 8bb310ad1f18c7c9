package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/storage/inmem"
)

type api struct {
	db   *inmem.DB
	conf *core.Config
}

func registerAPI(g *echo.Group, jwt echo.MiddlewareFunc, db *inmem.DB, conf *core.Config) {
	a := api{db: db, conf: conf}

	// un-authed endpoints
	g.POST("/auth/login", a.login)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.GET("/auth/me", a.me)

	ag.GET("/students", a.queryStudents)
	ag.POST("/students", a.createStudent)
	ag.POST("/students/batch", a.createStudentBatch)

	ag.GET("/academic-years", a.queryAcademicYears)
	ag.GET("/grades", a.queryGrades)
	ag.GET("/sections", a.querySections)

	ag.GET("/enrollments", a.queryEnrollments)
	ag.POST("/enrollments", a.createEnrollment)
	ag.POST("/enrollments/bulk", a.bulkEnroll)

	ag.GET("/classes", a.queryClasses)
	ag.GET("/assignments", a.emptyList)
	ag.GET("/assessments", a.emptyList)
	ag.GET("/attendance", a.emptyList)
	ag.GET("/timetables", a.emptyList)
}

// Auth

func (a *api) login(ctx echo.Context) error {
	var data struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding login request")
	}

	acc, err := authenticate(a.db, data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(a.conf, getAccountClaims(a.conf, acc))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": token})
}

func (a *api) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"id":       claims.Subject,
		"username": claims.Username,
		"email":    claims.Email,
	})
}

// Students

// queryStudents answers with an {items,total} envelope; other list endpoints
// deliberately vary their envelopes the way the real backend does.
func (a *api) queryStudents(ctx echo.Context) error {
	students := a.db.Students()
	return ctx.JSON(http.StatusOK, echo.Map{"items": students, "total": len(students)})
}

func (a *api) createStudent(ctx echo.Context) error {
	var data enroll.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := a.db.CreateStudent(data)
	if err != nil {
		if errors.Cause(err) == inmem.ErrEmailExists {
			return newHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (a *api) createStudentBatch(ctx echo.Context) error {
	var candidates []enroll.NewStudent
	if err := ctx.Bind(&candidates); err != nil {
		return errors.Wrap(err, "binding creation candidates")
	}

	results := make([]enroll.CreateStudentResult, 0, len(candidates))
	for _, c := range candidates {
		s, err := a.db.CreateStudent(c)
		if err != nil {
			results = append(results, enroll.CreateStudentResult{Error: err.Error()})
			continue
		}
		results = append(results, enroll.CreateStudentResult{Success: true, ID: s.ID})
	}
	return ctx.JSON(http.StatusOK, results)
}

// Reference lists

func (a *api) queryAcademicYears(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, a.db.AcademicYears()) // bare array
}

func (a *api) queryGrades(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"data": a.db.Grades()})
}

func (a *api) querySections(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, a.db.Sections()) // bare array
}

// Enrollments

func (a *api) queryEnrollments(ctx echo.Context) error {
	es := a.db.Enrollments()
	return ctx.JSON(http.StatusOK, echo.Map{"items": es, "total": len(es)})
}

func (a *api) createEnrollment(ctx echo.Context) error {
	var data struct {
		StudentID      string `json:"student_id"`
		AcademicYearID string `json:"academic_year_id"`
		GradeID        string `json:"grade_id"`
		SectionID      string `json:"section_id"`
		Semester       string `json:"semester"`
		EnrollmentDate string `json:"enrollment_date"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}

	e, err := a.db.CreateEnrollment(data.StudentID, data.AcademicYearID, data.GradeID, data.SectionID, data.Semester, data.EnrollmentDate)
	if err != nil {
		if errors.Cause(err) == inmem.ErrNotFound {
			return newHTTPError(http.StatusNotFound, "student not found")
		}
		return errors.Wrap(err, "creating enrollment")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (a *api) bulkEnroll(ctx echo.Context) error {
	var data enroll.BulkEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkEnrollment")
	}
	if data.AcademicYearID == "" || data.GradeID == "" || data.SectionID == "" || data.Semester == "" {
		return core.NewValidationError(errors.New("academic year, grade, section and semester are required"))
	}

	var result enroll.SubmissionResult
	for _, id := range data.StudentIDs {
		if _, err := a.db.CreateEnrollment(id, data.AcademicYearID, data.GradeID, data.SectionID, data.Semester, data.EnrollmentDate); err != nil {
			result.Failed = append(result.Failed, enroll.Failure{StudentID: id, Reason: "student not found"})
			continue
		}
		result.Created = append(result.Created, id)
	}
	return ctx.JSON(http.StatusOK, result)
}

// Academic operations: the mock derives classes from grades and keeps the
// remaining feeds empty.

func (a *api) queryClasses(ctx echo.Context) error {
	grades := a.db.Grades()
	classes := make([]echo.Map, 0, len(grades))
	for _, g := range grades {
		classes = append(classes, echo.Map{"id": "class-" + g.ID, "name": g.Name, "grade_id": g.ID})
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (a *api) emptyList(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, []struct{}{})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get("accountToken").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, newHTTPError(http.StatusUnauthorized, "account not authenticated")
}
