package enroll

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/reference"
)

var ErrNothingToEnroll = errors.New("nothing to enroll")

type (
	// API is the backend surface the submission flow needs.
	// Satisfied by *apiclient.Client.
	API interface {
		// CreateStudents submits a single batched creation request; the response
		// is positionally aligned with the candidate order.
		CreateStudents(ctx context.Context, candidates []NewStudent) ([]CreateStudentResult, error)
		BulkEnroll(ctx context.Context, be BulkEnrollment) (SubmissionResult, error)
		// Students refetches the reference student list (pre-submission refresh).
		Students(ctx context.Context) ([]reference.Student, error)
	}

	Service struct {
		api      API
		validate *validator.Validate
		logger   core.Logger
		mailSvc  core.EmailService
		notify   []mail.Address
	}
)

func NewService(api API, validate *validator.Validate, logger core.Logger, mailSvc core.EmailService, notify ...mail.Address) *Service {
	return &Service{
		api:      api,
		validate: validate,
		logger:   logger,
		mailSvc:  mailSvc,
		notify:   notify,
	}
}

// Submit runs the two-phase bulk enrollment: create missing students, then
// enroll resolved + newly created ids. Phase errors are downgraded into the
// returned SubmissionResult; the only error returns are the fast-fail
// precondition and an empty final id set (ErrNothingToEnroll).
//
// Re-running the same file after a partial failure re-attempts creation for
// every still-unresolved candidate; dedup against students created in a prior
// run requires Resolve to be re-run against a refreshed student snapshot.
func (svc *Service) Submit(ctx context.Context, res *Result, be BulkEnrollment) (SubmissionResult, error) {
	if err := be.Validate(svc.validate); err != nil {
		return SubmissionResult{}, err
	}

	var result SubmissionResult

	// phase 1: create missing students
	candidates := creationCandidates(res.Rows)
	createdIDs := make([]string, 0, len(candidates))
	if len(candidates) > 0 {
		outcomes, err := svc.api.CreateStudents(ctx, candidates)
		if err != nil {
			reason := failureReason(err)
			svc.logger.Warn("student creation batch failed", err)
			for _, c := range candidates {
				result.Failed = append(result.Failed, Failure{StudentID: c.Email, Reason: reason})
			}
		} else {
			for i, out := range outcomes {
				if i >= len(candidates) {
					break
				}
				if out.Success {
					createdIDs = append(createdIDs, out.ID)
				} else {
					result.Failed = append(result.Failed, Failure{StudentID: candidates[i].Email, Reason: out.Error})
				}
			}
			// a short response leaves trailing candidates without an outcome;
			// report them instead of dropping them from the summary
			for i := len(outcomes); i < len(candidates); i++ {
				result.Failed = append(result.Failed, Failure{StudentID: candidates[i].Email, Reason: "no creation result returned"})
			}
		}
	}

	// phase 2: bulk enroll resolved + created ids
	be.StudentIDs = core.OrderedUnique(append(append([]string{}, res.ImportedIDs...), createdIDs...))
	if len(be.StudentIDs) == 0 {
		return result, ErrNothingToEnroll
	}

	enrolled, err := svc.api.BulkEnroll(ctx, be)
	if err != nil {
		reason := failureReason(err)
		svc.logger.Warn("bulk enroll failed", err)
		for _, id := range be.StudentIDs {
			result.Failed = append(result.Failed, Failure{StudentID: id, Reason: reason})
		}
	} else {
		result.Created = append(result.Created, enrolled.Created...)
		result.Failed = append(result.Failed, enrolled.Failed...)
	}

	svc.sendSummary(result)
	return result, nil
}

// RefreshStudents refetches the student list so a re-run can resolve students
// created by a prior partial submission instead of duplicating them.
func (svc *Service) RefreshStudents(ctx context.Context, refs *reference.Collections) error {
	students, err := svc.api.Students(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing students")
	}
	refs.Students = students
	return nil
}

// creationCandidates collects unresolved-but-complete rows, collapsing
// duplicate candidates by normalized email within this run.
func creationCandidates(rows []Row) []NewStudent {
	seen := make(map[string]struct{})
	var candidates []NewStudent
	for _, r := range rows {
		if !r.CreationCandidate() {
			continue
		}
		ns := r.newStudent()
		if _, ok := seen[ns.Email]; ok {
			continue
		}
		seen[ns.Email] = struct{}{}
		candidates = append(candidates, ns)
	}
	return candidates
}

type kinder interface {
	ErrKind() string
}

// failureReason classifies a phase error for reporting without this package
// depending on the transport layer.
func failureReason(err error) string {
	if k, ok := errors.Cause(err).(kinder); ok {
		switch k.ErrKind() {
		case "authentication":
			return "authentication failed: " + err.Error()
		case "validation":
			return err.Error()
		}
	}
	return "could not complete action: " + err.Error()
}

func (svc *Service) sendSummary(result SubmissionResult) {
	if svc.mailSvc == nil || len(svc.notify) == 0 {
		return
	}

	msg := &core.EmailMessage{
		To:      svc.notify,
		Subject: fmt.Sprintf("Bulk enrollment: %d enrolled, %d failed", len(result.Created), len(result.Failed)),
		TextContent: fmt.Sprintf(
			"Bulk enrollment finished.\r\n\r\nEnrolled: %d\r\nFailed: %d\r\n",
			len(result.Created), len(result.Failed),
		),
	}
	if len(result.Failed) > 0 {
		var b strings.Builder
		writeRecord(&b, []string{"Student", "Reason"})
		for _, f := range result.Failed {
			writeRecord(&b, []string{f.StudentID, f.Reason})
		}
		if err := msg.Attach(strings.NewReader(b.String()), "failures.csv", "text/csv"); err != nil {
			svc.logger.Error("attaching failure report", err)
		}
	}
	svc.mailSvc.SendMessages(msg)
}
