package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{name: "bad request", status: 400, body: `{"detail":"invalid payload"}`, wantKind: KindValidation, wantMsg: "invalid payload"},
		{name: "unprocessable", status: 422, body: `{"message":"missing field"}`, wantKind: KindValidation, wantMsg: "missing field"},
		{name: "unauthorized", status: 401, body: `{"error":"token expired"}`, wantKind: KindAuthentication, wantMsg: "token expired"},
		{name: "forbidden", status: 403, body: ``, wantKind: KindAuthorization, wantMsg: "Forbidden"},
		{name: "not found", status: 404, body: `"no such student"`, wantKind: KindNotFound, wantMsg: "no such student"},
		{name: "server error", status: 500, body: `{"detail":"boom"}`, wantKind: KindServer, wantMsg: "boom"},
		{name: "bad gateway is network", status: 502, body: ``, wantKind: KindNetwork, wantMsg: "Bad Gateway"},
		{name: "unavailable is network", status: 503, body: ``, wantKind: KindNetwork, wantMsg: "Service Unavailable"},
		{name: "gateway timeout is network", status: 504, body: ``, wantKind: KindNetwork, wantMsg: "Gateway Timeout"},
		{name: "teapot unknown", status: http.StatusTeapot, body: ``, wantKind: KindUnknown, wantMsg: "I'm a teapot"},
		{
			name:     "html error page",
			status:   500,
			body:     `<!DOCTYPE html><html><body>Internal Server Error</body></html>`,
			wantKind: KindServer,
			wantMsg:  "the server returned an error page",
		},
		{
			name:     "duplicate email from 500 downgraded to validation",
			status:   500,
			body:     `{"detail":"duplicate key value violates unique constraint \"students_email_key\""}`,
			wantKind: KindValidation,
			wantMsg:  "email already exists",
		},
		{
			name:     "duplicate email from 409",
			status:   409,
			body:     `"a student with this email already exists"`,
			wantKind: KindValidation,
			wantMsg:  "email already exists",
		},
		{
			name:     "non-email unique violation stays put",
			status:   500,
			body:     `"duplicate key value violates unique constraint \"students_admission_key\""`,
			wantKind: KindServer,
			wantMsg:  `duplicate key value violates unique constraint "students_admission_key"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := classifyResponse(tt.status, []byte(tt.body))
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	apiErr := &Error{Kind: KindNotFound, Message: "nope"}
	if got := KindOf(apiErr); got != KindNotFound {
		t.Errorf("KindOf() = %s, want %s", got, KindNotFound)
	}
	if got := KindOf(errors.Wrap(apiErr, "listing students")); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %s, want %s", got, KindNotFound)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %s, want %s", got, KindUnknown)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "validation", err: &Error{Kind: KindValidation}, want: false},
		{name: "server", err: &Error{Kind: KindServer, StatusCode: 500}, want: false},
		{name: "network gateway", err: &Error{Kind: KindNetwork, StatusCode: 502}, want: true},
		{name: "transport failure", err: networkError(errors.New("connection refused")), want: true},
		{name: "deadline exceeded", err: networkError(context.DeadlineExceeded), want: true},
		{name: "caller cancellation", err: networkError(context.Canceled), want: false},
		{name: "wrapped network", err: errors.Wrap(networkError(errors.New("reset")), "listing grades"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}
