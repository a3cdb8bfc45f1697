package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInvalidDateRange, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnknownSector, http.StatusNotFound},
		{CodeConcurrency, http.StatusConflict},
		{CodeConflict, http.StatusUnprocessableEntity},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeDataUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := New(tc.code, "x").HTTPStatus; got != tc.want {
			t.Errorf("%s -> %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, CodeDataUnavailable, "load failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if !Is(err, CodeDataUnavailable) {
		t.Error("Is should match the code")
	}
	if GetCode(err) != CodeDataUnavailable {
		t.Errorf("GetCode = %s", GetCode(err))
	}
}

func TestIsOnPlainError(t *testing.T) {
	if Is(stderrors.New("plain"), CodeInternal) {
		t.Error("a plain error carries no code")
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Error("a plain error should report CodeUnknown")
	}
	if GetHTTPStatus(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Error("a plain error should map to 500")
	}
}

func TestPlanningChanged(t *testing.T) {
	err := PlanningChanged([]string{"c1"})
	if err.Code != CodeConcurrency {
		t.Errorf("code = %s, want %s", err.Code, CodeConcurrency)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("status = %d, want 409", err.HTTPStatus)
	}
	if _, ok := err.Fields["new_conflicts"]; !ok {
		t.Error("the fresh conflicts should ride in the fields")
	}
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Error("fresh collection should be empty")
	}
	ve.Add("start_date", "required")
	ve.Add("end_date", "before start")

	if !ve.HasErrors() {
		t.Error("HasErrors should be true after Add")
	}
	app := ve.ToAppError()
	if app.Code != CodeValidation {
		t.Errorf("code = %s, want %s", app.Code, CodeValidation)
	}
	if app.Fields["start_date"] != "required" {
		t.Errorf("fields = %v", app.Fields)
	}
}
