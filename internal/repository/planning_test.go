package repository

import (
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/model"
)

func TestReviewRevalidationBlocking(t *testing.T) {
	conflicts := []*model.Conflict{
		{Type: model.ConflictDoubleBooking, Severity: model.SeverityError, StaffID: uuid.New()},
		{Type: model.ConflictSpecialtyMismatch, Severity: model.SeverityWarning},
	}

	err := reviewRevalidation(conflicts, false)
	if !apperrors.Is(err, apperrors.CodeConcurrency) {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeConcurrency)
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatal("expected an AppError")
	}
	fresh, ok := appErr.Fields["new_conflicts"].([]*model.Conflict)
	if !ok || len(fresh) != 1 {
		t.Errorf("new_conflicts should carry the blocking conflicts, got %v", appErr.Fields)
	}

	// Confirmation covers warnings only, never blockers.
	if err := reviewRevalidation(conflicts, true); !apperrors.Is(err, apperrors.CodeConcurrency) {
		t.Errorf("confirmed publish with blockers = %v, want %s", err, apperrors.CodeConcurrency)
	}
}

func TestReviewRevalidationWarnings(t *testing.T) {
	conflicts := []*model.Conflict{
		{Type: model.ConflictMinimumStaff, Severity: model.SeverityWarning},
	}

	err := reviewRevalidation(conflicts, false)
	if !apperrors.Is(err, apperrors.CodeConflict) {
		t.Fatalf("unconfirmed warnings = %v, want %s", err, apperrors.CodeConflict)
	}

	if err := reviewRevalidation(conflicts, true); err != nil {
		t.Errorf("confirmed warnings should pass, got %v", err)
	}
}

func TestReviewRevalidationClean(t *testing.T) {
	if err := reviewRevalidation(nil, false); err != nil {
		t.Errorf("no conflicts should pass, got %v", err)
	}
}
