package resolver

import (
	"testing"

	"github.com/blocplan/blocplan/pkg/model"
)

func TestClassify(t *testing.T) {
	conflicts := []*model.Conflict{
		{Type: model.ConflictLeaveOverlap, Severity: model.SeverityError},
		{Type: model.ConflictSpecialtyMismatch, Severity: model.SeverityWarning},
		{Type: model.ConflictMinimumStaff, Severity: model.SeverityWarning},
	}

	cls := New().Classify(conflicts)
	if len(cls.Blocking) != 1 {
		t.Errorf("blocking = %d, want 1", len(cls.Blocking))
	}
	if len(cls.Advisory) != 2 {
		t.Errorf("advisory = %d, want 2", len(cls.Advisory))
	}
	if !cls.HasBlocking() {
		t.Error("HasBlocking() should be true")
	}
}

func TestClassifyEmpty(t *testing.T) {
	cls := New().Classify(nil)
	if cls.HasBlocking() {
		t.Error("no conflicts means nothing blocking")
	}
	if cls.Blocking == nil || cls.Advisory == nil {
		t.Error("slices should be non-nil for JSON encoding")
	}
}

func TestResolveIgnoreConflicts(t *testing.T) {
	conflicts := []*model.Conflict{
		{Type: model.ConflictDoubleBooking, Severity: model.SeverityError},
		{Type: model.ConflictMinimumStaff, Severity: model.SeverityWarning},
	}

	cls := New().Resolve(conflicts, true)
	if cls.HasBlocking() {
		t.Error("ignore-conflicts should downgrade blocking conflicts")
	}
	if len(cls.Advisory) != 2 {
		t.Errorf("advisory = %d, want 2", len(cls.Advisory))
	}

	// The conflicts keep their original severity for display.
	found := false
	for _, c := range cls.Advisory {
		if c.Severity == model.SeverityError {
			found = true
		}
	}
	if !found {
		t.Error("downgraded conflicts should keep their error severity")
	}
}

func TestResolveWithoutIgnore(t *testing.T) {
	conflicts := []*model.Conflict{
		{Type: model.ConflictDoubleBooking, Severity: model.SeverityError},
	}
	cls := New().Resolve(conflicts, false)
	if !cls.HasBlocking() {
		t.Error("blocking conflicts should remain without the override")
	}
}
