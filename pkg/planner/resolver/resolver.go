// Package resolver classifies detected conflicts into blocking errors and
// advisory warnings, and applies the ignore-conflicts override.
package resolver

import "github.com/blocplan/blocplan/pkg/model"

// Classification splits conflicts by whether they block publishing.
type Classification struct {
	Blocking []*model.Conflict `json:"blocking"`
	Advisory []*model.Conflict `json:"advisory"`
}

// HasBlocking reports whether any blocking conflict remains.
func (c *Classification) HasBlocking() bool {
	return len(c.Blocking) > 0
}

// Resolver decides how a run reacts to conflicts.
type Resolver struct{}

// New creates a resolver.
func New() *Resolver {
	return &Resolver{}
}

// Classify splits conflicts by severity.
func (r *Resolver) Classify(conflicts []*model.Conflict) *Classification {
	cls := &Classification{
		Blocking: make([]*model.Conflict, 0),
		Advisory: make([]*model.Conflict, 0),
	}
	for _, c := range conflicts {
		if c.IsBlocking() {
			cls.Blocking = append(cls.Blocking, c)
		} else {
			cls.Advisory = append(cls.Advisory, c)
		}
	}
	return cls
}

// Resolve classifies conflicts and applies the override. With
// ignoreConflicts set, blocking conflicts are downgraded to advisory so
// generation proceeds to completion; the conflicts keep their original
// severity for display.
func (r *Resolver) Resolve(conflicts []*model.Conflict, ignoreConflicts bool) *Classification {
	cls := r.Classify(conflicts)
	if ignoreConflicts && cls.HasBlocking() {
		cls.Advisory = append(cls.Advisory, cls.Blocking...)
		cls.Blocking = nil
	}
	return cls
}
