// Package constraint defines the planning rules and their evaluator.
package constraint

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/availability"
)

// Rule is a single planning constraint. Rules report conflicts, they never
// decide the outcome of a run by themselves.
type Rule interface {
	// Name returns a short human-readable name.
	Name() string

	// Type returns the conflict type this rule produces.
	Type() model.ConflictType

	// EvaluateAssignment checks one proposed assignment against the
	// current state. Returns the conflicts it would introduce.
	EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict

	// Evaluate checks the whole current state. Used by the validation
	// phase and by publish re-validation.
	Evaluate(ctx *Context) []*model.Conflict
}

// Context is the working state a run evaluates against. It carries the
// snapshot, the availability index, and the assignments placed so far,
// with cached index maps for cheap lookups.
type Context struct {
	SectorID  uuid.UUID
	DateRange model.DateRange
	Options   model.GenerationOptions
	Rule      *model.SectorRule

	Availability *availability.Index

	rooms       map[uuid.UUID]*model.Room
	staff       map[uuid.UUID]*model.StaffMember
	assignments []*model.Assignment

	byStaff      map[uuid.UUID][]*model.Assignment
	byDatePeriod map[string][]*model.Assignment
}

// NewContext builds the working state from a snapshot. Persisted
// assignments for the range are part of the initial state.
func NewContext(snap *model.PlanningSnapshot, req model.GenerationRequest) *Context {
	ctx := &Context{
		SectorID:     req.SectorID,
		DateRange:    req.DateRange,
		Options:      req.Options,
		Rule:         snap.Rule,
		Availability: availability.NewIndex(snap),
		rooms:        make(map[uuid.UUID]*model.Room),
		staff:        make(map[uuid.UUID]*model.StaffMember),
		byStaff:      make(map[uuid.UUID][]*model.Assignment),
		byDatePeriod: make(map[string][]*model.Assignment),
	}
	for _, r := range snap.Rooms {
		ctx.rooms[r.ID] = r
	}
	for _, s := range snap.Staff {
		ctx.staff[s.ID] = s
	}
	for _, a := range snap.Assignments {
		ctx.index(a)
	}
	return ctx
}

func dpKey(date string, period model.Period) string {
	return date + "|" + string(period)
}

func (c *Context) index(a *model.Assignment) {
	c.assignments = append(c.assignments, a)
	c.byStaff[a.StaffID] = append(c.byStaff[a.StaffID], a)
	c.byDatePeriod[dpKey(a.Slot.Date, a.Slot.Period)] = append(c.byDatePeriod[dpKey(a.Slot.Date, a.Slot.Period)], a)
}

// AddAssignment records a tentative assignment in the working state and the
// availability index.
func (c *Context) AddAssignment(a *model.Assignment) {
	c.index(a)
	c.Availability.AddAssignment(a)
}

// RemoveAssignment undoes a tentative assignment.
func (c *Context) RemoveAssignment(id uuid.UUID) {
	for i, a := range c.assignments {
		if a.ID == id {
			c.assignments = append(c.assignments[:i], c.assignments[i+1:]...)
			c.Availability.RemoveAssignment(a)
			break
		}
	}
	c.rebuild()
}

func (c *Context) rebuild() {
	c.byStaff = make(map[uuid.UUID][]*model.Assignment)
	c.byDatePeriod = make(map[string][]*model.Assignment)
	for _, a := range c.assignments {
		c.byStaff[a.StaffID] = append(c.byStaff[a.StaffID], a)
		c.byDatePeriod[dpKey(a.Slot.Date, a.Slot.Period)] = append(c.byDatePeriod[dpKey(a.Slot.Date, a.Slot.Period)], a)
	}
}

// Assignments returns the current assignment set.
func (c *Context) Assignments() []*model.Assignment {
	return c.assignments
}

// StaffAssignments returns the assignments held by a staff member.
func (c *Context) StaffAssignments(staffID uuid.UUID) []*model.Assignment {
	return c.byStaff[staffID]
}

// OverlappingAssignments returns assignments overlapping the given date and
// period, across both exact and full-day entries.
func (c *Context) OverlappingAssignments(date string, period model.Period) []*model.Assignment {
	var out []*model.Assignment
	for _, p := range []model.Period{model.PeriodMorning, model.PeriodAfternoon, model.PeriodFullDay} {
		if !p.Overlaps(period) {
			continue
		}
		out = append(out, c.byDatePeriod[dpKey(date, p)]...)
	}
	return out
}

// StaffPresent counts distinct staff assigned in the sector during the
// given date and period.
func (c *Context) StaffPresent(date string, period model.Period) int {
	seen := make(map[uuid.UUID]bool)
	for _, a := range c.OverlappingAssignments(date, period) {
		if a.Slot.SectorID == c.SectorID {
			seen[a.StaffID] = true
		}
	}
	return len(seen)
}

// SupervisedRooms counts distinct rooms supervised by a staff member during
// the given date and period.
func (c *Context) SupervisedRooms(staffID uuid.UUID, date string, period model.Period) int {
	rooms := make(map[uuid.UUID]bool)
	for _, a := range c.byStaff[staffID] {
		if a.Role == model.AssignmentSupervisor && a.Slot.Date == date && a.Slot.Period.Overlaps(period) {
			rooms[a.Slot.RoomID] = true
		}
	}
	return len(rooms)
}

// Room returns a room by ID, or nil.
func (c *Context) Room(id uuid.UUID) *model.Room {
	return c.rooms[id]
}

// Staff returns a staff member by ID, or nil.
func (c *Context) Staff(id uuid.UUID) *model.StaffMember {
	return c.staff[id]
}

// Evaluator runs every registered rule with no short-circuit, so a single
// proposal can surface several conflicts at once.
type Evaluator struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewEvaluator creates an evaluator with the default rule set.
func NewEvaluator() *Evaluator {
	e := &Evaluator{}
	e.Register(&AvailabilityRule{})
	e.Register(&DoubleBookingRule{})
	e.Register(&SupervisionLimitRule{})
	e.Register(&MinimumStaffRule{})
	e.Register(&SpecialtyRule{})
	return e
}

// Register adds a rule, replacing any rule of the same conflict type.
func (e *Evaluator) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, existing := range e.rules {
		if existing.Type() == r.Type() {
			e.rules[i] = r
			return
		}
	}
	e.rules = append(e.rules, r)
}

// Unregister removes the rule producing the given conflict type.
func (e *Evaluator) Unregister(t model.ConflictType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, r := range e.rules {
		if r.Type() == t {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return
		}
	}
}

// Rules returns the registered rules.
func (e *Evaluator) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// EvaluateAssignment runs every rule against one proposed assignment.
func (e *Evaluator) EvaluateAssignment(ctx *Context, a *model.Assignment) []*model.Conflict {
	var conflicts []*model.Conflict
	for _, r := range e.Rules() {
		conflicts = append(conflicts, r.EvaluateAssignment(ctx, a)...)
	}
	return conflicts
}

// Evaluate runs every rule against the whole current state.
func (e *Evaluator) Evaluate(ctx *Context) []*model.Conflict {
	var conflicts []*model.Conflict
	for _, r := range e.Rules() {
		conflicts = append(conflicts, r.Evaluate(ctx)...)
	}
	return conflicts
}

// CanAssign reports whether the proposal introduces no error-level
// conflict, returning the blocking conflicts otherwise.
func (e *Evaluator) CanAssign(ctx *Context, a *model.Assignment) (bool, []*model.Conflict) {
	conflicts := e.EvaluateAssignment(ctx, a)
	var blocking []*model.Conflict
	for _, c := range conflicts {
		if c.IsBlocking() {
			blocking = append(blocking, c)
		}
	}
	return len(blocking) == 0, blocking
}

// OrderCandidates sorts candidate staff for a slot. Preference matches come
// first when RespectPreferences is set, then the lowest running assignment
// count when BalanceWorkload is set, then staff ID ascending so the order
// is always deterministic.
func (c *Context) OrderCandidates(slot model.AssignmentSlot, candidates []*model.StaffMember) []*model.StaffMember {
	out := make([]*model.StaffMember, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c.Options.RespectPreferences {
			pa := a.PrefersSlot(slot.Date, slot.Period)
			pb := b.PrefersSlot(slot.Date, slot.Period)
			if pa != pb {
				return pa
			}
		}
		if c.Options.BalanceWorkload {
			ca := c.Availability.AssignmentCount(a.ID)
			cb := c.Availability.AssignmentCount(b.ID)
			if ca != cb {
				return ca < cb
			}
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}
