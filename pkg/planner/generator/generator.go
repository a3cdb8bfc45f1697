// Package generator produces operating-room planning proposals. A run is
// pure compute over a snapshot; persisting the proposal is a separate
// publish step.
package generator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/logger"
	"github.com/blocplan/blocplan/pkg/model"
	"github.com/blocplan/blocplan/pkg/planner/constraint"
	"github.com/blocplan/blocplan/pkg/planner/resolver"
)

// Phase is the state of a generation run.
type Phase string

const (
	PhaseInit           Phase = "INIT"
	PhaseLoadingData    Phase = "LOADING_DATA"
	PhaseAssigning      Phase = "ASSIGNING"
	PhaseValidating     Phase = "VALIDATING"
	PhaseConflictsFound Phase = "CONFLICTS_FOUND"
	PhaseComplete       Phase = "COMPLETE"
)

// SnapshotLoader loads the reference data a run operates on.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, sectorID uuid.UUID, dateRange model.DateRange) (*model.PlanningSnapshot, error)
}

// roleRequirement is one role to fill per slot, with the staff role that
// may hold it.
type roleRequirement struct {
	role      model.AssignmentRole
	staffRole model.StaffRole
}

// Every room slot gets a supervising anesthetist and an operating nurse
// anesthetist. Supervisors may cover several rooms, bounded by the sector
// rule.
var defaultRoleRequirements = []roleRequirement{
	{role: model.AssignmentSupervisor, staffRole: model.RoleAnesthetist},
	{role: model.AssignmentOperator, staffRole: model.RoleNurseAnesthetist},
}

// Result is the outcome of a run.
type Result struct {
	Generation     *model.GenerationResult  `json:"generation"`
	Phase          Phase                    `json:"phase"`
	Classification *resolver.Classification `json:"classification"`
}

// Generator is the planning engine.
type Generator struct {
	loader    SnapshotLoader
	evaluator *constraint.Evaluator
	resolver  *resolver.Resolver
	logger    *logger.PlannerLogger
}

// New creates a generator.
func New(loader SnapshotLoader, evaluator *constraint.Evaluator) *Generator {
	return &Generator{
		loader:    loader,
		evaluator: evaluator,
		resolver:  resolver.New(),
		logger:    logger.NewPlannerLogger(),
	}
}

// Generate runs the full state machine: INIT, LOADING_DATA, ASSIGNING,
// VALIDATING, then CONFLICTS_FOUND or COMPLETE. Identical inputs yield an
// identical assignment set. Partial results are always returned; a slot
// that cannot be filled is recorded as a conflict, never dropped.
func (g *Generator) Generate(ctx context.Context, req model.GenerationRequest) (*Result, error) {
	start := time.Now()

	if err := req.DateRange.Validate(); err != nil {
		return nil, apperrors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate).WithCause(err)
	}
	if req.SectorID == uuid.Nil {
		return nil, apperrors.InvalidInput("sector_id", "required")
	}

	snap, err := g.load(ctx, req)
	if err != nil {
		return nil, err
	}

	evalCtx := constraint.NewContext(snap, req)
	g.logger.StartGeneration(req.SectorID.String(), len(snap.Staff), len(req.DateRange.Days())*len(snap.Rooms))

	assignments, assignConflicts, err := g.assign(ctx, evalCtx, snap, req)
	if err != nil {
		return nil, err
	}

	stateConflicts := g.evaluator.Evaluate(evalCtx)
	conflicts := append(assignConflicts, stateConflicts...)

	cls := g.resolver.Resolve(conflicts, req.Options.IgnoreConflicts)

	phase := PhaseComplete
	if cls.HasBlocking() {
		phase = PhaseConflictsFound
	}

	counts := make(map[uuid.UUID]int)
	for _, a := range assignments {
		counts[a.StaffID]++
	}

	totalSlots := g.countSlots(snap, req)
	result := &model.GenerationResult{
		SectorID:    req.SectorID,
		DateRange:   req.DateRange,
		Assignments: assignments,
		Conflicts:   conflicts,
		StaffCounts: counts,
		Statistics: model.GenerationStatistics{
			TotalSlots:      totalSlots,
			AssignedSlots:   len(assignments),
			UnassignedSlots: totalSlots - len(assignments),
			ConflictCount:   len(conflicts),
			Duration:        time.Since(start),
		},
	}

	g.logger.GenerationComplete(req.SectorID.String(), result.Statistics.Duration,
		result.Statistics.AssignedSlots, result.Statistics.UnassignedSlots)

	return &Result{Generation: result, Phase: phase, Classification: cls}, nil
}

// Validate checks a submitted assignment set against fresh data, returning
// the conflicts it carries. Shared by the validation endpoint and publish
// re-validation.
func (g *Generator) Validate(ctx context.Context, req model.GenerationRequest, assignments []*model.Assignment) ([]*model.Conflict, error) {
	if err := req.DateRange.Validate(); err != nil {
		return nil, apperrors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate).WithCause(err)
	}
	snap, err := g.load(ctx, req)
	if err != nil {
		return nil, err
	}
	evalCtx := constraint.NewContext(snap, req)
	for _, a := range assignments {
		evalCtx.AddAssignment(a)
	}
	return g.evaluator.Evaluate(evalCtx), nil
}

func (g *Generator) load(ctx context.Context, req model.GenerationRequest) (*model.PlanningSnapshot, error) {
	snap, err := g.loader.LoadSnapshot(ctx, req.SectorID, req.DateRange)
	if err != nil {
		return nil, apperrors.DataUnavailable("planning snapshot", err)
	}
	if snap.Sector == nil {
		return nil, apperrors.UnknownSector(req.SectorID.String())
	}
	return snap, nil
}

// assign fills slots chronologically: date, then period, then room, then
// role. The candidate order comes from the evaluator's tie-break policy.
func (g *Generator) assign(ctx context.Context, evalCtx *constraint.Context, snap *model.PlanningSnapshot, req model.GenerationRequest) ([]*model.Assignment, []*model.Conflict, error) {
	var assignments []*model.Assignment
	var conflicts []*model.Conflict

	rooms := sortedRooms(snap.Rooms)

	for _, date := range req.DateRange.Days() {
		if err := ctx.Err(); err != nil {
			return assignments, conflicts, apperrors.Wrap(err, apperrors.CodeCancelled, "generation cancelled")
		}
		if !req.Options.IncludeWeekends && model.IsWeekend(date) {
			continue
		}
		for _, period := range []model.Period{model.PeriodMorning, model.PeriodAfternoon} {
			for _, room := range rooms {
				slot := model.AssignmentSlot{
					Date:     date,
					Period:   period,
					RoomID:   room.ID,
					SectorID: req.SectorID,
				}
				for _, reqRole := range defaultRoleRequirements {
					a, cs := g.fillSlot(evalCtx, snap, req, slot, reqRole)
					conflicts = append(conflicts, cs...)
					if a != nil {
						assignments = append(assignments, a)
					}
				}
			}
		}
	}

	return assignments, conflicts, nil
}

// fillSlot tries candidates in tie-break order until one passes every hard
// constraint. An unfillable slot stays empty and is recorded as a conflict.
func (g *Generator) fillSlot(evalCtx *constraint.Context, snap *model.PlanningSnapshot, req model.GenerationRequest, slot model.AssignmentSlot, reqRole roleRequirement) (*model.Assignment, []*model.Conflict) {
	candidates := g.candidates(evalCtx, snap, req, slot, reqRole)
	candidates = evalCtx.OrderCandidates(slot, candidates)

	for _, staff := range candidates {
		a := &model.Assignment{
			BaseModel: model.BaseModel{ID: uuid.New()},
			Slot:      slot,
			StaffID:   staff.ID,
			Role:      reqRole.role,
		}
		// A rejected candidate's conflicts describe an assignment that was
		// never placed; only the empty slot itself is reported.
		if ok, _ := g.evaluator.CanAssign(evalCtx, a); !ok {
			continue
		}
		evalCtx.AddAssignment(a)
		return a, nil
	}

	severity := model.SeverityWarning
	if req.Options.StrictConflictDetection {
		severity = model.SeverityError
	}
	roomName := slot.RoomID.String()
	if room := snap.RoomByID(slot.RoomID); room != nil {
		roomName = room.Name
	}
	unassigned := &model.Conflict{
		Type:     model.ConflictMinimumStaff,
		Severity: severity,
		Date:     slot.Date,
		Period:   slot.Period,
		RoomID:   slot.RoomID,
		SectorID: slot.SectorID,
		Message:  fmt.Sprintf("no available staff for role %s in room %s on %s (%s)", reqRole.role, roomName, slot.Date, slot.Period),
	}
	g.logger.ConflictDetected(string(unassigned.Type), string(unassigned.Severity), unassigned.Message)

	return nil, []*model.Conflict{unassigned}
}

// candidates filters the pool to active, sector-eligible staff of the
// right role who are free for the slot and role.
func (g *Generator) candidates(evalCtx *constraint.Context, snap *model.PlanningSnapshot, req model.GenerationRequest, slot model.AssignmentSlot, reqRole roleRequirement) []*model.StaffMember {
	var out []*model.StaffMember
	for _, s := range snap.Staff {
		if !s.IsActive() || s.Role != reqRole.staffRole {
			continue
		}
		if !s.EligibleForSector(req.SectorID) {
			continue
		}
		avail := evalCtx.Availability.FreeFor(s.ID, slot, reqRole.role)
		if !avail.Available {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (g *Generator) countSlots(snap *model.PlanningSnapshot, req model.GenerationRequest) int {
	days := 0
	for _, date := range req.DateRange.Days() {
		if !req.Options.IncludeWeekends && model.IsWeekend(date) {
			continue
		}
		days++
	}
	return days * 2 * len(snap.Rooms) * len(defaultRoleRequirements)
}

func sortedRooms(rooms []*model.Room) []*model.Room {
	out := make([]*model.Room, len(rooms))
	copy(out, rooms)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
