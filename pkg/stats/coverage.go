package stats

import (
	"sort"

	"github.com/blocplan/blocplan/pkg/model"
)

// CoverageMetrics reports how much of the requested slot grid is staffed.
type CoverageMetrics struct {
	TotalSlots      int     `json:"total_slots"`
	AssignedSlots   int     `json:"assigned_slots"`
	OverallCoverage float64 `json:"overall_coverage"` // percent

	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	Understaffed []UnderstaffedSlot `json:"understaffed,omitempty"`
}

// DayCoverage is the per-day breakdown.
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalSlots   int     `json:"total_slots"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	StaffCount   int     `json:"staff_count"`
}

// UnderstaffedSlot is a (date, period) below the sector minimum.
type UnderstaffedSlot struct {
	Date     string       `json:"date"`
	Period   model.Period `json:"period"`
	Required int          `json:"required"`
	Present  int          `json:"present"`
	Shortage int          `json:"shortage"`
}

// CoverageAnalyzer computes coverage metrics for a generation result.
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer creates an analyzer.
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze computes coverage from a result and the sector rule. The slot
// totals come from the result's statistics so unassigned slots count
// against coverage.
func (c *CoverageAnalyzer) Analyze(result *model.GenerationResult, rule *model.SectorRule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		TotalSlots:    result.Statistics.TotalSlots,
		AssignedSlots: result.Statistics.AssignedSlots,
		DailyCoverage: make(map[string]DayCoverage),
	}
	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.AssignedSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}

	byDate := make(map[string][]*model.Assignment)
	for _, a := range result.Assignments {
		byDate[a.Slot.Date] = append(byDate[a.Slot.Date], a)
	}

	for date, list := range byDate {
		staff := make(map[string]bool)
		for _, a := range list {
			staff[a.StaffID.String()] = true
		}
		day := DayCoverage{
			Date:       date,
			Assigned:   len(list),
			StaffCount: len(staff),
		}
		metrics.DailyCoverage[date] = day
	}

	if rule != nil && rule.MinimumStaff > 0 {
		metrics.Understaffed = c.findUnderstaffed(result, rule)
	}

	return metrics
}

func (c *CoverageAnalyzer) findUnderstaffed(result *model.GenerationResult, rule *model.SectorRule) []UnderstaffedSlot {
	present := make(map[string]map[string]bool)
	for _, a := range result.Assignments {
		for _, p := range []model.Period{model.PeriodMorning, model.PeriodAfternoon} {
			if !a.Slot.Period.Overlaps(p) {
				continue
			}
			key := a.Slot.Date + "|" + string(p)
			if present[key] == nil {
				present[key] = make(map[string]bool)
			}
			present[key][a.StaffID.String()] = true
		}
	}

	var out []UnderstaffedSlot
	for _, date := range result.DateRange.Days() {
		for _, p := range []model.Period{model.PeriodMorning, model.PeriodAfternoon} {
			count := len(present[date+"|"+string(p)])
			if count >= rule.MinimumStaff {
				continue
			}
			if count == 0 {
				// Days out of scope (weekends excluded from the run)
				// show up as fully empty; skip them unless something
				// was assigned that day.
				if _, any := present[date+"|"+string(model.PeriodMorning)]; !any {
					if _, anyPM := present[date+"|"+string(model.PeriodAfternoon)]; !anyPM {
						continue
					}
				}
			}
			out = append(out, UnderstaffedSlot{
				Date:     date,
				Period:   p,
				Required: rule.MinimumStaff,
				Present:  count,
				Shortage: rule.MinimumStaff - count,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Period < out[j].Period
	})
	return out
}
