package repository

import (
	"testing"

	"github.com/google/uuid"

	"github.com/blocplan/blocplan/pkg/model"
)

func TestSectorDefaultRuleUsesConfiguredLimit(t *testing.T) {
	sectorID := uuid.New()

	rule := NewSectorRepository(nil, 2).defaultRule(sectorID)
	if rule.MaxRoomsPerSupervisor != 2 {
		t.Errorf("MaxRoomsPerSupervisor = %d, want the configured 2", rule.MaxRoomsPerSupervisor)
	}
	if rule.SectorID != sectorID {
		t.Errorf("SectorID = %s, want %s", rule.SectorID, sectorID)
	}
}

func TestSectorDefaultRuleFallsBack(t *testing.T) {
	rule := NewSectorRepository(nil, 0).defaultRule(uuid.New())
	if rule.MaxRoomsPerSupervisor != model.DefaultMaxRoomsPerSupervisor {
		t.Errorf("MaxRoomsPerSupervisor = %d, want %d",
			rule.MaxRoomsPerSupervisor, model.DefaultMaxRoomsPerSupervisor)
	}
}
