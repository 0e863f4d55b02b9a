package allocation

import "github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"

// Allocator assigns water to fields that are already in priority order.
// Implementations mutate the slice they are given.
type Allocator interface {
	Strategy() entities.Strategy
	Allocate(fields []entities.Field, b entities.Budget) entities.Allocation
}

// Greedy serves fields fully in priority order. The first field that does not
// fit may take everything left if that covers its 10% floor; either way no
// field after it receives water.
type Greedy struct{}

var _ Allocator = Greedy{}

func (Greedy) Strategy() entities.Strategy { return entities.StrategyGreedy }

func (Greedy) Allocate(fields []entities.Field, b entities.Budget) entities.Allocation {
	remaining := b.TotalWater
	used := 0
	for i := range fields {
		fields[i].Reset()
	}

	for i := range fields {
		f := &fields[i]
		if remaining >= f.WaterNeeded {
			f.Assign(f.WaterNeeded, 0)
			remaining -= f.WaterNeeded
			used += f.WaterNeeded
			continue
		}
		if remaining > 0 && remaining >= f.MinShare() {
			f.Assign(remaining, 0)
			used += remaining
			remaining = 0
		}
		// hard stop: lower priority fields never see the leftovers
		break
	}

	return entities.Allocation{
		Strategy:       entities.StrategyGreedy,
		Fields:         fields,
		TotalWaterUsed: used,
		RemainingWater: remaining,
	}
}
