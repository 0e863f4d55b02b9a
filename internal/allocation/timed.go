package allocation

import "github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"

// TimeConstrainedGreedy spends water and delivery time together. Fields that
// cannot get their 10% floor in both resources are skipped and the pass
// moves on to the next one.
type TimeConstrainedGreedy struct{}

var _ Allocator = TimeConstrainedGreedy{}

func (TimeConstrainedGreedy) Strategy() entities.Strategy {
	return entities.StrategyTimeConstrainedGreedy
}

func (TimeConstrainedGreedy) Allocate(fields []entities.Field, b entities.Budget) entities.Allocation {
	b = b.WithDefaults()
	remWater, remTime := b.TotalWater, b.TotalElectricity
	usedWater, usedTime := 0, 0

	for i := range fields {
		fields[i].Reset()
		fields[i].TimeNeeded = timeNeeded(fields[i].WaterNeeded, b)
	}

	for i := range fields {
		f := &fields[i]
		minWater := f.MinShare()
		if remWater < minWater || remTime < b.TimeFor(minWater) {
			continue
		}

		water, t := f.WaterNeeded, f.TimeNeeded
		if water > remWater {
			water = remWater
			t = b.TimeFor(water)
		}
		if t > remTime {
			t = remTime
			water = t * b.WaterDeliveryRate
			if water > f.WaterNeeded {
				water = f.WaterNeeded
			}
		}
		if water <= 0 {
			continue
		}

		f.Assign(water, t)
		remWater -= water
		remTime -= t
		usedWater += water
		usedTime += t
	}

	return entities.Allocation{
		Strategy:             entities.StrategyTimeConstrainedGreedy,
		Fields:               fields,
		TotalWaterUsed:       usedWater,
		RemainingWater:       remWater,
		TimeConstrained:      true,
		TotalTimeUsed:        usedTime,
		RemainingElectricity: remTime,
	}
}

// timeNeeded is the delivery time for a full allocation, at least one unit.
func timeNeeded(water int, b entities.Budget) int {
	if t := b.TimeFor(water); t > 0 {
		return t
	}
	return 1
}
