package allocation

import (
	"sort"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

// Prioritize returns a copy of fields in processing order: driest first,
// thirstiest first among equally dry fields, input order last.
func Prioritize(fields []entities.Field) []entities.Field {
	out := make([]entities.Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool { return higherPriority(out[i], out[j]) })
	return out
}

func higherPriority(a, b entities.Field) bool {
	if a.Moisture != b.Moisture {
		return a.Moisture < b.Moisture
	}
	if a.WaterNeeded != b.WaterNeeded {
		return a.WaterNeeded > b.WaterNeeded
	}
	return a.OriginalIndex < b.OriginalIndex
}
