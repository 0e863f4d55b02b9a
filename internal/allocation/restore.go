package allocation

import (
	"sort"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"
)

// Restore returns a copy of fields sorted back into the caller's order.
func Restore(fields []entities.Field) []entities.Field {
	out := make([]entities.Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OriginalIndex < out[j].OriginalIndex })
	return out
}
