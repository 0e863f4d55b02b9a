package entities

// Field is one water consumer competing for the budget of a single run.
// Lower moisture means drier, and drier fields are served first.
type Field struct {
	Name          string `json:"name"`        // reporting only, never used by the allocators
	Moisture      int    `json:"moisture"`    // 0..100
	WaterNeeded   int    `json:"waterNeeded"` // >= 0
	TimeNeeded    int    `json:"timeNeeded,omitempty"`
	Allocated     int    `json:"allocated"` // 0..WaterNeeded
	TimeUsed      int    `json:"timeUsed,omitempty"`
	Scheduled     bool   `json:"scheduled"`
	OriginalIndex int    `json:"-"` // position in the caller's input, fixed at ingestion
}

// Assign records an allocation and keeps Scheduled consistent with it.
func (f *Field) Assign(water, time int) {
	f.Allocated = water
	f.TimeUsed = time
	f.Scheduled = water > 0
}

// Reset clears any previous allocation.
func (f *Field) Reset() {
	f.Allocated = 0
	f.TimeUsed = 0
	f.Scheduled = false
}

// MinShare is the 10% floor used by the greedy strategies (rounded down).
func (f Field) MinShare() int { return f.WaterNeeded / 10 }

// MinQuantum is the 10% floor used by the optimal strategy (rounded up).
func (f Field) MinQuantum() int { return (f.WaterNeeded + 9) / 10 }
