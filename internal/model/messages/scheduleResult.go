package messages

import "github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/entities"

const (
	// generic failure indicators, one per failure class
	FailureInvalidInput = "Failed to parse input JSON"
	FailureScheduler    = "Scheduler failed"
)

// ScheduledField is a field that received water.
type ScheduledField struct {
	Name       string `json:"name"`
	Moisture   int    `json:"moisture"`
	Need       int    `json:"need"`
	Allocated  int    `json:"allocated"`
	TimeNeeded int    `json:"timeNeeded,omitempty"` // time-constrained runs only
	TimeUsed   int    `json:"timeUsed,omitempty"`   // time-constrained runs only
}

// ScheduleResult is the success record of a run.
type ScheduleResult struct {
	Algorithm            string           `json:"algorithm"`
	Scheduled            []ScheduledField `json:"scheduled"`
	TotalWaterUsed       int              `json:"totalWaterUsed"`
	TotalTimeUsed        *int             `json:"totalTimeUsed,omitempty"`
	RemainingElectricity *int             `json:"remainingElectricity,omitempty"`
	RemainingWater       int              `json:"remainingWater"`
	Score                *float64         `json:"score,omitempty"`
}

// ErrorResult is the failure record of a run. It never carries allocations.
type ErrorResult struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewScheduleResult builds the success record. Only scheduled fields are
// listed, in the order they appear in a.
func NewScheduleResult(a entities.Allocation) ScheduleResult {
	out := ScheduleResult{
		Algorithm:      a.Algorithm(),
		Scheduled:      make([]ScheduledField, 0, len(a.Fields)),
		TotalWaterUsed: a.TotalWaterUsed,
		RemainingWater: a.RemainingWater,
	}
	for _, f := range a.Fields {
		if !f.Scheduled {
			continue
		}
		sf := ScheduledField{Name: f.Name, Moisture: f.Moisture, Need: f.WaterNeeded, Allocated: f.Allocated}
		if a.TimeConstrained {
			sf.TimeNeeded, sf.TimeUsed = f.TimeNeeded, f.TimeUsed
		}
		out.Scheduled = append(out.Scheduled, sf)
	}
	if a.TimeConstrained {
		used, rem := a.TotalTimeUsed, a.RemainingElectricity
		out.TotalTimeUsed, out.RemainingElectricity = &used, &rem
	}
	if a.Strategy == entities.StrategyOptimal {
		score := a.Score
		out.Score = &score
	}
	return out
}

// NewErrorResult builds the failure record. validation selects which generic
// indicator is reported; kind and details carry the diagnostic.
func NewErrorResult(validation bool, kind string, err error) ErrorResult {
	out := ErrorResult{Error: FailureScheduler, Kind: kind}
	if validation {
		out.Error = FailureInvalidInput
	}
	if err != nil {
		out.Details = err.Error()
	}
	return out
}
