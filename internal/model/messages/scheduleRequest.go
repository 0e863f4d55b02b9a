package messages

// FieldInput is one field as supplied by the caller.
type FieldInput struct {
	Name        string `json:"name"`
	Moisture    int    `json:"moisture"`
	WaterNeeded int    `json:"waterNeeded"`
}

// ScheduleRequest is received on every surface of the scheduler (HTTP body,
// gRPC struct, MQTT payload, CLI stdin).
type ScheduleRequest struct {
	Technique         string       `json:"technique"` // greedy | dynamic | genetic | ...
	TotalWater        int          `json:"totalWater"`
	TotalElectricity  int          `json:"totalElectricity,omitempty"`
	WaterDeliveryRate int          `json:"waterDeliveryRate,omitempty"`
	FieldCount        *int         `json:"fieldCount,omitempty"` // optional, must match len(Fields) when set
	Fields            []FieldInput `json:"fields"`
}
