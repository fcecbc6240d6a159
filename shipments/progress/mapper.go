package progress

import "logistics-admin-service/shipments/models"

// Stages are the five fixed points of the delivery lifecycle shown on the tracking page.
var Stages = [...]string{
	"Processing",
	"Picked Up",
	"In Transit",
	"Out for Delivery",
	"Delivered",
}

type StageState string

const (
	StageCompleted StageState = "completed"
	StageCurrent   StageState = "current"
	StagePending   StageState = "pending"
)

type Tone string

const (
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

type Stage struct {
	Name  string     `json:"name"`
	State StageState `json:"state"`
}

type Progress struct {
	Position   int     `json:"position"`
	Percentage float64 `json:"percentage"`
	Delayed    bool    `json:"delayed"`
	Tone       Tone    `json:"tone"`
	Stages     []Stage `json:"stages"`
}

type placement struct {
	position   int
	percentage float64
	delayed    bool
}

// Percentages are "stage reached plus half way to the next"; delayed sits at 50 and
// cancelled at 0. These values are shown to customers and must not be re-derived.
var placements = map[models.ShipmentStatus]placement{
	models.StatusPickupPending:  {0, 12.5, false},
	models.StatusPickupComplete: {1, 37.5, false},
	models.StatusInTransit:      {2, 62.5, false},
	models.StatusOutForDelivery: {3, 87.5, false},
	models.StatusDelivered:      {4, 100, false},
	models.StatusDelayed:        {2, 50, true},
	models.StatusCancelled:      {0, 0, false},
}

var defaultPlacement = placement{0, 12.5, false}

// Map never fails; statuses it does not know render as a freshly created shipment.
func Map(status string) Progress {
	p, ok := placements[models.ShipmentStatus(status)]
	if !ok {
		p = defaultPlacement
	}

	stages := make([]Stage, len(Stages))
	for i, name := range Stages {
		state := StagePending
		switch {
		case i < p.position:
			state = StageCompleted
		case i == p.position:
			state = StageCurrent
		}
		stages[i] = Stage{Name: name, State: state}
	}

	tone := ToneSuccess
	if p.delayed {
		tone = ToneDanger
	}

	return Progress{
		Position:   p.position,
		Percentage: p.percentage,
		Delayed:    p.delayed,
		Tone:       tone,
		Stages:     stages,
	}
}
