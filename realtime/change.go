package realtime

import (
	"context"
	"time"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Change tells subscribers a row moved. It carries no row state; consumers re-fetch.
type Change struct {
	Table          string    `json:"table"`
	Action         Action    `json:"action"`
	ID             string    `json:"id"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Notifier delivers changes fire-and-forget; it never fails the write that caused them.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// Fanout hands every change to each notifier in turn.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, change Change) {
	for _, n := range f {
		n.Notify(ctx, change)
	}
}
