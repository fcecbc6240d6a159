package core

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Orchestrator struct {
	logger  *zap.Logger
	workers []Worker
}

func NewOrchestrator(logger *zap.Logger, workers []Worker) *Orchestrator {
	return &Orchestrator{logger: logger, workers: workers}
}

func (o *Orchestrator) Start() (*cron.Cron, error) {
	c := cron.New()

	for _, worker := range o.workers {
		w := worker
		_, err := c.AddFunc(w.Schedule(), func() {
			if w.Ready(time.Now()) {
				go w.Execute()
				return
			}
			o.logger.Info("Worker still busy, skipping run", zap.String("worker", w.Name()))
		})

		if err != nil {
			o.logger.Error("Error adding cron job",
				zap.String("worker", w.Name()),
				zap.String("schedule", w.Schedule()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
