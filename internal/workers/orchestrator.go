package workers

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Orchestrator struct {
	workers []Worker
	logger  *zap.Logger
}

func NewOrchestrator(logger *zap.Logger, workers ...Worker) *Orchestrator {
	return &Orchestrator{workers: workers, logger: logger}
}

// Start регистрирует воркеров в планировщике и запускает его.
// Возвращенный *cron.Cron останавливается при завершении сервера.
func (o *Orchestrator) Start() (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	for _, worker := range o.workers {
		w := worker
		_, err := c.AddFunc(w.Schedule(), func() {
			if w.Ready(time.Now()) {
				go w.Execute()
			}
		})
		if err != nil {
			o.logger.Error("не удалось зарегистрировать воркер", zap.Error(err))
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
