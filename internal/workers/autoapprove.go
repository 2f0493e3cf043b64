package workers

import (
	"sync/atomic"
	"time"

	"drivedrop-backend/internal/services"

	"go.uber.org/zap"
)

// AutoApproveWorker закрывает проверки с истекшим окном ответа клиента.
// Сам срок хранится в базе как completed_at, поэтому воркер не держит
// состояния и переживает перезапуск сервера без потери таймеров.
type AutoApproveWorker struct {
	verifications *services.VerificationService
	logger        *zap.Logger
	busy          atomic.Bool
}

func NewAutoApproveWorker(verifications *services.VerificationService, logger *zap.Logger) *AutoApproveWorker {
	return &AutoApproveWorker{
		verifications: verifications,
		logger:        logger,
	}
}

func (w *AutoApproveWorker) Schedule() string {
	return "@every 15s"
}

// Ready не допускает наложения прогонов при медленной базе
func (w *AutoApproveWorker) Ready(now time.Time) bool {
	return !w.busy.Load()
}

func (w *AutoApproveWorker) Execute() {
	if !w.busy.CompareAndSwap(false, true) {
		return
	}
	defer w.busy.Store(false)

	processed, err := w.verifications.AutoApproveExpired()
	if err != nil {
		w.logger.Error("ошибка прогона автоподтверждения", zap.Error(err))
		return
	}
	if processed > 0 {
		w.logger.Info("автоподтверждение закрыло проверки", zap.Int("count", processed))
	}
}
