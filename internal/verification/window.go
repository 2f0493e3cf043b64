package verification

import (
	"time"
)

// ResponseWindowDuration фиксированное окно ответа клиента, не настраивается
const ResponseWindowDuration = 5 * time.Minute

// ResponseWindow окно ответа клиента на проверку с расхождениями.
// Модель чисто дедлайновая: остаток всегда вычисляется от completed_at по
// текущему времени, внутреннего счетчика нет, поэтому приостановка процесса
// или повторное открытие экрана не сдвигают дедлайн.
type ResponseWindow struct {
	CompletedAt time.Time
}

func NewResponseWindow(completedAt time.Time) ResponseWindow {
	return ResponseWindow{CompletedAt: completedAt}
}

// Deadline момент автоматического подтверждения
func (w ResponseWindow) Deadline() time.Time {
	return w.CompletedAt.Add(ResponseWindowDuration)
}

// Remaining остаток окна на момент now, не меньше нуля
func (w ResponseWindow) Remaining(now time.Time) time.Duration {
	left := w.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSeconds остаток в целых секундах для ответа API
func (w ResponseWindow) RemainingSeconds(now time.Time) int {
	return int(w.Remaining(now) / time.Second)
}

// HasExpired сообщает, истекло ли окно на момент now
func (w ResponseWindow) HasExpired(now time.Time) bool {
	return !now.Before(w.Deadline())
}
