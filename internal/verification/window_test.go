package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseWindowRemaining(t *testing.T) {
	completed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	w := NewResponseWindow(completed)

	assert.Equal(t, 300, w.RemainingSeconds(completed))
	assert.Equal(t, 290, w.RemainingSeconds(completed.Add(10*time.Second)))
	assert.Equal(t, 1, w.RemainingSeconds(completed.Add(299*time.Second)))
	assert.Equal(t, 0, w.RemainingSeconds(completed.Add(300*time.Second)))

	// Остаток никогда не уходит в минус
	assert.Equal(t, 0, w.RemainingSeconds(completed.Add(310*time.Second)))
	assert.Equal(t, time.Duration(0), w.Remaining(completed.Add(time.Hour)))
}

func TestResponseWindowRemainingFormula(t *testing.T) {
	// remaining(T) == max(0, 300 - (T - completed_at)) для произвольных T
	completed := time.Now()
	w := NewResponseWindow(completed)

	for _, elapsed := range []time.Duration{0, time.Second, 42 * time.Second, 299 * time.Second, 300 * time.Second, 301 * time.Second, time.Hour} {
		now := completed.Add(elapsed)
		want := ResponseWindowDuration - elapsed
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, w.Remaining(now), "elapsed=%s", elapsed)
	}
}

func TestResponseWindowHasExpired(t *testing.T) {
	completed := time.Now()
	w := NewResponseWindow(completed)

	assert.False(t, w.HasExpired(completed))
	assert.False(t, w.HasExpired(completed.Add(299*time.Second)))
	assert.True(t, w.HasExpired(completed.Add(300*time.Second)))
	assert.True(t, w.HasExpired(completed.Add(310*time.Second)))
}

func TestResponseWindowDeadlineIndependentOfChecks(t *testing.T) {
	// Повторные проверки не сдвигают дедлайн: модель без внутреннего счетчика
	completed := time.Now()
	w := NewResponseWindow(completed)

	first := w.Deadline()
	w.Remaining(completed.Add(100 * time.Second))
	w.HasExpired(completed.Add(200 * time.Second))
	assert.Equal(t, first, w.Deadline())
}
