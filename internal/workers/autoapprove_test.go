package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutoApproveWorkerReadySkipsWhileBusy(t *testing.T) {
	w := NewAutoApproveWorker(nil, nil)

	assert.True(t, w.Ready(time.Now()))

	w.busy.Store(true)
	assert.False(t, w.Ready(time.Now()))

	w.busy.Store(false)
	assert.True(t, w.Ready(time.Now()))
}

func TestAutoApproveWorkerSchedule(t *testing.T) {
	w := NewAutoApproveWorker(nil, nil)
	assert.Equal(t, "@every 15s", w.Schedule())
}
