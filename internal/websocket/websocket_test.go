package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastToUnknownUserIsNoop(t *testing.T) {
	manager := NewWebSocketManager()

	assert.NotPanics(t, func() {
		manager.BroadcastToUser(42, &WebSocketMessage{
			Type:    ShipmentStatusUpdateType,
			Payload: map[string]interface{}{"shipment_id": 1},
		})
	})
	assert.Equal(t, 0, manager.ConnectionCount(42))
}
