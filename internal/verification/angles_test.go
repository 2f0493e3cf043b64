package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredPhotoCountMatchesAngleList(t *testing.T) {
	assert.Len(t, RequiredAngles(), RequiredPhotoCount)
}

func TestRequiredAnglesCanonicalOrder(t *testing.T) {
	assert.Equal(t, []Angle{
		AngleFront,
		AngleBack,
		AngleLeftSide,
		AngleRightSide,
		AngleInterior,
		AngleDashboard,
	}, RequiredAngles())
}

func TestRequiredAnglesReturnsCopy(t *testing.T) {
	angles := RequiredAngles()
	angles[0] = AngleDamage
	assert.Equal(t, AngleFront, RequiredAngles()[0])
}

func TestIsValidAngle(t *testing.T) {
	for _, a := range RequiredAngles() {
		assert.True(t, IsValidAngle(a), string(a))
	}
	assert.True(t, IsValidAngle(AngleDamage))
	assert.False(t, IsValidAngle(Angle("rear")))
	assert.False(t, IsValidAngle(Angle("")))
}
