package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureLastWriteWins(t *testing.T) {
	s := NewCaptureSession()

	require.NoError(t, s.Capture(AngleFront, "file:///a.jpg"))
	require.NoError(t, s.Capture(AngleFront, "file:///b.jpg"))

	assert.Equal(t, 1, s.PhotoCount())
	photos := s.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, "file:///b.jpg", photos[0].URI)
}

func TestCaptureCountNeverExceedsRequired(t *testing.T) {
	s := NewCaptureSession()

	for i := 0; i < 3; i++ {
		for _, a := range RequiredAngles() {
			require.NoError(t, s.Capture(a, "file:///x.jpg"))
		}
	}
	assert.Equal(t, RequiredPhotoCount, s.PhotoCount())
}

func TestCaptureDamagePhotosAccumulateSeparately(t *testing.T) {
	s := NewCaptureSession()

	require.NoError(t, s.Capture(AngleDamage, "file:///d1.jpg"))
	require.NoError(t, s.Capture(AngleDamage, "file:///d2.jpg"))

	// Снимки повреждений не входят в обязательный счетчик
	assert.Equal(t, 0, s.PhotoCount())
	assert.Len(t, s.Photos(), 2)
}

func TestCaptureRejectsUnknownAngleAndEmptyURI(t *testing.T) {
	s := NewCaptureSession()

	assert.ErrorIs(t, s.Capture("roof", "file:///r.jpg"), ErrUnknownAngle)
	assert.ErrorIs(t, s.Capture(AngleFront, ""), ErrNoPhoto)
	assert.Equal(t, 0, s.PhotoCount())
}

func TestCanSubmitRequiresAllAnglesAndDecision(t *testing.T) {
	s := NewCaptureSession()
	assert.False(t, s.CanSubmit())

	angles := RequiredAngles()
	for _, a := range angles[:len(angles)-1] {
		require.NoError(t, s.Capture(a, "file:///x.jpg"))
	}
	require.NoError(t, s.SetDecision(DecisionMatches))
	// Пять ракурсов из шести — недостаточно
	assert.False(t, s.CanSubmit())

	require.NoError(t, s.Capture(angles[len(angles)-1], "file:///x.jpg"))
	assert.True(t, s.CanSubmit())
}

func TestCanSubmitRecomputedOnDecisionChange(t *testing.T) {
	s := NewCaptureSession()
	for _, a := range RequiredAngles() {
		require.NoError(t, s.Capture(a, "file:///x.jpg"))
	}
	assert.False(t, s.CanSubmit())

	require.NoError(t, s.SetDecision(DecisionMinorDifferences))
	assert.True(t, s.CanSubmit())

	d, ok := s.Decision()
	require.True(t, ok)
	assert.Equal(t, DecisionMinorDifferences, d)
}

func TestMissingAngles(t *testing.T) {
	s := NewCaptureSession()
	require.NoError(t, s.Capture(AngleFront, "file:///f.jpg"))
	require.NoError(t, s.Capture(AngleInterior, "file:///i.jpg"))

	missing := s.MissingAngles()
	assert.ElementsMatch(t, []Angle{AngleBack, AngleLeftSide, AngleRightSide, AngleDashboard}, missing)
}

func TestSetDecisionRejectsInvalid(t *testing.T) {
	s := NewCaptureSession()
	assert.Error(t, s.SetDecision("looks_fine"))
	_, ok := s.Decision()
	assert.False(t, ok)
}

func TestPhotosCanonicalOrder(t *testing.T) {
	s := NewCaptureSession()
	// Снимаем в произвольном порядке
	require.NoError(t, s.Capture(AngleDashboard, "file:///6.jpg"))
	require.NoError(t, s.Capture(AngleFront, "file:///1.jpg"))
	require.NoError(t, s.Capture(AngleLeftSide, "file:///3.jpg"))

	photos := s.Photos()
	require.Len(t, photos, 3)
	assert.Equal(t, AngleFront, photos[0].Angle)
	assert.Equal(t, AngleLeftSide, photos[1].Angle)
	assert.Equal(t, AngleDashboard, photos[2].Angle)
}
