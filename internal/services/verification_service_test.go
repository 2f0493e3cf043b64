package services

import (
	"testing"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/verification"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegisterPhotoRejectsUnknownAngle(t *testing.T) {
	svc := NewVerificationService(nil, zap.NewNop())

	_, err := svc.RegisterPhoto(1, 1, 2, verification.Angle("rear"), "https://cdn/photo.jpg", models.Location{})
	assert.ErrorIs(t, err, verification.ErrUnknownAngle)
}

func TestRegisterPhotoRejectsEmptyURL(t *testing.T) {
	svc := NewVerificationService(nil, zap.NewNop())

	_, err := svc.RegisterPhoto(1, 1, 2, verification.AngleFront, "", models.Location{})
	assert.ErrorIs(t, err, verification.ErrNoPhoto)
}

func TestSubmitRejectsUnknownDecision(t *testing.T) {
	svc := NewVerificationService(nil, zap.NewNop())

	_, err := svc.Submit(1, 1, 2, verification.Decision("maybe"), "", nil, models.Location{})
	assert.Error(t, err)
}
