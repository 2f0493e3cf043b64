package middleware

import (
	"testing"

	"drivedrop-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	// Администратору доступно все
	assert.True(t, CanAccess(models.RoleAdmin, models.RoleDriver))
	assert.True(t, CanAccess(models.RoleAdmin))

	assert.True(t, CanAccess(models.RoleDriver, models.RoleDriver))
	assert.True(t, CanAccess(models.RoleClient, models.RoleClient, models.RoleDriver))
	assert.False(t, CanAccess(models.RoleClient, models.RoleDriver))

	// Пустой список ролей — любой авторизованный
	assert.True(t, CanAccess(models.RoleClient))
	assert.False(t, CanAccess(""))
}
