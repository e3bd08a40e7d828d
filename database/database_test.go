package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/models"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedDemoIsIdempotent(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)

	data, err := SeedDemo(db)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Len(t, data.Users, 3)
	assert.Len(t, data.Tables, 6)
	assert.Len(t, data.MenuItems, 2)
	assert.Len(t, data.MenuItems[0].Ingredients, 3)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@comanda.local").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(DemoPassword)))

	again, err := SeedDemo(db)
	require.NoError(t, err)
	assert.Nil(t, again)

	var restaurants int64
	db.Model(&models.Restaurant{}).Count(&restaurants)
	assert.Equal(t, int64(1), restaurants)
}
