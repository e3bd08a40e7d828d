package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/apperrors"
)

func TestNextSequentialCode(t *testing.T) {
	assert.Equal(t, "C001", NextSequentialCode("C", ""))
	assert.Equal(t, "C002", NextSequentialCode("C", "C001"))
	assert.Equal(t, "C010", NextSequentialCode("C", "C009"))
	assert.Equal(t, "C1000", NextSequentialCode("C", "C999"))
}

func TestFormatCurrencyBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatCurrencyBRL(decimal.Zero))
	assert.Equal(t, "R$ 1.234,50", FormatCurrencyBRL(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$ 1.000.000,00", FormatCurrencyBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-R$ 12,30", FormatCurrencyBRL(decimal.RequireFromString("-12.3")))
}

func TestTokenRoundTripAndRevocation(t *testing.T) {
	token, err := GenerateToken("user-1", "rest-1", "ADMIN")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "rest-1", claims.RestaurantID)
	assert.Equal(t, "ADMIN", claims.Role)

	BlacklistToken(token, claims.ExpiresAt.Time)
	_, err = ValidateToken(token)
	assert.Error(t, err)

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestCleanupBlacklist(t *testing.T) {
	BlacklistToken("expired", time.Now().Add(-time.Minute))
	BlacklistToken("live", time.Now().Add(time.Hour))

	assert.GreaterOrEqual(t, CleanupBlacklist(time.Now()), 1)
	assert.False(t, IsTokenBlacklisted("expired"))
	assert.True(t, IsTokenBlacklisted("live"))
}

func TestRespondAppErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.NotFound("tab not found"), http.StatusNotFound},
		{apperrors.InvalidReference("menu item unavailable"), http.StatusBadRequest},
		{apperrors.InvalidInput("quantity must be positive"), http.StatusBadRequest},
		{apperrors.Conflict("table is occupied"), http.StatusConflict},
		{apperrors.InsufficientStock("Burger"), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondAppError(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondAppError(c, errors.New("disk on fire"))
	assert.NotContains(t, w.Body.String(), "disk on fire")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondAppError(c, apperrors.InsufficientStock("Burger"))
	assert.Contains(t, w.Body.String(), `"item":"Burger"`)
}
