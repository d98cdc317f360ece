package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("formats without cause", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Company evaluation not found")
		assert.Equal(t, "NOT_FOUND: Company evaluation not found", err.Error())
	})

	t.Run("formats with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Equal(t, "DATABASE_ERROR: Database error (cause: connection reset)", err.Error())
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Database(cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("survives wrapping with fmt", func(t *testing.T) {
		wrapped := fmt.Errorf("handling request: %w", QuotaExceeded(nil))
		appErr, ok := AsAppError(wrapped)
		require.True(t, ok)
		assert.Equal(t, ErrCodeQuotaExceeded, appErr.Code)
	})
}

func TestConstructors(t *testing.T) {
	t.Run("not found names the resource", func(t *testing.T) {
		err := NotFound("Company evaluation")
		assert.Equal(t, ErrCodeNotFound, err.Code)
		assert.Equal(t, "Company evaluation not found", err.Message)
	})

	t.Run("quota not provisioned carries the product type", func(t *testing.T) {
		err := QuotaNotProvisioned("product02")
		assert.Equal(t, ErrCodeQuotaNotProvisioned, err.Code)
		assert.Equal(t, map[string]string{"product_type": "product02"}, err.Details)
	})

	t.Run("quota exceeded carries the details", func(t *testing.T) {
		details := map[string]any{"required_credit": int64(200), "remaining_credit": int64(100)}
		err := QuotaExceeded(details)
		assert.Equal(t, ErrCodeQuotaExceeded, err.Code)
		assert.Equal(t, details, err.Details)
	})

	t.Run("invalid input names the field", func(t *testing.T) {
		err := InvalidInput("start_date", "use YYYY-MM-DD format")
		assert.Equal(t, "Invalid start_date: use YYYY-MM-DD format", err.Message)
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidCredentials, GetCode(InvalidCredentials()))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain error")))
	assert.Equal(t, ErrCodeTokenMissing, GetCode(fmt.Errorf("wrapped: %w", TokenMissing())))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(RateLimitExceeded()))
	assert.False(t, IsAppError(errors.New("plain error")))
}
