package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		retryable, errType := IsRetryableError(nil)
		assert.False(t, retryable)
		assert.Equal(t, "", errType)
	})

	t.Run("json errors are not retryable", func(t *testing.T) {
		var target struct{ N int }
		err := json.Unmarshal([]byte(`{"N": "nope"}`), &target)
		retryable, errType := IsRetryableError(err)
		assert.False(t, retryable)
		assert.Equal(t, "json_decode_error", errType)
	})

	t.Run("missing row is not retryable", func(t *testing.T) {
		retryable, errType := IsRetryableError(pgx.ErrNoRows)
		assert.False(t, retryable)
		assert.Equal(t, "row_not_found", errType)
	})

	t.Run("duplicate key is not retryable", func(t *testing.T) {
		retryable, errType := IsRetryableError(errors.New(`duplicate key value violates unique constraint "users_email_key"`))
		assert.False(t, retryable)
		assert.Equal(t, "duplicate_key", errType)
	})

	t.Run("connection problems are retryable", func(t *testing.T) {
		retryable, errType := IsRetryableError(errors.New("connection refused"))
		assert.True(t, retryable)
		assert.Equal(t, "db_connection_error", errType)
	})

	t.Run("context deadline is retryable, cancellation is not", func(t *testing.T) {
		retryable, _ := IsRetryableError(context.DeadlineExceeded)
		assert.True(t, retryable)

		retryable, errType := IsRetryableError(context.Canceled)
		assert.False(t, retryable)
		assert.Equal(t, "context_canceled", errType)
	})

	t.Run("mail source errors retry on 5xx and rate limits only", func(t *testing.T) {
		retryable, errType := IsRetryableError(fmt.Errorf("googleapi: Error 503: Service Unavailable"))
		assert.True(t, retryable)
		assert.Equal(t, "mail_source_error", errType)

		retryable, _ = IsRetryableError(fmt.Errorf("googleapi: Error 403: rateLimitExceeded"))
		assert.True(t, retryable)

		retryable, _ = IsRetryableError(fmt.Errorf("googleapi: Error 404: Not Found"))
		assert.False(t, retryable)
	})

	t.Run("unknown errors are not retried", func(t *testing.T) {
		retryable, errType := IsRetryableError(errors.New("something odd"))
		assert.False(t, retryable)
		assert.Equal(t, "unknown_error", errType)
	})
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(1, 5, false))
	assert.True(t, ShouldRetry(5, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
}
