package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = &pgconn.PgError{Code: "08006", Message: "connection failure"}

func fastExecutor(maxAttempts int) *Executor {
	return NewExecutor(NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0)))
}

// failing returns an operation that fails with errs in order, then succeeds.
func failing(calls *int, errs ...error) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		if *calls <= len(errs) {
			return errs[*calls-1]
		}
		return nil
	}
}

func TestExecutor_SucceedsFirstTime(t *testing.T) {
	var calls int
	require.NoError(t, fastExecutor(3).Execute(context.Background(), failing(&calls)))
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransient(t *testing.T) {
	var calls int
	err := fastExecutor(3).Execute(context.Background(), failing(&calls, errTransient, errTransient))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutor_StopsOnFatal(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	var calls int
	err := fastExecutor(3).Execute(context.Background(), failing(&calls, errTransient, fatal))
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 2, calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	var calls int
	err := fastExecutor(2).Execute(context.Background(), failing(&calls, errTransient, errTransient, errTransient, errTransient))
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestExecutor_ZeroAttemptsMeansNoRetry(t *testing.T) {
	var calls int
	err := fastExecutor(0).Execute(context.Background(), failing(&calls, errTransient))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	executor := NewExecutor(NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithMaxDelay(time.Hour), WithJitter(0)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var calls int
	start := time.Now()
	err := executor.Execute(ctx, failing(&calls, errTransient, errTransient))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, calls)
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	base := fastExecutor(3)

	var attempts []int
	withCallback := base.WithOnRetry(func(attempt int, err error, _ time.Duration) {
		attempts = append(attempts, attempt)
		assert.True(t, errors.Is(err, errTransient))
	})

	var calls int
	require.NoError(t, withCallback.Execute(context.Background(), failing(&calls, errTransient, errTransient)))
	assert.Equal(t, []int{0, 1}, attempts)
	assert.Nil(t, base.onRetry, "WithOnRetry must not modify the receiver")
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}
