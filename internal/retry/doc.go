// Package retry retries transient failures while a connection to PostgreSQL is
// being established. Loads themselves are never retried: a failed COPY is
// reported, not repeated.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
