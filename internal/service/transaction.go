package service

import "context"

// TransactionManager runs a unit of work inside a database transaction,
// committing on nil return and rolling back on error.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
