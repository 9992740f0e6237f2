package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept nil to run against
// the shared pool.
type Tx = any

// TransactionManager begins a transaction, invokes fn and commits or rolls
// back depending on fn's error.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
