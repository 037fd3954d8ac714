package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept nil for the
// non-transactional path; the concrete type is infra-defined (pgx.Tx for
// Postgres).
type Tx interface{}

// TransactionManager runs fn inside a storage transaction, passing the
// handle through so repository calls join it. Keeps use-case signatures
// free of storage types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
