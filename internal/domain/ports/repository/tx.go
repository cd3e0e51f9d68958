package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Postgres repositories expect a pgx.Tx;
// nil means "no transaction, use the pool".
type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and hands the
// handle to the repositories called from fn.
//
//	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx Tx) error {
//		if err := actions.Create(ctx, tx, a); err != nil {
//			return err
//		}
//		return posts.AdjustLikeCount(ctx, tx, a.PostID, 1)
//	})
//
// A non-nil error from fn rolls the transaction back.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
