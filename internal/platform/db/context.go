package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ctxKey string

const txKey ctxKey = "db_tx"

// WithTx returns a context carrying the given transaction. Repositories that
// see a transaction on the context run their queries inside it instead of
// acquiring a pooled connection.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext returns the transaction stored on the context, or nil if the
// context carries none.
func TxFromContext(ctx context.Context) pgx.Tx {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}
