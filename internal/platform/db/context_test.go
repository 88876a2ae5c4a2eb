package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil tx from empty context, got %v", tx)
	}
}

func TestTxFromContext_NilContext(t *testing.T) {
	if tx := TxFromContext(nil); tx != nil {
		t.Errorf("expected nil tx from nil context, got %v", tx)
	}
}

func TestWithTx_NilValueRoundTrip(t *testing.T) {
	// A nil pgx.Tx stored on the context comes back as nil, so repositories
	// fall through to the pool.
	ctx := WithTx(context.Background(), nil)
	if tx := TxFromContext(ctx); tx != nil {
		t.Errorf("expected nil tx, got %v", tx)
	}
}
