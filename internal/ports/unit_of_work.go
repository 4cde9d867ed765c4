package ports

import "context"

// Tx is an opaque transaction handle. The persistence layer owns the
// concrete type (a *gorm.DB here).
type Tx = any

// UnitOfWork is a callback-style transaction boundary: fn returning an error
// rolls the transaction back, nil commits it. Repositories called with the
// context fn receives join the same transaction.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
